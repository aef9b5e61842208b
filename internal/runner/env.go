// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"errors"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// ErrEnvFile is returned when an env file cannot be read.
var ErrEnvFile = errors.New("could not read env file")

// environ builds the child environment: the current environment, then the env files in order,
// then env. Later values win and replace inherited ones.
func environ(envFiles []string, env map[string]string) ([]string, error) {
	merged := make(map[string]string)

	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			return nil, errors.Join(ErrEnvFile, err)
		}

		maps.Copy(merged, vals)
	}

	maps.Copy(merged, env)

	out := slices.DeleteFunc(os.Environ(), func(kv string) bool {
		k, _, _ := strings.Cut(kv, "=")
		_, ok := merged[k]

		return ok
	})

	for _, k := range slices.Sorted(maps.Keys(merged)) {
		out = append(out, k+"="+merged[k])
	}

	return out, nil
}
