// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter/v2"
)

// ErrFetch is returned when a remote config file cannot be retrieved.
var ErrFetch = errors.New("failed to fetch config file")

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minGetterURLParts     = 3 // scheme, host and path
)

// Fetch retrieves a single file using go-getter and returns its content.
// go-getter only fetches directories from most sources, so the file is split
// from the URL, its directory downloaded to a temporary location and the file read from there.
func Fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, ErrFetch
	}

	tmp, err := os.MkdirTemp("", "consoletext-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	defer os.RemoveAll(tmp) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	req := &getter.Request{
		Src:     filepath.Dir(src),
		Dst:     filepath.Join(tmp, "src"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}
	name := filepath.Base(src)

	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(&getter.Request{Src: src, Pwd: wd}, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, errors.Join(ErrFetch, err)
		}

		dir, file, ok := splitGetterURL(src)
		if !ok {
			return nil, fmt.Errorf("%w: cannot find file name in %q", ErrFetch, src)
		}

		req.Src, name = dir, file
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, name))
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	return data, nil
}

// splitGetterURL separates the file name from a go-getter URL such as
// git::https://host/repo//dir/file.yaml?ref=v1. The returned directory URL keeps the query.
func splitGetterURL(src string) (dir, file string, ok bool) {
	parts := strings.Split(src, goGetterPathSeparator)
	if len(parts) < minGetterURLParts {
		return "", "", false
	}

	last := parts[len(parts)-1]

	var query string
	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		last, query = before, after
	}

	if last == "" || strings.HasSuffix(last, "/") {
		return "", "", false
	}

	file = filepath.Base(last)

	if d := filepath.Dir(last); d == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = d
	}

	dir = strings.Join(parts, goGetterPathSeparator)
	if query != "" {
		dir += goGetterRefSeparator + query
	}

	return dir, file, true
}
