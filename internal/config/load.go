// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var (
	// ErrReadConfigFile is returned when the file cannot be read.
	ErrReadConfigFile = errors.New("failed to read config file")
	// ErrUnknownFormat is returned for an unsupported file extension.
	ErrUnknownFormat = errors.New("unknown config file format, use .yaml, .yml, .toml or .hcl")
	// ErrDecode is returned when the content cannot be decoded.
	ErrDecode = errors.New("failed to decode config file")
)

// Load reads src, which is a local path or a go-getter URL, over the defaults and validates the result.
func Load(ctx context.Context, src string) (*Config, error) {
	cfg := Default()

	if err := cfg.LoadFile(ctx, src); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile decodes src into c. Keys absent from the file keep their current value.
func (c *Config) LoadFile(ctx context.Context, src string) error {
	var (
		data []byte
		err  error
	)

	if isRemote(src) {
		ctxlog.Debug(ctx, "fetching config", "url", src)
		data, err = Fetch(ctx, src)
	} else {
		ctxlog.Debug(ctx, "reading config", "path", src)
		data, err = afero.ReadFile(FsFactory(), src)
	}

	if err != nil {
		return errors.Join(ErrReadConfigFile, err)
	}

	return c.Decode(fileName(src), data)
}

// Decode decodes data into c using the format implied by name's extension.
func (c *Config) Decode(name string, data []byte) error {
	var err error

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, c)
	case ".toml":
		err = decodeTOML(data, c)
	case ".hcl":
		err = decodeHCL(name, data, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	if err != nil {
		return errors.Join(ErrDecode, err)
	}

	return nil
}

func decodeYAML(data []byte, c *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	return yaml.UnmarshalWithOptions(data, c, yaml.DisallowUnknownField()) //nolint:wrapcheck
}

func decodeTOML(data []byte, c *Config) error {
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(c)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var result *multierror.Error
		for _, k := range undecoded {
			result = multierror.Append(result, fmt.Errorf("unknown key %q", k.String()))
		}

		return result.ErrorOrNil()
	}

	return nil
}

func decodeHCL(name string, data []byte, c *Config) error {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.InitialPos)
	if diags.HasErrors() {
		return multierror.Append(nil, diags.Errs()...).ErrorOrNil()
	}

	if diags := gohcl.DecodeBody(file.Body, evalContext(), c); diags.HasErrors() {
		return multierror.Append(nil, diags.Errs()...).ErrorOrNil()
	}

	return nil
}

// evalContext exposes the environment as env.NAME and a few string functions.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !hclsyntax.ValidIdentifier(k) {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"upper":    stdlib.UpperFunc,
			"lower":    stdlib.LowerFunc,
			"format":   stdlib.FormatFunc,
			"coalesce": stdlib.CoalesceFunc,
		},
	}
}

// YAML encodes c as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c) //nolint:wrapcheck
}

var remotePrefixes = []string{"git::", "hg::", "s3::", "gcs::", "http::", "https::", "http://", "https://", "github.com/", "bitbucket.org/"}

func isRemote(src string) bool {
	return slices.ContainsFunc(remotePrefixes, func(p string) bool { return strings.HasPrefix(src, p) })
}

// fileName returns the file name of a path or go-getter URL, without any query.
func fileName(src string) string {
	if !isRemote(src) {
		return src
	}

	if _, file, ok := splitGetterURL(src); ok {
		return file
	}

	src, _, _ = strings.Cut(src, goGetterRefSeparator)

	return filepath.Base(src)
}
