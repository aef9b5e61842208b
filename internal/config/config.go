// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/textenc"
)

// Launch is how the run command presents its output.
type Launch string

const (
	// LaunchStandalone renders locally.
	LaunchStandalone Launch = "standalone"
	// LaunchServer renders locally and serves events over HTTP.
	LaunchServer Launch = "server"
	// LaunchClient attaches to a running server.
	LaunchClient Launch = "client"
)

const (
	// DefaultPort is the event server port.
	DefaultPort = 32768
	// DefaultCaptureLimit is the number of bytes of each stream kept per run.
	DefaultCaptureLimit = 8 * 1024 * 1024
)

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all settings. Field tags name the key in every supported format.
type Config struct {
	Encoding         string            `yaml:"encoding" toml:"encoding" hcl:"encoding,optional" json:"encoding"`
	ReplacePolicy    string            `yaml:"replace_policy" toml:"replace_policy" hcl:"replace_policy,optional" json:"replace_policy" validate:"omitempty,oneof=cr pending"`
	MaxLineLength    int               `yaml:"max_line_length" toml:"max_line_length" hcl:"max_line_length,optional" json:"max_line_length" validate:"gte=0"`
	TruncationMarker string            `yaml:"truncation_marker" toml:"truncation_marker" hcl:"truncation_marker,optional" json:"truncation_marker"`
	History          int               `yaml:"history" toml:"history" hcl:"history,optional" json:"history" validate:"gte=1,lte=1000000"`
	CaptureLimit     int               `yaml:"capture_limit" toml:"capture_limit" hcl:"capture_limit,optional" json:"capture_limit" validate:"gte=-1"`
	FlushPartial     bool              `yaml:"flush_partial" toml:"flush_partial" hcl:"flush_partial,optional" json:"flush_partial"`
	Launch           Launch            `yaml:"launch" toml:"launch" hcl:"launch,optional" json:"launch" validate:"oneof=standalone server client"`
	Host             string            `yaml:"host" toml:"host" hcl:"host,optional" json:"host" validate:"omitempty,hostname_rfc1123|ip"`
	Port             int               `yaml:"port" toml:"port" hcl:"port,optional" json:"port" validate:"gte=1,lte=65535"`
	LogFormat        ctxlog.Format     `yaml:"log_format" toml:"log_format" hcl:"log_format,optional" json:"log_format" validate:"omitempty,oneof=pretty json charm"`
	Env              map[string]string `yaml:"env" toml:"env" hcl:"env,optional" json:"env,omitempty" validate:"dive,keys,required,excludesall==,endkeys"`
	EnvFiles         []string          `yaml:"env_files" toml:"env_files" hcl:"env_files,optional" json:"env_files,omitempty" validate:"dive,required"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Encoding:         textenc.NamePlatform,
		ReplacePolicy:    linereassembler.ReplaceOnCR.String(),
		TruncationMarker: linereassembler.DefaultTruncationMarker,
		History:          console.DefaultHistory,
		CaptureLimit:     DefaultCaptureLimit,
		Launch:           LaunchStandalone,
		Host:             "localhost",
		Port:             DefaultPort,
		LogFormat:        ctxlog.FormatPretty,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Join(ErrInvalidConfig, err)
		}

		for _, fe := range verrs {
			result = multierror.Append(result,
				fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	if _, err := textenc.Resolve(c.Encoding); err != nil {
		result = multierror.Append(result, fmt.Errorf("encoding: %w", err))
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// Policy returns the replace policy. Validate must have succeeded.
func (c *Config) Policy() linereassembler.ReplacePolicy {
	p, err := linereassembler.ParseReplacePolicy(c.ReplacePolicy)
	if err != nil {
		return linereassembler.ReplaceOnCR
	}

	return p
}

// ReassemblerOptions turns the settings into reassembler options. Validate must have succeeded.
func (c *Config) ReassemblerOptions() []linereassembler.Option {
	enc, err := textenc.Resolve(c.Encoding)
	if err != nil {
		enc = textenc.UTF8
	}

	return []linereassembler.Option{
		linereassembler.WithEncoding(enc),
		linereassembler.WithReplacePolicy(c.Policy()),
		linereassembler.WithMaxLineLength(c.MaxLineLength, c.TruncationMarker),
	}
}

// Address is the host:port clients use to reach the event server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ListenAddress is the address the event server binds. An empty host listens on every interface.
func (c *Config) ListenAddress() string {
	return c.Address()
}
