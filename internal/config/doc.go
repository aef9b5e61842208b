// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads consoletext settings from YAML, TOML or HCL files.
//
// The format is chosen by file extension. Sources may be local paths or go-getter URLs, for example
// "git::https://example.com/repo.git//consoletext.yaml?ref=main". HCL files can read the environment
// through the env object:
//
//	encoding = env.CONSOLETEXT_ENCODING
//	history  = 5000
package config
