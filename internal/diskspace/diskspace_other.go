// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !linux && !darwin && !freebsd && !windows

package diskspace

func usage(string) (Usage, error) {
	return Usage{}, ErrUnsupported
}
