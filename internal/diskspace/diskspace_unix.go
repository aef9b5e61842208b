// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build linux || darwin || freebsd

package diskspace

import (
	"errors"

	"golang.org/x/sys/unix"
)

func usage(path string) (Usage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Usage{}, errors.Join(ErrQuery, err)
	}

	bsize := uint64(st.Bsize) //nolint:gosec

	return Usage{
		Path:      path,
		Total:     uint64(st.Blocks) * bsize, //nolint:gosec,unconvert
		Free:      uint64(st.Bfree) * bsize,  //nolint:gosec,unconvert
		Available: uint64(st.Bavail) * bsize, //nolint:gosec,unconvert
	}, nil
}
