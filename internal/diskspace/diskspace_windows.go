// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package diskspace

import (
	"errors"

	"golang.org/x/sys/windows"
)

func usage(path string) (Usage, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return Usage{}, errors.Join(ErrQuery, err)
	}

	var available, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(p, &available, &total, &free); err != nil {
		return Usage{}, errors.Join(ErrQuery, err)
	}

	return Usage{
		Path:      path,
		Total:     total,
		Free:      free,
		Available: available,
	}, nil
}
