// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diskspace reports free and total space of the volume holding a path.
package diskspace

import (
	"errors"
)

var (
	// ErrUnsupported is returned on platforms without a disk space query.
	ErrUnsupported = errors.New("disk space query is not supported on this platform")
	// ErrQuery is returned when the operating system query fails.
	ErrQuery = errors.New("failed to query disk space")
)

// Usage describes the volume holding a path, in bytes.
type Usage struct {
	Path      string
	Total     uint64 // size of the volume
	Free      uint64 // free space, including blocks reserved for privileged users
	Available uint64 // free space usable by the caller
}

// Used returns Total minus Free.
func (u Usage) Used() uint64 {
	if u.Free > u.Total {
		return 0
	}

	return u.Total - u.Free
}

// Querier reports volume usage.
type Querier interface {
	Usage(path string) (Usage, error)
}

// System queries the operating system.
type System struct{}

var _ Querier = System{}

// Usage implements Querier.
func (System) Usage(path string) (Usage, error) {
	return usage(path)
}
