// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a run.
type Status int

const (
	// StatusUnknown means the run has not finished.
	StatusUnknown Status = iota
	// StatusSuccess means the process exited with a success exit code.
	StatusSuccess
	// StatusError means the process failed, could not start or was killed.
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result represents the outcome of running a command.
type Result struct {
	RunID           uuid.UUID // Unique identifier of the run
	Label           string    // Label of the command
	ExitCode        int       // Exit code, -1 if the process did not exit normally
	Status          Status    // Outcome
	Error           error     // Error, if any
	Stdout          []byte    // Captured stdout, up to the capture limit
	Stderr          []byte    // Captured stderr, up to the capture limit
	StdoutTruncated bool      // Stdout exceeded the capture limit
	StderrTruncated bool      // Stderr exceeded the capture limit
	StdoutBytes     int64     // Bytes read from stdout, captured or not
	StderrBytes     int64     // Bytes read from stderr, captured or not
	Started         time.Time // When the process started
	Finished        time.Time // When the process exited
}

// Duration returns how long the process ran.
func (r *Result) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}

	return r.Finished.Sub(r.Started)
}

// OK reports whether the run succeeded.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}
