// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/display"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
)

var (
	// ErrSignalReceived is returned when a signal was forwarded to the child process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
	// ErrContextDone is returned when the context ended before the process did.
	ErrContextDone = errors.New("context done, process terminated")
)

// tickerInterval is how often a still-running process is reported.
var tickerInterval = 10 * time.Second

// watch forwards signals to ps and kills it on a second signal of the same type or when ctx ends.
// It returns once done is closed, with the reasons the process was interrupted.
func watch(
	ctx context.Context,
	ps *os.Process,
	sigCh <-chan os.Signal,
	done <-chan struct{},
	reporter progress.Reporter,
	label string,
	started time.Time,
) error {
	var result error

	seen := make(map[os.Signal]struct{})

	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	ctxDone := ctx.Done()

	for {
		select {
		case <-done:
			return result

		case <-ticker.C:
			reporter.Report(progress.Event{
				Source:    label,
				Type:      progress.EventLog,
				Message:   fmt.Sprintf("Running %s: [%s]...", label, display.Duration(time.Since(started))),
				Timestamp: time.Now(),
			})

		case s, ok := <-sigCh:
			if !ok {
				sigCh = nil
				continue
			}

			if _, dup := seen[s]; dup {
				ctxlog.Info(ctx, "received duplicate signal, killing process", "signal", s.String())
				kill(ctx, ps)

				result = errors.Join(result, ErrDuplicateSignalReceived)

				continue
			}

			seen[s] = struct{}{}

			ctxlog.Info(ctx, "received signal, forwarding", "signal", s.String())

			if err := ps.Signal(s); err != nil {
				ctxlog.Info(ctx, "failed to send signal", "signal", s.String(), "error", err)
			}

			result = errors.Join(result, ErrSignalReceived)

		case <-ctxDone:
			ctxlog.Info(ctx, "context done, killing process")
			kill(ctx, ps)

			result = errors.Join(result, ErrContextDone)
			ctxDone = nil
		}
	}
}

func kill(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}
