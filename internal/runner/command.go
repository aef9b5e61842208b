// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/matt-FFFFFF/consoletext/internal/signalbroker"
	"github.com/matt-FFFFFF/consoletext/internal/teereader"
)

// DefaultCaptureLimit is the number of bytes of each stream kept in the Result by default.
const DefaultCaptureLimit = 8 * 1024 * 1024

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrFailedToReadStream is returned when reading stdout or stderr fails.
	ErrFailedToReadStream = errors.New("failed to read output stream")
	// ErrExitCode is returned when the exit code is not one of the success exit codes.
	ErrExitCode = errors.New("unsuccessful exit code")
)

// Command is one operating system command to run.
type Command struct {
	Label              string                   // Label used as the event source, defaults to the executable name
	Path               string                   // Executable, looked up in PATH if it has no separator
	Args               []string                 // Arguments, not including the executable itself
	Cwd                string                   // Working directory, empty for the current one
	Env                map[string]string        // Extra environment variables
	EnvFiles           []string                 // Dotenv files loaded before Env
	SuccessExitCodes   []int                    // Exit codes that indicate success, defaults to 0
	CaptureLimit       int                      // Bytes of each stream kept in the Result; 0 is the default, negative keeps none
	FlushPartial       bool                     // Report an unterminated last line when the stream ends
	ReassemblerOptions []linereassembler.Option // Options for the stdout and stderr reassemblers
	Stdin              *os.File                 // Standard input for the child, nil for none
	Signals            chan os.Signal           // Signals to handle, nil for the operating system termination signals
}

// Run starts the command and blocks until it has exited and both streams are drained.
// Lines and lifecycle events are sent to reporter, which is not closed.
func (c *Command) Run(ctx context.Context, reporter progress.Reporter) *Result {
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	res := &Result{
		RunID:    uuid.New(),
		Label:    c.label(),
		ExitCode: -1,
		Status:   StatusError,
	}

	logger := ctxlog.Logger(ctx).With("label", res.Label, "runID", res.RunID.String())
	ctx = ctxlog.New(ctx, logger)

	fail := func(err error) *Result {
		res.Error = err
		reporter.Report(failedEvent(res, "could not start"))

		return res
	}

	path, err := resolvePath(c.Path)
	if err != nil {
		return fail(errors.Join(ErrCouldNotStartProcess, err))
	}

	env, err := environ(c.EnvFiles, c.Env)
	if err != nil {
		return fail(err)
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return fail(errors.Join(ErrFailedToCreatePipe, err))
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return fail(errors.Join(ErrFailedToCreatePipe, err))
	}

	logger.Debug("starting process", "path", path, "cwd", c.Cwd, "args", c.Args)

	ps, err := os.StartProcess(path, slices.Concat([]string{filepath.Base(path)}, c.Args), &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{c.Stdin, wOut, wErr},
	})
	if err != nil {
		closeAll(rOut, wOut, rErr, wErr)
		return fail(errors.Join(ErrCouldNotStartProcess, err))
	}

	res.Started = time.Now()

	logger.Debug("process started", "pid", ps.Pid)
	reporter.Report(progress.Event{
		Source:    res.Label,
		Type:      progress.EventStarted,
		Message:   fmt.Sprintf("Starting %s", res.Label),
		Timestamp: res.Started,
	})

	stdout := c.stream(rOut, reporter, res.Label, progress.StreamStdout)
	stderr := c.stream(rErr, reporter, res.Label, progress.StreamStderr)

	var wg sync.WaitGroup

	wg.Add(2)

	var outErr, errErr error

	go func() {
		defer wg.Done()

		outErr = stdout.drain(c.FlushPartial)
	}()

	go func() {
		defer wg.Done()

		errErr = stderr.drain(c.FlushPartial)
	}()

	sigCh := c.Signals
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	done := make(chan struct{})
	watchErr := make(chan error, 1)

	go func() {
		watchErr <- watch(ctx, ps, sigCh, done, reporter, res.Label, res.Started)
	}()

	state, psErr := ps.Wait()
	res.Finished = time.Now()

	close(done)

	// The child is gone; closing our write ends lets the readers reach EOF.
	closeAll(wOut, wErr)
	wg.Wait()
	closeAll(rOut, rErr)

	res.Error = errors.Join(psErr, <-watchErr)
	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	if outErr != nil || errErr != nil {
		res.Error = errors.Join(res.Error, ErrFailedToReadStream, outErr, errErr)
	}

	res.Stdout, res.StdoutTruncated = stdout.tee.GetFullBufferBytes(), stdout.tee.Truncated()
	res.Stderr, res.StderrTruncated = stderr.tee.GetFullBufferBytes(), stderr.tee.Truncated()
	res.StdoutBytes, res.StderrBytes = stdout.tee.BytesRead(), stderr.tee.BytesRead()

	ctxlog.Debug(ctx, "process output read", "stdoutBytes", res.StdoutBytes, "stderrBytes", res.StderrBytes)

	c.finish(ctx, res)

	if res.OK() {
		reporter.Report(progress.Event{
			Source:    res.Label,
			Type:      progress.EventCompleted,
			Message:   fmt.Sprintf("Finished %s", res.Label),
			Timestamp: res.Finished,
			Data:      progress.EventData{ExitCode: res.ExitCode},
		})
	} else {
		reporter.Report(failedEvent(res, fmt.Sprintf("Failed %s", res.Label)))
	}

	return res
}

// finish decides the status from the exit code and errors.
func (c *Command) finish(ctx context.Context, res *Result) {
	success := c.SuccessExitCodes
	if len(success) == 0 {
		success = []int{0}
	}

	switch {
	case res.Error == nil && slices.Contains(success, res.ExitCode):
		ctxlog.Debug(ctx, "process exit code indicates success", "exitCode", res.ExitCode)

		res.Status = StatusSuccess
	case res.Error == nil:
		ctxlog.Debug(ctx, "process exit code indicates failure", "exitCode", res.ExitCode)

		res.Error = fmt.Errorf("%w: %d", ErrExitCode, res.ExitCode)
		res.Status = StatusError
	default:
		ctxlog.Debug(ctx, "process error", "error", res.Error, "exitCode", res.ExitCode)

		if res.ExitCode == 0 {
			res.ExitCode = -1
		}

		res.Status = StatusError
	}
}

func (c *Command) label() string {
	if c.Label != "" {
		return c.Label
	}

	return filepath.Base(c.Path)
}

type stream struct {
	tee *teereader.LineTeeReader
	ra  *linereassembler.Reassembler
}

func (c *Command) stream(r *os.File, reporter progress.Reporter, label string, s progress.Stream) *stream {
	limit := c.CaptureLimit
	if limit == 0 {
		limit = DefaultCaptureLimit
	}

	ra := linereassembler.New(progress.LineHandler(reporter, label, s), c.ReassemblerOptions...)

	return &stream{
		tee: teereader.New(r, ra, limit),
		ra:  ra,
	}
}

// drain reads the stream to EOF and disposes of any unterminated last line.
func (s *stream) drain(flushPartial bool) error {
	_, err := s.tee.Drain()

	if flushPartial {
		s.ra.Flush()
	} else {
		s.ra.Reset()
	}

	return err
}

func failedEvent(res *Result, msg string) progress.Event {
	return progress.Event{
		Source:    res.Label,
		Type:      progress.EventFailed,
		Message:   msg,
		Timestamp: time.Now(),
		Data: progress.EventData{
			ExitCode: res.ExitCode,
			Error:    res.Error,
		},
	}
}

func resolvePath(p string) (string, error) {
	if p == "" {
		return "", exec.ErrNotFound
	}

	if filepath.Base(p) != p {
		return p, nil
	}

	return exec.LookPath(p) //nolint:wrapcheck
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
