// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/logfanout"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/matt-FFFFFF/consoletext/internal/runner"
	"github.com/matt-FFFFFF/consoletext/internal/signalbroker"
)

const (
	logBuffer   = 64
	eventBuffer = 1024
)

// Option configures a Runner.
type Option func(*Runner)

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(r *Runner) {
		r.title = title
	}
}

// WithExitOnDone closes the TUI as soon as the command finishes.
func WithExitOnDone() Option {
	return func(r *Runner) {
		r.exitOnDone = true
	}
}

// WithProgramOptions passes options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(r *Runner) {
		r.programOpts = append(r.programOpts, opts...)
	}
}

// Runner manages the TUI application and progress event integration.
type Runner struct {
	screen      *console.Screen
	hub         *logfanout.Hub
	title       string
	exitOnDone  bool
	programOpts []tea.ProgramOption
	mutex       sync.Mutex
}

// NewRunner creates a TUI runner drawing screen. hub may be nil.
func NewRunner(screen *console.Screen, hub *logfanout.Hub, opts ...Option) *Runner {
	r := &Runner{
		screen:      screen,
		hub:         hub,
		title:       "consoletext",
		programOpts: []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()},
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// sendEvents returns a listener handing events to program.
// Send blocks until the program takes the message or has exited.
func sendEvents(program *tea.Program) progress.Listener {
	return progress.ListenerFunc(func(e progress.Event) {
		program.Send(EventMsg{Event: e})
	})
}

// Run executes cmd while the TUI shows its output.
// sink receives every event before the TUI does and is responsible for updating the screen,
// usually progress.Direct(screen) or a server.Broadcaster wrapping the same screen.
// The returned error is from the TUI itself; command failures are in the result.
func (r *Runner) Run(ctx context.Context, cmd *runner.Command, sink progress.Reporter) (*runner.Result, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c := *cmd
	if c.Signals == nil {
		c.Signals = make(chan os.Signal, 1)
	}

	interrupt := func() {
		select {
		case c.Signals <- os.Interrupt:
		default:
		}
	}

	var logs chan logfanout.Entry

	if r.hub != nil {
		logs = make(chan logfanout.Entry, logBuffer)
		cancel := r.hub.Subscribe(func(e logfanout.Entry) {
			select {
			case logs <- e:
			default:
			}
		})

		defer cancel()
	}

	model := NewModel(r.title, r.screen, logs, interrupt)
	model.exitOnDone = r.exitOnDone

	program := tea.NewProgram(model, append(r.programOpts, tea.WithContext(ctx))...)

	// The command reports into a buffer so a slow redraw never stalls its output.
	// The screen is updated by sink, so a dropped event only costs a redraw.
	reporter := progress.NewChannelReporter(ctx, eventBuffer)
	reporter.Listen(sendEvents(program))

	defer func() {
		reporter.Close()

		if n := reporter.Dropped(); n > 0 {
			ctxlog.Debug(ctx, "tui events dropped", "count", n)
		}
	}()

	// The terminal is in raw mode, so signals only arrive from other processes.
	osSignals := signalbroker.New(ctx)
	defer signalbroker.Stop(osSignals)

	stop := make(chan struct{})
	defer close(stop)

	go forward(osSignals, c.Signals, stop)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	resultChan := make(chan *runner.Result, 1)

	go func() {
		resultChan <- c.Run(runCtx, progress.Tee(sink, reporter))
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := program.Run()
		tuiDone <- err
	}()

	select {
	case res := <-resultChan:
		// Deliver the buffered events first so DoneMsg is the last state change.
		reporter.Close()
		program.Send(DoneMsg{Result: res})

		if ctx.Err() != nil {
			program.Quit()
		}

		return res, <-tuiDone

	case err := <-tuiDone:
		// The TUI is gone, so nobody can interrupt the command any more.
		reporter.Close()
		ctxlog.Debug(ctx, "tui exited before the command finished", "error", err)
		cancelRun()

		return <-resultChan, err
	}
}

// forward copies signals from src to dst until stop is closed, dropping them when dst is full.
func forward(src <-chan os.Signal, dst chan<- os.Signal, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case s, ok := <-src:
			if !ok {
				return
			}

			select {
			case dst <- s:
			default:
			}
		}
	}
}
