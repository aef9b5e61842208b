// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/logfanout"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/matt-FFFFFF/consoletext/internal/runner"
)

// State is the lifecycle of the command shown by the model.
type State int

const (
	StateWaiting State = iota
	StateRunning
	StateSuccess
	StateFailed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether the command has finished.
func (s State) Done() bool {
	return s == StateSuccess || s == StateFailed
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title     lipgloss.Style
	Waiting   lipgloss.Style
	Running   lipgloss.Style
	Success   lipgloss.Style
	Failed    lipgloss.Style
	Stderr    lipgloss.Style
	Transient lipgloss.Style
	Status    lipgloss.Style
	Log       lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Waiting: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
		Stderr: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")),
		Transient: lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Log: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
	}
}

// Model is the bubbletea model for a single command.
type Model struct {
	screen    *console.Screen
	logs      <-chan logfanout.Entry
	interrupt func()
	title     string
	styles    *Styles

	viewport viewport.Model
	ready    bool
	follow   bool
	seen     uint64
	width    int
	height   int

	state      State
	started    time.Time
	finished   time.Time
	status     string
	lastLog    string
	result     *runner.Result
	interrupts int
	exitOnDone bool
	quitting   bool
}

// NewModel creates a model drawing screen. interrupt is called when the user asks to stop the
// command and may be nil. logs, if not nil, feeds the footer.
func NewModel(title string, screen *console.Screen, logs <-chan logfanout.Entry, interrupt func()) *Model {
	if interrupt == nil {
		interrupt = func() {}
	}

	return &Model{
		screen:    screen,
		logs:      logs,
		interrupt: interrupt,
		title:     title,
		styles:    NewStyles(),
		follow:    true,
		seen:      ^uint64(0),
	}
}

// State returns the command state as last reported.
func (m *Model) State() State {
	return m.state
}

// Result returns the command result once DoneMsg was received.
func (m *Model) Result() *runner.Result {
	return m.result
}

// EventMsg wraps a progress event for the tea framework.
type EventMsg struct {
	Event progress.Event
}

// LogMsg carries a log entry for the footer.
type LogMsg struct {
	Entry logfanout.Entry
}

// DoneMsg indicates that the command has finished.
type DoneMsg struct {
	Result *runner.Result
}

type tickMsg time.Time

// styleLine renders one console line.
func (m *Model) styleLine(l console.Line) string {
	switch {
	case l.Transient:
		return m.styles.Transient.Render(l.Text)
	case l.Stream == progress.StreamStderr:
		return m.styles.Stderr.Render(l.Text)
	default:
		return l.Text
	}
}

// refresh copies the screen into the viewport if it changed.
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	v := m.screen.Version()
	if v == m.seen {
		return
	}

	m.seen = v
	m.viewport.SetContent(m.screen.Text(m.styleLine))

	if m.follow {
		m.viewport.GotoBottom()
	}
}
