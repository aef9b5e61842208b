// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/matt-FFFFFF/consoletext/internal/display"
	"github.com/matt-FFFFFF/consoletext/internal/logfanout"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
)

const (
	headerHeight = 1
	footerHeight = 3
	tickInterval = time.Second
	ellipsis     = "…"
)

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		tick(),
		waitForLog(m.logs),
	)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForLog reads the next log entry. It returns nil when there is no log channel.
func waitForLog(logs <-chan logfanout.Entry) tea.Cmd {
	if logs == nil {
		return nil
	}

	return func() tea.Msg {
		e, ok := <-logs
		if !ok {
			return nil
		}

		return LogMsg{Entry: e}
	}
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd

		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()

		return m, cmd

	case EventMsg:
		m.processEvent(msg.Event)
		m.refresh()

		return m, nil

	case LogMsg:
		m.lastLog = msg.Entry.String()
		return m, waitForLog(m.logs)

	case DoneMsg:
		m.result = msg.Result
		m.finished = time.Now()

		if msg.Result != nil {
			m.finished = msg.Result.Finished

			if msg.Result.OK() {
				m.state = StateSuccess
				m.status = fmt.Sprintf("Finished %s in %s", msg.Result.Label, display.Duration(msg.Result.Duration()))
			} else {
				m.state = StateFailed
				m.status = fmt.Sprintf("Failed %s (exit code %d)", msg.Result.Label, msg.Result.ExitCode)
			}
		}

		if !m.state.Done() {
			m.state = StateFailed
		}

		m.refresh()

		if m.exitOnDone {
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil

	case tickMsg:
		m.refresh()

		if m.state.Done() {
			return m, nil
		}

		return m, tick()
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.state.Done() {
			m.quitting = true
			return m, tea.Quit
		}

		m.interrupts++
		m.interrupt()

		if m.interrupts == 1 {
			m.status = "Interrupt sent, press again to kill"
		} else {
			m.status = "Killing..."
		}

		return m, nil

	case "end", "G":
		m.follow = true
		m.viewport.GotoBottom()

		return m, nil
	}

	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)
	m.follow = m.viewport.AtBottom()

	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	h := max(height-headerHeight-footerHeight, 1)

	if !m.ready {
		m.viewport = viewport.New(width, h)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = h
	}

	m.seen = ^uint64(0)
	m.refresh()
}

// processEvent updates the header and footer from lifecycle events. Line events only trigger a redraw.
func (m *Model) processEvent(e progress.Event) {
	switch e.Type { //nolint:exhaustive
	case progress.EventStarted:
		m.state = StateRunning
		m.started = e.Timestamp
		m.status = e.Message

	case progress.EventCompleted:
		m.state = StateSuccess
		m.finished = e.Timestamp
		m.status = e.Message

	case progress.EventFailed:
		m.state = StateFailed
		m.finished = e.Timestamp
		m.status = e.Message

		if e.Data.Error != nil {
			m.status = fmt.Sprintf("%s: %s", e.Message, e.Data.Error)
		}

	case progress.EventLog:
		m.lastLog = e.Message
	}
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Initializing..."
	}

	var view strings.Builder

	view.WriteString(m.renderHeader())
	view.WriteString("\n")
	view.WriteString(m.viewport.View())
	view.WriteString("\n")
	view.WriteString(m.renderFooter())

	return view.String()
}

func (m *Model) renderHeader() string {
	badge := m.stateStyle().Render(m.state.String())

	var elapsed string

	if !m.started.IsZero() {
		end := time.Now()
		if m.state.Done() && !m.finished.IsZero() {
			end = m.finished
		}

		elapsed = " " + m.styles.Status.Render(display.Duration(end.Sub(m.started)))
	}

	header := fmt.Sprintf("%s %s%s", m.styles.Title.Render(m.title), badge, elapsed)

	if m.screen.Len() > 0 {
		header += m.styles.Help.Render(fmt.Sprintf("  %d lines  %3.f%%", m.screen.Len(), m.viewport.ScrollPercent()*100)) //nolint:mnd
	}

	return m.truncate(header)
}

func (m *Model) renderFooter() string {
	help := "↑/↓ or j/k to scroll, PgUp/PgDn for pages, End to follow, 'q' to interrupt"
	if m.state.Done() {
		help = "↑/↓ or j/k to scroll, 'q' to quit and return to terminal"
	}

	lines := []string{
		m.truncate(m.stateStyle().Render(m.status)),
		m.truncate(m.styles.Log.Render(m.lastLog)),
		m.truncate(m.styles.Help.Render(help)),
	}

	return strings.Join(lines, "\n")
}

func (m *Model) stateStyle() lipgloss.Style {
	switch m.state {
	case StateRunning:
		return m.styles.Running
	case StateSuccess:
		return m.styles.Success
	case StateFailed:
		return m.styles.Failed
	default:
		return m.styles.Waiting
	}
}

func (m *Model) truncate(s string) string {
	if m.width <= 0 {
		return s
	}

	return ansi.Truncate(s, m.width, ellipsis)
}
