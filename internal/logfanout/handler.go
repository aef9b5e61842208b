// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package logfanout

import (
	"context"
	"log/slog"
	"slices"
)

// Handler is a slog.Handler that publishes records to a Hub and then passes them on.
type Handler struct {
	hub   *Hub
	next  slog.Handler
	level slog.Leveler
	attrs []slog.Attr
	group string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler wraps next. Records at or above level are published to hub.
// A nil next handler only publishes.
func NewHandler(hub *Hub, next slog.Handler, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}

	return &Handler{
		hub:   hub,
		next:  next,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= h.level.Level() {
		return true
	}

	return h.next != nil && h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() {
		e := Entry{
			Time:    r.Time,
			Level:   r.Level,
			Message: r.Message,
			Attrs:   slices.Clone(h.attrs),
		}

		r.Attrs(func(a slog.Attr) bool {
			e.Attrs = append(e.Attrs, h.qualify(a))
			return true
		})

		h.hub.Publish(e)
	}

	if h.next == nil || !h.next.Enabled(ctx, r.Level) {
		return nil
	}

	return h.next.Handle(ctx, r) //nolint:wrapcheck
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}

	if h.next != nil {
		c.next = h.next.WithAttrs(attrs)
	}

	return c
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	c := h.clone()
	if name != "" {
		c.group = h.qualifyKey(name)
	}

	if h.next != nil {
		c.next = h.next.WithGroup(name)
	}

	return c
}

func (h *Handler) clone() *Handler {
	return &Handler{
		hub:   h.hub,
		next:  h.next,
		level: h.level,
		attrs: slices.Clone(h.attrs),
		group: h.group,
	}
}

func (h *Handler) qualify(a slog.Attr) slog.Attr {
	a.Key = h.qualifyKey(a.Key)
	return a
}

func (h *Handler) qualifyKey(key string) string {
	if h.group == "" {
		return key
	}

	return h.group + "." + key
}
