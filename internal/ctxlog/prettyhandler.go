// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/consoletext/internal/color"
)

var (
	// ErrMarshalAttribute is returned when an error occurs while marshaling an attribute.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when an error occurs while writing to the output.
	ErrIoWrite = errors.New("error when writing to output")
)

const (
	// TimeFormat is the format used for timestamps in log messages.
	TimeFormat = "[15:04:05.000]"
)

// PrettyHandler writes one line per record: time, level, message and then the attributes
// as single-line, optionally coloured JSON.
type PrettyHandler struct {
	opts   slog.HandlerOptions
	attrs  map[string]any // attributes from WithAttrs, already nested under their groups
	groups []string
	mu     *sync.Mutex
	f      *colorjson.Formatter
	writer io.Writer

	colour           bool
	outputEmptyAttrs bool
}

var _ slog.Handler = (*PrettyHandler)(nil)

// Enabled reports whether the handler handles records at level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := h.clone()
	c.insert(c.attrs, attrs)

	return c
}

// WithGroup returns a handler that nests later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := h.clone()
	c.groups = append(c.groups, name)

	return c
}

func (h *PrettyHandler) clone() *PrettyHandler {
	c := *h
	c.attrs = cloneTree(h.attrs)
	c.groups = append([]string(nil), h.groups...)

	return &c
}

// Handle implements slog.Handler.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	parts := make([]string, 0, 4) //nolint:mnd

	if !r.Time.IsZero() {
		if a, ok := h.builtin(slog.String(slog.TimeKey, r.Time.Format(TimeFormat))); ok {
			parts = append(parts, color.Apply(h.colour, a.Value.String(), color.FgWhite))
		}
	}

	if a, ok := h.builtin(slog.Any(slog.LevelKey, r.Level)); ok {
		parts = append(parts, color.Apply(h.colour, a.Value.String()+":", levelColour(r.Level)))
	}

	if a, ok := h.builtin(slog.String(slog.MessageKey, r.Message)); ok {
		parts = append(parts, color.Apply(h.colour, a.Value.String(), color.FgHiWhite))
	}

	tree := cloneTree(h.attrs)

	recAttrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})

	h.insert(tree, recAttrs)

	if len(tree) > 0 || h.outputEmptyAttrs {
		b, err := h.f.Marshal(tree)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}

		parts = append(parts, string(b))
	}

	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.writer, line); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

// builtin passes a time, level or message attribute through ReplaceAttr.
// It reports false when the attribute was removed.
func (h *PrettyHandler) builtin(a slog.Attr) (slog.Attr, bool) {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	return a, a.Key != ""
}

// insert adds attrs to tree under the handler's current groups.
// Groups that end up empty are not created.
func (h *PrettyHandler) insert(tree map[string]any, attrs []slog.Attr) {
	leaf := make(map[string]any, len(attrs))
	h.addAttrs(leaf, h.groups, attrs)

	if len(leaf) == 0 {
		return
	}

	dst := tree

	for _, g := range h.groups {
		next, ok := dst[g].(map[string]any)
		if !ok {
			next = make(map[string]any)
			dst[g] = next
		}

		dst = next
	}

	maps.Copy(dst, leaf)
}

func (h *PrettyHandler) addAttrs(dst map[string]any, groups []string, attrs []slog.Attr) {
	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() == slog.KindGroup {
			sub := make(map[string]any)
			h.addAttrs(sub, append(slices.Clip(groups), a.Key), a.Value.Group())

			switch {
			case len(sub) == 0:
			case a.Key == "":
				maps.Copy(dst, sub)
			default:
				dst[a.Key] = sub
			}

			continue
		}

		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(groups, a)
			a.Value = a.Value.Resolve()
		}

		if a.Key == "" {
			continue
		}

		dst[a.Key] = jsonValue(a.Value)
	}
}

// jsonValue converts v to the types colorjson formats.
func jsonValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return json.Number(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return json.Number(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return json.Number(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindGroup:
		m := make(map[string]any, len(v.Group()))
		for _, a := range v.Group() {
			m[a.Key] = jsonValue(a.Value.Resolve())
		}

		return m
	default:
		return anyValue(v.Any())
	}
}

func anyValue(x any) any {
	switch t := x.(type) {
	case nil:
		return nil
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	}

	b, err := json.Marshal(x)
	if err != nil {
		return fmt.Sprintf("%+v", x)
	}

	var out any

	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()

	if err := dec.Decode(&out); err != nil {
		return string(b)
	}

	return out
}

func cloneTree(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))

	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			v = cloneTree(m)
		}

		dst[k] = v
	}

	return dst
}

func levelColour(l slog.Level) color.Code {
	switch {
	case l <= slog.LevelDebug:
		return color.FgWhite
	case l <= slog.LevelInfo:
		return color.FgCyan
	case l < slog.LevelWarn:
		return color.FgBlue
	case l < slog.LevelError:
		return color.FgYellow
	case l <= slog.LevelError+1:
		return color.FgRed
	default:
		return color.FgHiMagenta
	}
}

// NewPrettyHandler creates a PrettyHandler writing to stderr unless WithDestinationWriter is given.
func NewPrettyHandler(handlerOptions *slog.HandlerOptions, options ...Option) *PrettyHandler {
	if handlerOptions == nil {
		handlerOptions = &slog.HandlerOptions{}
	}

	h := &PrettyHandler{
		opts:   *handlerOptions,
		attrs:  make(map[string]any),
		mu:     &sync.Mutex{},
		f:      colorjson.NewFormatter(),
		writer: os.Stderr,
	}

	for _, opt := range options {
		opt(h)
	}

	h.f.DisabledColor = !h.colour

	return h
}

// Option implements a functional options pattern for PrettyHandler.
type Option func(h *PrettyHandler)

// WithDestinationWriter sets the destination writer for the PrettyHandler.
func WithDestinationWriter(writer io.Writer) Option {
	return func(h *PrettyHandler) {
		h.writer = writer
	}
}

// WithColour enables color output for the PrettyHandler.
func WithColour() Option {
	return func(h *PrettyHandler) {
		h.colour = true
	}
}

// WithAutoColour enables color output when w is a terminal, honouring NO_COLOR and FORCE_COLOR.
func WithAutoColour(w io.Writer) Option {
	return func(h *PrettyHandler) {
		h.colour = color.EnabledFor(w)
	}
}

// WithOutputEmptyAttrs writes "{}" for records without attributes.
func WithOutputEmptyAttrs() Option {
	return func(h *PrettyHandler) {
		h.outputEmptyAttrs = true
	}
}
