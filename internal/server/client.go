// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/matt-FFFFFF/consoletext/internal/sse"
)

var (
	// ErrConnect is returned when the event stream cannot be opened.
	ErrConnect = errors.New("could not connect to event server")
	// ErrStatus is returned when the server answers with a non-200 status.
	ErrStatus = errors.New("unexpected status from event server")
	// ErrDecode is returned when an event cannot be decoded.
	ErrDecode = errors.New("could not decode event")
)

// Attach streams events from the server at baseURL to l until the stream ends or ctx is done.
// When raw is not nil the undecoded stream is copied to it.
func Attach(ctx context.Context, baseURL string, l progress.Listener, raw io.Writer) error {
	url := strings.TrimSuffix(baseURL, "/") + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Join(ErrConnect, err)
	}

	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Join(ErrConnect, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	ctxlog.Debug(ctx, "attached to event stream", "url", url)

	r := sse.NewTeeReader(resp.Body, raw)

	for {
		ev, err := r.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() //nolint:wrapcheck
			}

			return err //nolint:wrapcheck
		}

		if ev == nil {
			return nil
		}

		var e progress.Event
		if err := json.Unmarshal([]byte(ev.Data), &e); err != nil {
			return errors.Join(ErrDecode, err)
		}

		l.OnEvent(e)
	}
}
