// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/matt-FFFFFF/consoletext/internal/sse"
)

// DefaultPort is the port the server listens on by default.
const DefaultPort = 32768

// ErrListen is returned when the server cannot listen.
var ErrListen = errors.New("event server failed to listen")

// keepAlive is how often an idle event stream gets a comment line.
var keepAlive = 15 * time.Second

// Server serves a Broadcaster over HTTP.
type Server struct {
	addr   string
	b      *Broadcaster
	app    *fiber.App
	logger *slog.Logger
}

// New creates a server for b listening on addr, e.g. ":32768".
func New(ctx context.Context, addr string, b *Broadcaster) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		addr:   addr,
		b:      b,
		app:    app,
		logger: ctxlog.Logger(ctx).With("component", "server"),
	}

	app.Get("/ping", s.handlePing)
	app.Get("/lines", s.handleLines)
	app.Get("/events", s.handleEvents)

	return s
}

// Run listens until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("starting event server", "listen", s.addr)

	if err := s.app.Listen(s.addr); err != nil {
		return errors.Join(ErrListen, err)
	}

	return nil
}

// Serve serves on an existing listener until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting event server", "listen", ln.Addr().String())

	if err := s.app.Listener(ln); err != nil {
		return errors.Join(ErrListen, err)
	}

	return nil
}

// Shutdown stops the server. Event streams end when the broadcaster is closed.
func (s *Server) Shutdown() error {
	return s.app.Shutdown() //nolint:wrapcheck
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleLines(c *fiber.Ctx) error {
	return c.JSON(s.b.Screen().Lines())
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	sub := s.b.Subscribe()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	s.logger.Debug("event stream opened", "remote", c.IP(), "snapshot", len(sub.Snapshot))

	// io.Pipe gives per-event flushing: fasthttp writes a chunk for each Write.
	pr, pw := io.Pipe()
	go s.stream(sub, pw)

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

func (s *Server) stream(sub *Subscription, pw *io.PipeWriter) {
	defer sub.Cancel()

	var seq uint64

	send := func(e progress.Event) error {
		data, err := json.Marshal(e)
		if err != nil {
			return err //nolint:wrapcheck
		}

		seq++

		return sse.Write(pw, sse.Event{
			ID:   strconv.FormatUint(seq, 10),
			Type: e.Type.String(),
			Data: string(data),
		})
	}

	for _, e := range sub.Snapshot {
		if err := send(e); err != nil {
			s.logger.Debug("event stream closed", "error", err)
			_ = pw.CloseWithError(err)

			return
		}
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-sub.C:
			if !ok {
				s.logger.Debug("event stream finished")
				_ = pw.Close()

				return
			}

			if err := send(e); err != nil {
				s.logger.Debug("event stream closed", "error", err)
				_ = pw.CloseWithError(err)

				return
			}
		case <-ticker.C:
			if err := sse.Comment(pw, "keep-alive"); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
	}
}
