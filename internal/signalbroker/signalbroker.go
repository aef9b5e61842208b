// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker hands interrupt and termination signals to the code running a child process.
//
// New subscribes a channel to the signals and Stop unsubscribes it. Watch turns a repeated signal
// into a cancellation: the first Ctrl-C reaches the child, the second one stops consoletext.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
)

// stopSignals are delivered when New is given none.
var stopSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New returns a channel subscribed to sigs, or to interrupt, SIGTERM and SIGQUIT when sigs is empty.
// The channel holds one pending signal; later ones are lost until it is read.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	if len(sigs) == 0 {
		sigs = stopSignals
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	ctxlog.Debug(ctx, "subscribed to signals", "signals", sigs)

	return ch
}

// Stop unsubscribes ch. It is left open so pending reads do not see a zero signal.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
