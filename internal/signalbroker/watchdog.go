// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
)

// Watch reads signals from sigCh until ctx is done or sigCh is closed.
// onFirst, if not nil, is called for the first signal of each type.
// The second signal of the same type calls cancel and Watch returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc, onFirst func(os.Signal)) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, cancelling", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type", "signal", sig.String())

			seen[sig] = struct{}{}

			if onFirst != nil {
				onFirst(sig)
			}
		}
	}
}
