// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package server publishes console lines and progress events over HTTP.
//
// A Broadcaster is a progress.Reporter that keeps a console.Screen snapshot and fans events out to
// subscribers. Server exposes it with fiber:
//
//	GET /ping    liveness
//	GET /lines   the current snapshot as JSON
//	GET /events  Server-Sent Events: the snapshot replayed as line events, then live events
//
// Attach is the matching client.
package server
