// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader provides a reader that feeds every chunk it reads to a line reassembler
// while keeping a capped copy of the raw bytes. The runner uses it for each stream of a child
// process: the reassembler drives the display and the copy ends up in the result.
package teereader
