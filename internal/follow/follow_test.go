// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package follow

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/textenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type collector struct {
	mu    sync.Mutex
	lines []string
}

func (c *collector) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = append(c.lines, s)
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.lines...)
}

func appendFile(t *testing.T, path, s string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)

	_, err = f.WriteString(s)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func startFollow(t *testing.T, path string, fromStart bool) (*collector, context.CancelFunc, <-chan error) {
	t.Helper()

	c := &collector{}
	r := linereassembler.New(linereassembler.HandlerFuncs{Add: c.add, Replace: func(s string) { c.add("~" + s) }},
		linereassembler.WithEncoding(textenc.UTF8))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)

	go func() {
		errCh <- File(ctx, path, fromStart, r)
	}()

	return c, cancel, errCh
}

func TestFile_FollowsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	c, cancel, errCh := startFollow(t, path, false)

	// Give the watcher time to start before appending.
	time.Sleep(100 * time.Millisecond)
	appendFile(t, path, "new\n50%\r")
	appendFile(t, path, "100%\n")

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"new", "~50%", "~100%"}, c.get())
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestFile_FromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o600))

	c, cancel, errCh := startFollow(t, path, true)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"one", "two"}, c.get())
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestFile_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("a long first line\n"), 0o600))

	c, cancel, errCh := startFollow(t, path, true)

	assert.Eventually(t, func() bool { return len(c.get()) == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o600))

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"a long first line", "x"}, c.get())
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestFile_Missing(t *testing.T) {
	err := File(context.Background(), filepath.Join(t.TempDir(), "missing"), true, nil)
	require.ErrorIs(t, err, ErrOpen)
}
