// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc, onFirst func(os.Signal)) *sync.WaitGroup {
	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel, onFirst)
	}()

	return &wg
}

func TestWatch_FirstSignalCallsOnFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	got := make(chan os.Signal, 1)
	wg := startWatch(ctx, sigCh, cancel, func(s os.Signal) { got <- s })

	sigCh <- os.Interrupt

	select {
	case s := <-got:
		assert.Equal(t, os.Interrupt, s)
	case <-time.After(time.Second):
		t.Fatal("onFirst not called")
	}

	assert.NoError(t, ctx.Err())
	close(sigCh)
	wg.Wait()
}

func TestWatch_SecondSignalCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	wg := startWatch(ctx, sigCh, cancel, nil)

	sigCh <- os.Interrupt
	sigCh <- os.Interrupt
	wg.Wait()

	require.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestWatch_DifferentSignalsDoNotCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)

	var n int

	var mu sync.Mutex

	wg := startWatch(ctx, sigCh, cancel, func(os.Signal) {
		mu.Lock()
		n++
		mu.Unlock()
	})

	sigCh <- os.Interrupt
	sigCh <- syscall.SIGTERM

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return n == 2
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, ctx.Err())

	close(sigCh)
	wg.Wait()
}

func TestWatch_ReturnsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal)
	wg := startWatch(ctx, sigCh, func() {}, nil)

	cancel()
	wg.Wait()
}

func TestNewAndStop(t *testing.T) {
	ch := New(context.Background(), os.Interrupt)
	require.NotNil(t, ch)
	assert.Equal(t, 1, cap(ch))
	Stop(ch)
}
