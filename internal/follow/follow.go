// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package follow tails a growing file, like tail -f, writing new bytes to an io.Writer.
package follow

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
)

var (
	// ErrOpen is returned when the file cannot be opened.
	ErrOpen = errors.New("could not open file to follow")
	// ErrWatch is returned when the file system watcher fails.
	ErrWatch = errors.New("file watcher failed")
	// ErrRead is returned when reading the file fails.
	ErrRead = errors.New("could not read followed file")
	// ErrWrite is returned when the destination rejects data.
	ErrWrite = errors.New("could not write followed data")
)

const bufSize = 4096

// Resetter is implemented by destinations that hold partial state, such as a line reassembler.
// It is called when the followed file is truncated.
type Resetter interface {
	Reset()
}

// File copies data appended to path into w until ctx is done, and then returns ctx.Err().
// With fromStart the existing content is copied first, otherwise following starts at the end.
// If the file shrinks it is read again from the start.
func File(ctx context.Context, path string, fromStart bool, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Join(ErrOpen, err)
	}
	defer f.Close() //nolint:errcheck

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(ErrWatch, err)
	}
	defer watcher.Close() //nolint:errcheck

	t := &tail{f: f, w: w, buf: make([]byte, bufSize)}

	if !fromStart {
		if t.off, err = f.Seek(0, io.SeekEnd); err != nil {
			return errors.Join(ErrRead, err)
		}
	}

	// Watch the directory so that re-created files are seen too.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Join(ErrWatch, err)
	}

	if err := t.readAvailable(); err != nil {
		return err
	}

	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck

		case event, ok := <-watcher.Events:
			if !ok {
				return ErrWatch
			}

			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := t.checkTruncated(ctx); err != nil {
				return err
			}

			if err := t.readAvailable(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return ErrWatch
			}

			return errors.Join(ErrWatch, err)
		}
	}
}

type tail struct {
	f   *os.File
	w   io.Writer
	buf []byte
	off int64
}

func (t *tail) readAvailable() error {
	for {
		n, err := t.f.Read(t.buf)
		if n > 0 {
			t.off += int64(n)

			if _, werr := t.w.Write(t.buf[:n]); werr != nil {
				return errors.Join(ErrWrite, werr)
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return errors.Join(ErrRead, err)
		}
	}
}

func (t *tail) checkTruncated(ctx context.Context) error {
	st, err := t.f.Stat()
	if err != nil {
		return errors.Join(ErrRead, err)
	}

	if st.Size() >= t.off {
		return nil
	}

	ctxlog.Debug(ctx, "followed file truncated, reading from start", "size", st.Size(), "offset", t.off)

	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return errors.Join(ErrRead, err)
	}

	t.off = 0

	if r, ok := t.w.(Resetter); ok {
		r.Reset()
	}

	return nil
}
