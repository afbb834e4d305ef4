// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package fsio provides the disk primitives used by the metadata cache.
// Every operation passes through a shared Limiter so the process never holds more
// than a bounded number of file handles at once, no matter how many refreshes or
// loads are in flight.
package fsio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "modmeta/cli/internal/errors"

	"golang.org/x/sync/semaphore"
)

// DefaultLimit is the number of concurrent file operations when none is configured.
const DefaultLimit = 10

// Limiter bounds concurrent file operations. It is safe for concurrent use and
// is meant to be shared by every component doing disk I/O.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a limiter admitting at most n concurrent operations.
func NewLimiter(n int) *Limiter {
	if n <= 0 {
		n = DefaultLimit
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(n))}
}

// do runs fn while holding one slot.
func (l *Limiter) do(ctx context.Context, fn func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn()
}

// Read returns the contents of path.
func (l *Limiter) Read(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := l.do(ctx, func() error {
		var rerr error
		data, rerr = os.ReadFile(path)
		return rerr
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.IOFailed, "read "+path, err)
	}
	return data, nil
}

// Write replaces the contents of path, creating parent directories as needed.
// The write is not atomic; callers that need crash safety keep a backup copy.
func (l *Limiter) Write(ctx context.Context, path string, data []byte) error {
	err := l.do(ctx, func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.IOFailed, "write "+path, err)
	}
	return nil
}

// Copy copies src over dst byte for byte.
func (l *Limiter) Copy(ctx context.Context, src, dst string) error {
	err := l.do(ctx, func() error {
		in, err := os.Open(src)
		if err != nil {
			return err
		}
		defer in.Close()

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
	if err != nil {
		return apperrors.Wrap(apperrors.IOFailed, fmt.Sprintf("copy %s to %s", src, dst), err)
	}
	return nil
}

// Exists reports whether path exists. It does not take a limiter slot because
// it never opens the file.
func (l *Limiter) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// ReadJSON reads path and decodes it into a T. Read failures are IOFailed,
// malformed content is DecodeFailed.
func ReadJSON[T any](ctx context.Context, l *Limiter, path string) (T, error) {
	var v T
	data, err := l.Read(ctx, path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, apperrors.Wrap(apperrors.DecodeFailed, "decode "+path, err)
	}
	return v, nil
}
