// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cache persists metadata snapshots to disk and loads them back with a
// three-tier fallback: the primary cache file, a fresh fetch, then the backup copy.
//
// Two files live in the cache directory: metadata.json (primary) and
// metadata.json.bak (backup). The backup only ever receives a snapshot that was
// known good: either a copy of a primary that decoded cleanly, or a freshly
// fetched snapshot. Writes are not atomic; a crash mid-write is survivable because
// the backup is updated before the primary is overwritten.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"

	apperrors "modmeta/cli/internal/errors"
	"modmeta/cli/internal/fsio"
	"modmeta/cli/internal/logging"
	"modmeta/cli/internal/manifest"

	"github.com/pterm/pterm"
)

const (
	// PrimaryFile is the name of the primary cache file.
	PrimaryFile = "metadata.json"
	// BackupFile is the name of the backup cache file.
	BackupFile = PrimaryFile + ".bak"
)

// Fetcher produces a fresh snapshot from the metadata service.
type Fetcher interface {
	FetchAll(ctx context.Context) (*manifest.Metadata, error)
}

// Store reads and writes the snapshot cache files.
type Store struct {
	primary string
	backup  string
	io      *fsio.Limiter
	fetcher Fetcher
	logger  *pterm.Logger

	// mu serializes multi-step file sequences (fetch-and-write, repair, save).
	mu sync.Mutex
}

// New creates a store rooted at dir. All file access goes through io.
func New(dir string, io *fsio.Limiter, fetcher Fetcher, logger *pterm.Logger) *Store {
	return &Store{
		primary: filepath.Join(dir, PrimaryFile),
		backup:  filepath.Join(dir, BackupFile),
		io:      io,
		fetcher: fetcher,
		logger:  logging.OrDiscard(logger),
	}
}

// PrimaryPath returns the path of the primary cache file.
func (s *Store) PrimaryPath() string { return s.primary }

// BackupPath returns the path of the backup cache file.
func (s *Store) BackupPath() string { return s.backup }

// Load returns a snapshot from the first tier that can produce one:
//
//  1. the primary file, if it decodes;
//  2. a fresh fetch, when online is true, written to both primary and backup;
//  3. the backup file, which is then copied over the primary.
//
// A failed fetch falls through to the backup instead of being returned. When no
// tier yields a snapshot the error is MetadataUnavailable and joins every tier's
// cause. A failure to repair the primary from the backup is returned as IOFailed.
func (s *Store) Load(ctx context.Context, online bool) (*manifest.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var causes []error

	meta, err := fsio.ReadJSON[manifest.Metadata](ctx, s.io, s.primary)
	if err == nil {
		s.logger.Debug("loaded metadata from cache", s.logger.Args("path", s.primary))
		return &meta, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	s.logPrimaryMiss(err)
	causes = append(causes, err)

	if online {
		fetched, err := s.fetchAndStore(ctx)
		if err == nil {
			return fetched, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("unable to fetch launcher metadata", s.logger.Args("error", logging.Mask(err.Error())))
		causes = append(causes, err)
	}

	meta, err = fsio.ReadJSON[manifest.Metadata](ctx, s.io, s.backup)
	if err == nil {
		if err := s.io.Copy(ctx, s.backup, s.primary); err != nil {
			return nil, apperrors.Wrap(apperrors.IOFailed, "restore metadata backup", err)
		}
		s.logger.Info("restored metadata from backup", s.logger.Args("path", s.backup))
		return &meta, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	causes = append(causes, err)

	return nil, apperrors.Wrap(apperrors.MetadataUnavailable, "no launcher metadata available", errors.Join(causes...))
}

// fetchAndStore fetches a snapshot and writes it to the primary and the backup.
func (s *Store) fetchAndStore(ctx context.Context) (*manifest.Metadata, error) {
	if s.fetcher == nil {
		return nil, apperrors.New(apperrors.FetchFailed, "no fetcher configured")
	}
	meta, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.IOFailed, "encode metadata", err)
	}
	if err := s.io.Write(ctx, s.primary, data); err != nil {
		return nil, err
	}
	if err := s.io.Write(ctx, s.backup, data); err != nil {
		return nil, err
	}
	s.logger.Info("fetched launcher metadata", s.logger.Args("path", s.primary))
	return meta, nil
}

// Save persists meta as the new primary. If the current primary decodes, it is
// first copied byte for byte to the backup, so an interrupted write always leaves
// a valid snapshot behind. A primary that does not decode is never mirrored.
func (s *Store) Save(ctx context.Context, meta *manifest.Metadata) error {
	if meta == nil {
		return apperrors.New(apperrors.IOFailed, "refusing to save empty metadata")
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return apperrors.Wrap(apperrors.IOFailed, "encode metadata", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.io.Exists(s.primary) {
		if _, err := fsio.ReadJSON[manifest.Metadata](ctx, s.io, s.primary); err == nil {
			if err := s.io.Copy(ctx, s.primary, s.backup); err != nil {
				return apperrors.Wrap(apperrors.IOFailed, "back up metadata", err)
			}
		} else if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		} else {
			s.logger.Warn("current metadata cache is unreadable, keeping existing backup",
				s.logger.Args("path", s.primary, "error", err.Error()))
		}
	}

	if err := s.io.Write(ctx, s.primary, data); err != nil {
		return apperrors.Wrap(apperrors.IOFailed, "write metadata", err)
	}
	s.logger.Debug("saved metadata", s.logger.Args("path", s.primary))
	return nil
}

func (s *Store) logPrimaryMiss(err error) {
	if apperrors.Is(err, apperrors.DecodeFailed) {
		s.logger.Warn("metadata cache is corrupt", s.logger.Args("path", s.primary, "error", err.Error()))
		return
	}
	s.logger.Debug("no usable metadata cache", s.logger.Args("path", s.primary))
}
