// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package registry owns the process-wide "current metadata" slot.
//
// A Registry is created once by the CLI root and handed to every command that needs
// metadata. Readers take the read lock only; installing a new snapshot takes the write
// lock for the duration of a pointer swap. Writers (Bootstrap and Refresh) are
// serialized by a separate mutex that readers never touch, so a slow refresh never
// blocks Current.
package registry

import (
	"context"
	"sync"

	apperrors "modmeta/cli/internal/errors"
	"modmeta/cli/internal/logging"
	"modmeta/cli/internal/manifest"

	"github.com/pterm/pterm"
)

// Store is the persistence side of the registry.
type Store interface {
	Load(ctx context.Context, online bool) (*manifest.Metadata, error)
	Save(ctx context.Context, meta *manifest.Metadata) error
}

// Fetcher produces a fresh snapshot from the metadata service.
type Fetcher interface {
	FetchAll(ctx context.Context) (*manifest.Metadata, error)
}

// Registry holds the current metadata snapshot.
type Registry struct {
	store   Store
	fetcher Fetcher
	logger  *pterm.Logger

	mu      sync.RWMutex
	current *manifest.Metadata

	// writeMu serializes Bootstrap and Refresh.
	writeMu sync.Mutex
}

// New creates an empty registry.
func New(store Store, fetcher Fetcher, logger *pterm.Logger) *Registry {
	return &Registry{
		store:   store,
		fetcher: fetcher,
		logger:  logging.OrDiscard(logger),
	}
}

// Bootstrap loads a snapshot through the store's tiered fallback and installs it.
// On failure the slot stays empty and the load error is returned wrapped as
// BootstrapFailed. Once a snapshot is installed, further calls do nothing.
func (r *Registry) Bootstrap(ctx context.Context, online bool) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.Current() != nil {
		return nil
	}

	meta, err := r.store.Load(ctx, online)
	if err != nil {
		return apperrors.Wrap(apperrors.BootstrapFailed, "load launcher metadata", err)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.BootstrapFailed, "load launcher metadata", err)
	}

	r.install(meta)
	r.logger.Debug("metadata installed", r.logger.Args("minecraft_versions", len(meta.Minecraft.Versions)))
	return nil
}

// Current returns the installed snapshot, or nil before a successful Bootstrap.
// The returned value must not be modified.
func (r *Registry) Current() *manifest.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Require returns the installed snapshot or a MetadataUnavailable error.
func (r *Registry) Require() (*manifest.Metadata, error) {
	if meta := r.Current(); meta != nil {
		return meta, nil
	}
	return nil, apperrors.New(apperrors.MetadataUnavailable, "launcher metadata has not been loaded")
}

// Refresh fetches a fresh snapshot, persists it, then swaps it in. If the fetch or
// the save fails, or ctx ends first, the installed snapshot is left as it was and
// the error is returned.
func (r *Registry) Refresh(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	meta, err := r.fetcher.FetchAll(ctx)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, meta); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.install(meta)
	r.logger.Info("metadata refreshed")
	return nil
}

// RefreshInBackground runs Refresh and logs a failure instead of returning it.
// The previous snapshot, if any, stays in place.
func (r *Registry) RefreshInBackground(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("metadata refresh failed, keeping current metadata",
			r.logger.Args("error", logging.Mask(err.Error())))
	}
}

func (r *Registry) install(meta *manifest.Metadata) {
	r.mu.Lock()
	r.current = meta
	r.mu.Unlock()
}
