// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"modmeta/cli/internal/cache"
	"modmeta/cli/internal/config"
	"modmeta/cli/internal/fsio"
	"modmeta/cli/internal/keychain"
	"modmeta/cli/internal/logging"
	"modmeta/cli/internal/manifest"
	"modmeta/cli/internal/registry"
	"modmeta/cli/internal/xdg"

	"github.com/pterm/pterm"
)

// app is everything a command needs to work with metadata. It is built once per
// invocation; the registry inside it is the process-wide metadata slot.
type app struct {
	cfg      config.Config
	logger   *pterm.Logger
	io       *fsio.Limiter
	source   *manifest.HTTPSource
	fetcher  *manifest.Aggregator
	store    *cache.Store
	registry *registry.Registry
	cacheDir string
}

// offline reports whether the network must not be used, from the flag or config.
func (a *app) offline() bool { return offline || a.cfg.Offline }

// newApp loads configuration and builds the metadata stack. Logs go to w.
func newApp(w io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newAppWithConfig(cfg, w)
}

func newAppWithConfig(cfg config.Config, w io.Writer) (*app, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.New(level, w)

	dir, err := xdg.MetaCacheDir(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	limiter := fsio.NewLimiter(cfg.IOConcurrency)
	source := manifest.NewHTTPSource(cfg.MetaURL,
		manifest.WithTimeout(cfg.Timeout()),
		manifest.WithUserAgent("modmeta-cli/"+Version),
		manifest.WithBearerToken(metaToken(cfg, logger)),
	)
	fetcher := manifest.NewAggregator(source, logger)
	store := cache.New(dir, limiter, fetcher, logger)

	logger.Debug("metadata stack ready", logger.Args(
		"meta_url", logging.Mask(cfg.MetaURL),
		"cache_dir", dir,
		"io_concurrency", cfg.IOConcurrency,
	))

	return &app{
		cfg:      cfg,
		logger:   logger,
		io:       limiter,
		source:   source,
		fetcher:  fetcher,
		store:    store,
		registry: registry.New(store, fetcher, logger),
		cacheDir: dir,
	}, nil
}

// openKeychain is replaced in tests.
var openKeychain = keychain.NewManager

// metaToken returns the mirror token from MODMETA_META_TOKEN, or from the OS
// keychain when that is enabled. A missing token is not an error.
func metaToken(cfg config.Config, logger *pterm.Logger) string {
	if tok := os.Getenv(config.EnvPrefix + "_META_TOKEN"); tok != "" {
		return tok
	}
	if !cfg.Keychain {
		return ""
	}
	km, err := openKeychain()
	if err != nil {
		logger.Debug("keychain unavailable", logger.Args("error", err.Error()))
		return ""
	}
	tok, err := km.LoadMetaToken()
	if err != nil {
		if !errors.Is(err, keychain.ErrNoToken) {
			logger.Debug("reading metadata token failed", logger.Args("error", err.Error()))
		}
		return ""
	}
	return tok
}

// bootstrap populates the registry, printing the "metadata unavailable" panel on
// failure. Commands that cannot work without metadata return its error.
func (a *app) bootstrap(ctx context.Context) error {
	stop := startSpinner(os.Stdout, "Loading launcher metadata")
	err := a.registry.Bootstrap(ctx, !a.offline())
	stop()
	if err != nil {
		logging.PresentMetadataFailure(err, a.offline())
		return err
	}
	return nil
}
