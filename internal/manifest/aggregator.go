// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"
	"fmt"

	apperrors "modmeta/cli/internal/errors"
	"modmeta/cli/internal/logging"

	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

// Aggregator fetches every manifest in Sources and joins them into one snapshot.
type Aggregator struct {
	source Source
	logger *pterm.Logger
}

// NewAggregator creates an aggregator over source. A nil logger discards output.
func NewAggregator(source Source, logger *pterm.Logger) *Aggregator {
	return &Aggregator{source: source, logger: logging.OrDiscard(logger)}
}

// FetchAll fetches the five manifests concurrently. The first failure cancels the
// remaining requests and is returned; nothing fetched by this call survives it.
func (a *Aggregator) FetchAll(ctx context.Context) (*Metadata, error) {
	var (
		minecraft                      VersionManifest
		forge, fabric, quilt, neoforge LoaderManifest
	)
	targets := map[Name]any{
		Minecraft: &minecraft,
		Forge:     &forge,
		Fabric:    &fabric,
		Quilt:     &quilt,
		NeoForge:  &neoforge,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range Sources {
		spec := spec
		out := targets[spec.Name]
		g.Go(func() error {
			a.logger.Debug("fetching manifest", a.logger.Args("name", spec.Name))
			if err := a.source.Fetch(gctx, spec, out); err != nil {
				return apperrors.Wrap(apperrors.FetchFailed, fmt.Sprintf("fetch %s manifest", spec.Name), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Metadata{
		Minecraft: minecraft,
		Forge:     forge,
		Fabric:    fabric,
		Quilt:     quilt,
		NeoForge:  neoforge,
	}, nil
}
