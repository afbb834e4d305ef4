// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package profile creates game profiles from the installed launcher metadata.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "modmeta/cli/internal/errors"
	"modmeta/cli/internal/fsio"
	"modmeta/cli/internal/manifest"
)

const (
	// FileName is the profile descriptor written into the profile directory.
	FileName = "profile.json"
	// DefaultName is used when a profile is created without a name.
	DefaultName = "Untitled Instance"

	// SelectLatest picks the first build listed for the game version.
	SelectLatest = "latest"
	// SelectStable picks the first build flagged stable.
	SelectStable = "stable"
)

// Vanilla is the loader value for profiles without a mod loader.
const Vanilla = "vanilla"

// Profile is the descriptor stored in profile.json.
type Profile struct {
	Name          string                  `json:"name"`
	GameVersion   string                  `json:"game_version"`
	Loader        string                  `json:"loader"`
	LoaderVersion *manifest.LoaderVersion `json:"loader_version,omitempty"`
	Path          string                  `json:"-"`
}

// Request describes a profile to create.
type Request struct {
	Dir           string
	Name          string
	GameVersion   string
	Loader        string
	LoaderVersion string
}

// ResolveLoader picks a build of loader for gameVersion. selector is "latest",
// "stable", or an exact build id. A vanilla loader resolves to nil.
func ResolveLoader(meta *manifest.Metadata, loader, gameVersion, selector string) (*manifest.LoaderVersion, error) {
	loader = strings.ToLower(strings.TrimSpace(loader))
	if loader == "" || loader == Vanilla {
		return nil, nil
	}
	if meta == nil {
		return nil, apperrors.New(apperrors.MetadataUnavailable, "launcher metadata has not been loaded")
	}

	lm, ok := meta.Loader(manifest.Name(loader))
	if !ok {
		return nil, apperrors.New(apperrors.ProfileInvalid, fmt.Sprintf("unknown loader %q", loader))
	}
	gv, ok := lm.GameVersion(gameVersion)
	if !ok {
		return nil, apperrors.New(apperrors.ProfileInvalid,
			fmt.Sprintf("loader %s unsupported for game version %s", loader, gameVersion))
	}

	if selector == "" {
		selector = SelectStable
	}
	for i := range gv.Loaders {
		lv := gv.Loaders[i]
		switch selector {
		case SelectLatest:
			return &lv, nil
		case SelectStable:
			if lv.Stable {
				return &lv, nil
			}
		default:
			if lv.ID == selector {
				return &lv, nil
			}
		}
	}
	return nil, apperrors.New(apperrors.ProfileInvalid,
		fmt.Sprintf("invalid version %s for loader %s", selector, loader))
}

// Create validates req against meta and writes a new profile into req.Dir.
// The directory is created if missing; an existing file or a non-empty
// directory is refused.
func Create(ctx context.Context, io *fsio.Limiter, meta *manifest.Metadata, req Request) (*Profile, error) {
	if meta == nil {
		return nil, apperrors.New(apperrors.MetadataUnavailable, "launcher metadata has not been loaded")
	}
	if req.Dir == "" {
		return nil, apperrors.New(apperrors.ProfileInvalid, "profile directory is required")
	}
	if _, ok := meta.Minecraft.Find(req.GameVersion); !ok {
		return nil, apperrors.New(apperrors.ProfileInvalid, fmt.Sprintf("unknown game version %q", req.GameVersion))
	}

	lv, err := ResolveLoader(meta, req.Loader, req.GameVersion, req.LoaderVersion)
	if err != nil {
		return nil, err
	}
	if err := checkTarget(req.Dir); err != nil {
		return nil, err
	}

	p := &Profile{
		Name:          req.Name,
		GameVersion:   req.GameVersion,
		Loader:        Vanilla,
		LoaderVersion: lv,
		Path:          req.Dir,
	}
	if p.Name == "" {
		p.Name = DefaultName
	}
	if lv != nil {
		p.Loader = strings.ToLower(strings.TrimSpace(req.Loader))
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	if err := io.Write(ctx, filepath.Join(req.Dir, FileName), data); err != nil {
		return nil, err
	}
	return p, nil
}

func checkTarget(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.IOFailed, "inspect profile directory", err)
	}
	if !info.IsDir() {
		return apperrors.New(apperrors.ProfileInvalid, dir+" is not a directory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperrors.Wrap(apperrors.IOFailed, "inspect profile directory", err)
	}
	if len(entries) > 0 {
		return apperrors.New(apperrors.ProfileInvalid, dir+" is not empty")
	}
	return nil
}
