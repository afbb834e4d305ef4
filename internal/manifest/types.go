// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest defines the launcher metadata documents and fetches them from
// the metadata service.
//
// A Metadata value is the snapshot the rest of the launcher works from: one game
// version manifest plus one manifest per mod loader, always all five together.
package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Metadata is one consistent snapshot of every manifest. Values are immutable once
// built; holders of a *Metadata must not modify it.
type Metadata struct {
	Minecraft VersionManifest `json:"minecraft"`
	Forge     LoaderManifest  `json:"forge"`
	Fabric    LoaderManifest  `json:"fabric"`
	Quilt     LoaderManifest  `json:"quilt"`
	NeoForge  LoaderManifest  `json:"neoforge"`
}

// UnmarshalJSON rejects documents that do not carry all five manifests, so a
// partially populated snapshot can never be decoded.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		Minecraft *VersionManifest `json:"minecraft"`
		Forge     *LoaderManifest  `json:"forge"`
		Fabric    *LoaderManifest  `json:"fabric"`
		Quilt     *LoaderManifest  `json:"quilt"`
		NeoForge  *LoaderManifest  `json:"neoforge"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var missing []string
	if raw.Minecraft == nil {
		missing = append(missing, string(Minecraft))
	}
	for name, lm := range map[Name]*LoaderManifest{
		Forge:    raw.Forge,
		Fabric:   raw.Fabric,
		Quilt:    raw.Quilt,
		NeoForge: raw.NeoForge,
	} {
		if lm == nil {
			missing = append(missing, string(name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("metadata snapshot missing manifests: %s", strings.Join(sortedNames(missing), ", "))
	}

	*m = Metadata{
		Minecraft: *raw.Minecraft,
		Forge:     *raw.Forge,
		Fabric:    *raw.Fabric,
		Quilt:     *raw.Quilt,
		NeoForge:  *raw.NeoForge,
	}
	return nil
}

// Loader returns the manifest for a loader by logical name.
func (m *Metadata) Loader(name Name) (*LoaderManifest, bool) {
	switch name {
	case Forge:
		return &m.Forge, true
	case Fabric:
		return &m.Fabric, true
	case Quilt:
		return &m.Quilt, true
	case NeoForge:
		return &m.NeoForge, true
	}
	return nil, false
}

// VersionManifest lists every released game version.
type VersionManifest struct {
	Latest   LatestVersion `json:"latest"`
	Versions []Version     `json:"versions"`
}

// LatestVersion names the newest release and snapshot.
type LatestVersion struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// VersionType is the release channel of a game version.
type VersionType string

const (
	VersionRelease  VersionType = "release"
	VersionSnapshot VersionType = "snapshot"
	VersionOldAlpha VersionType = "old_alpha"
	VersionOldBeta  VersionType = "old_beta"
)

// Version is one entry of the game version manifest.
type Version struct {
	ID              string      `json:"id"`
	Type            VersionType `json:"type"`
	URL             string      `json:"url"`
	Time            time.Time   `json:"time"`
	ReleaseTime     time.Time   `json:"releaseTime"`
	SHA1            string      `json:"sha1"`
	ComplianceLevel uint32      `json:"complianceLevel"`
	AssetsIndexURL  string      `json:"assetsIndexUrl,omitempty"`
	AssetsIndexSHA1 string      `json:"assetsIndexSha1,omitempty"`
}

// Find returns the game version with the given id.
func (vm *VersionManifest) Find(id string) (*Version, bool) {
	for i := range vm.Versions {
		if vm.Versions[i].ID == id {
			return &vm.Versions[i], true
		}
	}
	return nil, false
}

// LoaderManifest lists, per game version, the loader builds available for it.
type LoaderManifest struct {
	GameVersions []GameVersion `json:"gameVersions"`
}

// GameVersion groups loader builds compatible with one game version.
type GameVersion struct {
	ID      string          `json:"id"`
	Stable  bool            `json:"stable"`
	Loaders []LoaderVersion `json:"loaders"`
}

// LoaderVersion is one loader build.
type LoaderVersion struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Stable bool   `json:"stable"`
}

// GameVersion returns the entry for the given game version id.
func (lm *LoaderManifest) GameVersion(id string) (*GameVersion, bool) {
	for i := range lm.GameVersions {
		if lm.GameVersions[i].ID == id {
			return &lm.GameVersions[i], true
		}
	}
	return nil, false
}

// BuildCount returns the total number of loader builds across all game versions.
func (lm *LoaderManifest) BuildCount() int {
	n := 0
	for _, gv := range lm.GameVersions {
		n += len(gv.Loaders)
	}
	return n
}
