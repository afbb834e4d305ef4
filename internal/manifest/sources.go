// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"fmt"
	"slices"
	"strings"
)

// Name is the logical name of a manifest.
type Name string

const (
	Minecraft Name = "minecraft"
	Forge     Name = "forge"
	Fabric    Name = "fabric"
	Quilt     Name = "quilt"
	NeoForge  Name = "neoforge"
)

// FormatVersion is the manifest format segment every URL carries.
const FormatVersion = "v0"

// SourceSpec maps a logical manifest name to the path segment it is published under.
type SourceSpec struct {
	Name    Name
	Segment string
}

// Sources lists every manifest a snapshot is built from.
var Sources = []SourceSpec{
	{Name: Minecraft, Segment: "minecraft"},
	{Name: Forge, Segment: "forge"},
	{Name: Fabric, Segment: "fabric"},
	{Name: Quilt, Segment: "quilt"},
	{Name: NeoForge, Segment: "neo"}, // published under the short name
}

// URL returns <base>/<segment>/v0/manifest.json.
func (s SourceSpec) URL(base string) string {
	return fmt.Sprintf("%s/%s/%s/manifest.json", strings.TrimRight(base, "/"), s.Segment, FormatVersion)
}

// LoaderNames returns the logical names of the loader manifests.
func LoaderNames() []Name {
	return []Name{Forge, Fabric, Quilt, NeoForge}
}

func sortedNames(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return out
}
