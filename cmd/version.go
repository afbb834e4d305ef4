// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import "fmt"

// Build information, set with -ldflags "-X modmeta/cli/cmd.Version=...".
var (
	Version = "0.0.0-dev"
	Commit  = ""
)

// versionString is what --version prints.
func versionString() string {
	if Commit == "" {
		return fmt.Sprintf("modmeta %s", Version)
	}
	return fmt.Sprintf("modmeta %s (%s)", Version, Commit)
}
