// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"modmeta/cli/internal/profile"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	profileName          string
	profileGameVersion   string
	profileLoader        string
	profileLoaderVersion string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage game profiles",
}

// profileCreateCmd creates a profile directory from the current metadata.
var profileCreateCmd = &cobra.Command{
	Use:   "create <dir>",
	Short: "Create a new game profile",
	Long: `Creates a profile in <dir> for the given game version and mod loader.

The loader build is picked from the loader manifest for that game version:
"latest" takes the first build listed, "stable" the first build marked stable,
and anything else must match a build id exactly. The directory must be empty or
not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := a.bootstrap(ctx); err != nil {
			return err
		}
		meta, err := a.registry.Require()
		if err != nil {
			return err
		}

		p, err := profile.Create(ctx, a.io, meta, profile.Request{
			Dir:           args[0],
			Name:          profileName,
			GameVersion:   profileGameVersion,
			Loader:        profileLoader,
			LoaderVersion: profileLoaderVersion,
		})
		if err != nil {
			return err
		}

		loader := p.Loader
		if p.LoaderVersion != nil {
			loader = fmt.Sprintf("%s %s", p.Loader, p.LoaderVersion.ID)
		}
		pterm.Fprintln(cmd.OutOrStdout(), pterm.Green(fmt.Sprintf("✓ Created profile %q (%s, %s) in %s",
			p.Name, p.GameVersion, loader, p.Path)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileCreateCmd)
	f := profileCreateCmd.Flags()
	f.StringVar(&profileName, "name", profile.DefaultName, "Profile name")
	f.StringVar(&profileGameVersion, "game-version", "", "Game version, for example 1.20.1")
	f.StringVar(&profileLoader, "loader", profile.Vanilla, "Mod loader: vanilla, forge, fabric, quilt or neoforge")
	f.StringVar(&profileLoaderVersion, "loader-version", profile.SelectStable, `Loader build: "latest", "stable" or a build id`)
	_ = profileCreateCmd.MarkFlagRequired("game-version")
}
