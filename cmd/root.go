// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the modmeta CLI.
// It wires configuration, the metadata cache and the registry together and
// exposes them through Cobra subcommands with a pterm-based terminal UI.
package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	offline     bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "modmeta",
	Short: "Fetch, cache and inspect launcher metadata",
	Long: `modmeta downloads the Minecraft version manifest and the Forge, Fabric, Quilt and
NeoForge loader manifests from a metadata service, keeps a local copy with a backup,
and creates game profiles from them.

When the service cannot be reached the cached copy is used; if the cache is damaged
the backup copy is restored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Never contact the metadata service; use cached metadata only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
