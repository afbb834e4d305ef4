// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"modmeta/cli/internal/httperrors"
	"modmeta/cli/internal/manifest"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showJSON    bool
	showRefresh bool
)

// metaCmd groups the commands that inspect and maintain the metadata cache.
var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Inspect and maintain cached launcher metadata",
}

// metaShowCmd prints a summary of the current metadata snapshot.
var metaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a summary of the cached metadata",
	Long: `Loads launcher metadata (from the cache, the metadata service, or the backup copy,
in that order) and prints one line per manifest.

With --refresh a fresh copy is fetched first; if that fails the cached copy is shown
and a warning is logged. With --json the whole snapshot is written to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := a.bootstrap(ctx); err != nil {
			return err
		}
		if showRefresh && !a.offline() {
			stop := startSpinner(os.Stdout, "Refreshing launcher metadata")
			a.registry.RefreshInBackground(ctx)
			stop()
		}

		meta, err := a.registry.Require()
		if err != nil {
			return err
		}
		if showJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(summaryTable(meta)).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), table)
		return nil
	},
}

// metaRefreshCmd forces a fresh download.
var metaRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download fresh metadata and replace the cached copy",
	Long: `Fetches all five manifests from the metadata service. The current cache file is
kept as the backup copy before the new one is written. If any manifest cannot be
fetched, the cached metadata is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if a.offline() {
			return errors.New("refresh needs the metadata service; run it without --offline")
		}

		stop := startSpinner(os.Stdout, "Refreshing launcher metadata")
		err = a.registry.Refresh(cmd.Context())
		stop()
		if err != nil {
			return httperrors.FormatNetworkError(cmd.ErrOrStderr(), err,
				"refreshing launcher metadata", httperrors.ExtractHostFromURL(a.source.BaseURL()))
		}

		meta := a.registry.Current()
		pterm.Fprintln(cmd.OutOrStdout(), pterm.Green("✓ Metadata refreshed: "+
			strconv.Itoa(len(meta.Minecraft.Versions))+" game versions, latest release "+meta.Minecraft.Latest.Release))
		return nil
	},
}

// metaPathCmd prints where the cache lives.
var metaPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the metadata cache location",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, a.cacheDir)
		for _, p := range []string{a.store.PrimaryPath(), a.store.BackupPath()} {
			state := "missing"
			if a.io.Exists(p) {
				state = "present"
			}
			fmt.Fprintf(out, "  %s (%s)\n", p, state)
		}
		return nil
	},
}

// summaryTable builds the rows of `meta show`.
func summaryTable(meta *manifest.Metadata) pterm.TableData {
	data := pterm.TableData{
		{"Manifest", "Game versions", "Builds", "Latest"},
		{
			string(manifest.Minecraft),
			strconv.Itoa(len(meta.Minecraft.Versions)),
			"-",
			fmt.Sprintf("%s (snapshot %s)", meta.Minecraft.Latest.Release, meta.Minecraft.Latest.Snapshot),
		},
	}
	for _, name := range manifest.LoaderNames() {
		lm, _ := meta.Loader(name)
		latest := "-"
		if len(lm.GameVersions) > 0 && len(lm.GameVersions[0].Loaders) > 0 {
			latest = lm.GameVersions[0].Loaders[0].ID
		}
		data = append(data, []string{
			string(name),
			strconv.Itoa(len(lm.GameVersions)),
			strconv.Itoa(lm.BuildCount()),
			latest,
		})
	}
	return data
}

func init() {
	rootCmd.AddCommand(metaCmd)
	metaCmd.AddCommand(metaShowCmd, metaRefreshCmd, metaPathCmd)
	metaShowCmd.Flags().BoolVar(&showJSON, "json", false, "Write the full snapshot as JSON")
	metaShowCmd.Flags().BoolVar(&showRefresh, "refresh", false, "Try to fetch fresh metadata before showing it")
}
