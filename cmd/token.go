// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"modmeta/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the access token for a private metadata mirror",
	Long: `A private mirror set through meta_url may require a bearer token. The token is kept
in the OS keychain and sent with every manifest request. MODMETA_META_TOKEN, when set,
takes precedence over the stored token.`,
}

// tokenSetCmd stores a token read from the terminal (without echo) or stdin.
var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the mirror token in the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readToken(cmd)
		if err != nil {
			return err
		}
		km, err := openKeychain()
		if err != nil {
			return fmt.Errorf("open keychain: %w", err)
		}
		if err := km.SaveMetaToken(token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		pterm.Fprintln(cmd.OutOrStdout(), pterm.Green("✓ Token stored in the OS keychain"))
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored mirror token",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := openKeychain()
		if err != nil {
			return fmt.Errorf("open keychain: %w", err)
		}
		if err := km.ClearMetaToken(); err != nil {
			return fmt.Errorf("remove token: %w", err)
		}
		pterm.Fprintln(cmd.OutOrStdout(), "Token removed")
		return nil
	},
}

func readToken(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && terminal.IsInteractive(f) {
		fmt.Fprint(cmd.OutOrStdout(), "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd, tokenClearCmd)
}
