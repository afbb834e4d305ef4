// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"net"
	"strings"

	apperrors "modmeta/cli/internal/errors"

	"github.com/pterm/pterm"
)

// FailureType represents the category of a metadata failure.
type FailureType int

const (
	FailureUnknown FailureType = iota
	FailureNetwork
	FailureTimeout
	FailureDisk
	FailureCorrupt
	FailureOffline
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// ClassifyFailure categorizes a metadata load or refresh error.
func ClassifyFailure(err error, offline bool) FailureType {
	if err == nil {
		return FailureUnknown
	}
	lower := strings.ToLower(err.Error())

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout") {
		return FailureTimeout
	}
	if apperrors.Is(err, apperrors.FetchFailed) {
		return FailureNetwork
	}
	if apperrors.Is(err, apperrors.IOFailed) && !strings.Contains(lower, "no such file") {
		return FailureDisk
	}
	if apperrors.Is(err, apperrors.DecodeFailed) {
		return FailureCorrupt
	}
	if offline {
		return FailureOffline
	}
	return FailureUnknown
}

// FormatMetadataFailure formats a "metadata unavailable" condition in a user-friendly way.
func FormatMetadataFailure(err error, offline bool) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Launcher metadata unavailable"))
	builder.WriteString("\n\n")

	switch ClassifyFailure(err, offline) {
	case FailureNetwork:
		builder.WriteString("The metadata service could not be reached or returned an error.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • Your internet connection is down\n")
		builder.WriteString("  • The metadata service is having problems\n")
		builder.WriteString("  • A proxy or firewall blocks the request\n")
	case FailureTimeout:
		builder.WriteString("Fetching metadata took too long and was aborted.\n")
	case FailureDisk:
		builder.WriteString("The metadata cache could not be read or written.\n")
		builder.WriteString("Check permissions on the cache directory ('modmeta meta path').\n")
	case FailureCorrupt:
		builder.WriteString("The cached metadata is damaged and no backup copy could be used.\n")
	case FailureOffline:
		builder.WriteString("Offline mode is enabled and no cached metadata exists yet.\n")
	default:
		builder.WriteString("No cached metadata exists and none could be downloaded.\n")
	}

	builder.WriteString("\n")
	if offline {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run again without --offline to download metadata"))
	} else {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Check your connection and run 'modmeta meta refresh'"))
	}
	builder.WriteString("\n")

	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}

	return builder.String()
}

// PresentMetadataFailure displays a formatted metadata failure.
func PresentMetadataFailure(err error, offline bool) {
	fmt.Println()
	fmt.Println(FormatMetadataFailure(err, offline))
	fmt.Println()
}
