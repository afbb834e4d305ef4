// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns failures talking to the metadata service into
// user-friendly messages.
package httperrors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category is the kind of network failure.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	ServerError
)

// FormatNetworkError prints a user-friendly explanation of err to w and returns
// it wrapped for logging. context completes the sentence "... while <context>".
func FormatNetworkError(w io.Writer, err error, context, host string) error {
	if err == nil {
		return nil
	}
	pterm.Fprint(w, Describe(err, context, host))
	return fmt.Errorf("network error: %w", err)
}

// Classify reports which Category err falls into.
func Classify(err error) Category {
	switch {
	case err == nil:
		return Generic
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	case isServerError(err.Error()):
		return ServerError
	}
	return Generic
}

// Describe renders the explanation FormatNetworkError prints.
func Describe(err error, context, host string) string {
	if host == "" {
		host = "the metadata service"
	}
	var b strings.Builder
	line := func(s string) { b.WriteString(s + "\n") }

	switch Classify(err) {
	case Timeout:
		line(fmt.Sprintf("⏱️  Connection timeout while %s", context))
		line("")
		line("The metadata service took too long to respond. This could mean:")
		line("  • Slow internet connection")
		line("  • The service is under heavy load")
		line("  • A firewall is holding the connection open")
		line("")
		line("Raise http_timeout_seconds in the config or try again later.")
	case DNS:
		line(fmt.Sprintf("🌐 Cannot resolve server address while %s", context))
		line("")
		line(fmt.Sprintf("Unable to look up %s. Please check:", host))
		line("  • Your internet connection is working")
		line("  • DNS settings are correct")
		line("  • meta_url in the config points at a real host")
	case ConnectionRefused:
		line(fmt.Sprintf("🚫 Connection refused while %s", context))
		line("")
		line(fmt.Sprintf("%s is not accepting connections.", host))
		line("Check meta_url in the config, or use --offline to work from the cache.")
	case TLS:
		line(fmt.Sprintf("🔒 Secure connection failed while %s", context))
		line("")
		line("Cannot establish a secure HTTPS connection. Try:")
		line("  • Check your system date and time")
		line("  • Verify network proxy settings")
	case ServerError:
		line(fmt.Sprintf("⚠️  Server error while %s", context))
		line("")
		line(fmt.Sprintf("%s returned an internal error. This is not a problem with your setup.", host))
		line("Cached metadata stays in use; run 'modmeta meta refresh' again in a few minutes.")
	default:
		line(fmt.Sprintf("❌ Cannot reach %s while %s", host, context))
		line("")
		line("Please check your internet connection and firewall settings.")
		if details := err.Error(); details != "" {
			if len(details) > 100 {
				details = details[:100] + "..."
			}
			line(pterm.Gray("Technical details: " + details))
		}
	}
	line("")
	return b.String()
}

func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// isServerError matches the "server returned status 5xx" errors of the manifest fetcher.
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, code := range []string{"status 500", "status 502", "status 503", "status 504"} {
		if strings.Contains(lower, code) {
			return true
		}
	}
	return strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
