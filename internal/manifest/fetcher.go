// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxManifestBytes caps a single manifest response (64 MiB).
const maxManifestBytes = 64 << 20

// Source fetches one manifest and decodes it into out.
type Source interface {
	Fetch(ctx context.Context, spec SourceSpec, out any) error
}

// HTTPSource fetches manifests from the metadata service over HTTP.
type HTTPSource struct {
	baseURL   string
	client    *http.Client
	userAgent string
	token     string
}

// SourceOption configures an HTTPSource during construction.
type SourceOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) SourceOption {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) SourceOption {
	return func(s *HTTPSource) {
		s.client = &http.Client{Timeout: d}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) SourceOption {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// WithBearerToken authenticates requests against a private metadata mirror.
// An empty token sends no Authorization header.
func WithBearerToken(token string) SourceOption {
	return func(s *HTTPSource) {
		s.token = token
	}
}

// NewHTTPSource creates a source reading from baseURL.
func NewHTTPSource(baseURL string, opts ...SourceOption) *HTTPSource {
	s := &HTTPSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: "modmeta-cli/1.0",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseURL returns the metadata service base the source reads from.
func (s *HTTPSource) BaseURL() string { return s.baseURL }

// Fetch retrieves the manifest described by spec and decodes it into out.
func (s *HTTPSource) Fetch(ctx context.Context, spec SourceSpec, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL(s.baseURL), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxManifestBytes {
		return fmt.Errorf("manifest exceeds %d bytes", maxManifestBytes)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse manifest JSON: %w", err)
	}
	return nil
}
