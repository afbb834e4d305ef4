// Package manifesttest provides test helpers for building metadata snapshots,
// serving them from an httptest server, and faking the aggregator.
//
// # Usage
//
//	meta := manifesttest.Sample("v1")
//	srv := manifesttest.NewServer(t, meta, manifesttest.FailSegment("forge", http.StatusInternalServerError))
//	f := &manifesttest.Fetcher{Results: []*manifest.Metadata{meta}}
package manifesttest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"modmeta/cli/internal/manifest"
)

// Sample builds a complete snapshot whose every manifest is stamped with tag, so
// tests can tell apart manifests that came from different fetches.
func Sample(tag string) *manifest.Metadata {
	released := time.Date(2023, 6, 7, 9, 35, 21, 0, time.UTC)
	loader := func(prefix string) manifest.LoaderManifest {
		return manifest.LoaderManifest{GameVersions: []manifest.GameVersion{
			{
				ID:     "1.20.1",
				Stable: true,
				Loaders: []manifest.LoaderVersion{
					{ID: prefix + "-" + tag + "-beta", URL: "https://maven.example.com/" + prefix + "/beta.json", Stable: false},
					{ID: prefix + "-" + tag + "-stable", URL: "https://maven.example.com/" + prefix + "/stable.json", Stable: true},
				},
			},
			{
				ID:     "1.8",
				Stable: true,
				Loaders: []manifest.LoaderVersion{
					{ID: prefix + "-" + tag + "-legacy", URL: "https://maven.example.com/" + prefix + "/legacy.json", Stable: true},
				},
			},
		}}
	}
	return &manifest.Metadata{
		Minecraft: manifest.VersionManifest{
			Latest: manifest.LatestVersion{Release: "1.20.1", Snapshot: "23w31a-" + tag},
			Versions: []manifest.Version{
				{
					ID:              "1.20.1",
					Type:            manifest.VersionRelease,
					URL:             "https://piston-meta.example.com/" + tag + "/1.20.1.json",
					Time:            released,
					ReleaseTime:     released,
					SHA1:            "sha-" + tag,
					ComplianceLevel: 1,
				},
				{
					ID:          "1.8",
					Type:        manifest.VersionRelease,
					URL:         "https://piston-meta.example.com/" + tag + "/1.8.json",
					Time:        released,
					ReleaseTime: released.AddDate(-9, 0, 0),
					SHA1:        "sha-legacy-" + tag,
				},
			},
		},
		Forge:    loader("forge"),
		Fabric:   loader("fabric"),
		Quilt:    loader("quilt"),
		NeoForge: loader("neoforge"),
	}
}

// Tag recovers the tag Sample stamped into each manifest, in Sources order.
// A snapshot assembled from a single fetch yields five identical tags.
func Tag(m *manifest.Metadata) []string {
	tags := []string{strings.TrimPrefix(m.Minecraft.Latest.Snapshot, "23w31a-")}
	for _, name := range manifest.LoaderNames() {
		lm, _ := m.Loader(name)
		id := lm.GameVersions[0].Loaders[0].ID
		id = strings.TrimPrefix(id, string(name)+"-")
		tags = append(tags, strings.TrimSuffix(id, "-beta"))
	}
	return tags
}

// Documents encodes each manifest of m keyed by its URL path segment.
func Documents(t testing.TB, m *manifest.Metadata) map[string][]byte {
	t.Helper()
	docs := make(map[string][]byte, len(manifest.Sources))
	for _, spec := range manifest.Sources {
		var v any = &m.Minecraft
		if lm, ok := m.Loader(spec.Name); ok {
			v = lm
		}
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("encoding %s manifest: %v", spec.Name, err)
		}
		docs[spec.Segment] = b
	}
	return docs
}

// ServerOption customizes NewServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	status map[string]int
	body   map[string][]byte
}

// FailSegment makes requests for segment answer with status.
func FailSegment(segment string, status int) ServerOption {
	return func(c *serverConfig) { c.status[segment] = status }
}

// BodyFor replaces the body served for segment.
func BodyFor(segment string, body []byte) ServerOption {
	return func(c *serverConfig) { c.body[segment] = body }
}

// Server is an httptest server publishing manifests in the service layout.
type Server struct {
	*httptest.Server
	hits atomic.Int64
	mu   sync.Mutex
	seen []string
}

// Hits returns the number of requests served.
func (s *Server) Hits() int64 { return s.hits.Load() }

// Paths returns the request paths served, in arrival order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

// NewServer starts a server for m and closes it when the test ends.
func NewServer(t testing.TB, m *manifest.Metadata, opts ...ServerOption) *Server {
	t.Helper()
	cfg := &serverConfig{status: map[string]int{}, body: map[string][]byte{}}
	for _, opt := range opts {
		opt(cfg)
	}
	docs := Documents(t, m)
	for seg, b := range cfg.body {
		docs[seg] = b
	}

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		s.seen = append(s.seen, r.URL.Path)
		s.mu.Unlock()

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[1] != manifest.FormatVersion || parts[2] != "manifest.json" {
			http.NotFound(w, r)
			return
		}
		seg := parts[0]
		if status, ok := cfg.status[seg]; ok {
			http.Error(w, http.StatusText(status), status)
			return
		}
		body, ok := docs[seg]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

// Fetcher is a scripted stand-in for the aggregator. Each FetchAll call consumes
// the next entry of Results (the last one repeats); Err, when set, wins.
type Fetcher struct {
	mu      sync.Mutex
	Results []*manifest.Metadata
	Err     error
	// Gate, when non-nil, blocks FetchAll until it is closed or ctx ends.
	Gate  chan struct{}
	calls atomic.Int64
}

// FetchAll implements the aggregator contract.
func (f *Fetcher) FetchAll(ctx context.Context) (*manifest.Metadata, error) {
	n := f.calls.Add(1)
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Results) == 0 {
		return nil, errors.New("manifesttest: no scripted result")
	}
	i := int(n) - 1
	if i >= len(f.Results) {
		i = len(f.Results) - 1
	}
	return f.Results[i], nil
}

// SetErr changes the scripted error.
func (f *Fetcher) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// Calls returns how many times FetchAll ran.
func (f *Fetcher) Calls() int64 { return f.calls.Load() }
