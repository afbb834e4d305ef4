package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modmeta/cli/internal/config"
	apperrors "modmeta/cli/internal/errors"
	"modmeta/cli/internal/keychain"
	"modmeta/cli/internal/logging"
	"modmeta/cli/internal/manifest"
	"modmeta/cli/internal/manifest/manifesttest"

	"github.com/99designs/keyring"
	"github.com/google/go-cmp/cmp"
)

// isolate points config, cache and the metadata URL at temporary locations.
func isolate(t *testing.T, metaURL string) (cacheHome string) {
	t.Helper()
	cacheHome = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Setenv("MODMETA_META_URL", metaURL)
	t.Setenv("MODMETA_OFFLINE", "false")
	t.Setenv("MODMETA_CACHE_DIR", "")
	t.Setenv("MODMETA_LOG_LEVEL", "error")
	t.Setenv("MODMETA_META_TOKEN", "")

	ring := keyring.NewArrayKeyring(nil)
	prev := openKeychain
	openKeychain = func() (*keychain.Manager, error) { return keychain.NewManagerWithRing(ring), nil }
	t.Cleanup(func() { openKeychain = prev })
	return cacheHome
}

// stdin is fed to the next run.
var stdin string

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	showVersion, offline, verbose = false, false, false
	showJSON, showRefresh, configForce = false, false, false
	profileName, profileGameVersion = "Untitled Instance", ""
	profileLoader, profileLoaderVersion = "vanilla", "stable"

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	stdin = ""
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if want := "modmeta " + Version; !strings.Contains(out, want) {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestMetaShowJSON_FetchesAndCaches(t *testing.T) {
	want := manifesttest.Sample("cli")
	srv := manifesttest.NewServer(t, want)
	cacheHome := isolate(t, srv.URL)

	out, err := run(t, "meta", "show", "--json")
	if err != nil {
		t.Fatalf("meta show error = %v", err)
	}
	var got manifest.Metadata
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not a snapshot: %v\n%s", err, out)
	}
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("meta show mismatch (-want +got):\n%s", diff)
	}

	for _, name := range []string{"metadata.json", "metadata.json.bak"} {
		if _, err := os.Stat(filepath.Join(cacheHome, "modmeta", "meta", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	// Served from cache the second time, even offline.
	hits := srv.Hits()
	if _, err := run(t, "--offline", "meta", "show", "--json"); err != nil {
		t.Fatalf("offline meta show error = %v", err)
	}
	if srv.Hits() != hits {
		t.Errorf("offline run hit the server")
	}
}

func TestMetaShow_OfflineWithoutCacheFails(t *testing.T) {
	srv := manifesttest.NewServer(t, manifesttest.Sample("cli"))
	isolate(t, srv.URL)

	_, err := run(t, "--offline", "meta", "show")
	if apperrors.KindOf(err) != apperrors.BootstrapFailed {
		t.Errorf("meta show error = %v, want %v", err, apperrors.BootstrapFailed)
	}
	if srv.Hits() != 0 {
		t.Errorf("server hits = %d, want 0", srv.Hits())
	}
}

func TestMetaRefresh_FailureKeepsCache(t *testing.T) {
	good := manifesttest.NewServer(t, manifesttest.Sample("good"))
	cacheHome := isolate(t, good.URL)
	if _, err := run(t, "meta", "refresh"); err != nil {
		t.Fatalf("meta refresh error = %v", err)
	}
	primary := filepath.Join(cacheHome, "modmeta", "meta", "metadata.json")
	before, err := os.ReadFile(primary)
	if err != nil {
		t.Fatal(err)
	}

	broken := manifesttest.NewServer(t, manifesttest.Sample("bad"),
		manifesttest.FailSegment("forge", http.StatusInternalServerError))
	t.Setenv("MODMETA_META_URL", broken.URL)

	_, err = run(t, "meta", "refresh")
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("meta refresh error = %v, want status 500", err)
	}
	after, _ := os.ReadFile(primary)
	if !bytes.Equal(before, after) {
		t.Error("failed refresh modified the cache")
	}
}

func TestMetaRefresh_RefusesOffline(t *testing.T) {
	isolate(t, "http://127.0.0.1:1")
	if _, err := run(t, "--offline", "meta", "refresh"); err == nil {
		t.Error("meta refresh --offline error = nil, want error")
	}
}

func TestMetaPath(t *testing.T) {
	cacheHome := isolate(t, "http://127.0.0.1:1")
	out, err := run(t, "meta", "path")
	if err != nil {
		t.Fatalf("meta path error = %v", err)
	}
	wantDir := filepath.Join(cacheHome, "modmeta", "meta")
	if !strings.HasPrefix(out, wantDir+"\n") {
		t.Errorf("output = %q, want it to start with %s", out, wantDir)
	}
	if !strings.Contains(out, "metadata.json.bak (missing)") {
		t.Errorf("output = %q, want backup reported missing", out)
	}
}

func TestProfileCreate(t *testing.T) {
	srv := manifesttest.NewServer(t, manifesttest.Sample("cli"))
	isolate(t, srv.URL)
	dir := filepath.Join(t.TempDir(), "modded")

	out, err := run(t, "profile", "create", dir,
		"--name", "Modded", "--game-version", "1.20.1", "--loader", "quilt", "--loader-version", "latest")
	if err != nil {
		t.Fatalf("profile create error = %v", err)
	}
	if !strings.Contains(out, "quilt-cli-beta") {
		t.Errorf("output = %q, want the resolved build", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "profile.json")); err != nil {
		t.Errorf("profile.json not written: %v", err)
	}

	_, err = run(t, "profile", "create", dir, "--game-version", "1.20.1")
	if apperrors.KindOf(err) != apperrors.ProfileInvalid {
		t.Errorf("second profile create error = %v, want %v", err, apperrors.ProfileInvalid)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t, "http://meta.example.com/")

	if _, err := run(t, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := run(t, "config", "init"); err == nil {
		t.Error("second config init error = nil, want refusal")
	}
	if _, err := run(t, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}

	out, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, `"meta_url": "http://meta.example.com"`) {
		t.Errorf("config show = %s", out)
	}
}

func TestTokenSetAndClear(t *testing.T) {
	isolate(t, "http://mirror.example.com")
	cfg := config.Default()

	stdin = "mirror-secret\n"
	if _, err := run(t, "token", "set"); err != nil {
		t.Fatalf("token set error = %v", err)
	}
	if got := metaToken(cfg, logging.Discard()); got != "mirror-secret" {
		t.Errorf("metaToken() = %q, want stored token", got)
	}

	t.Setenv("MODMETA_META_TOKEN", "from-env")
	if got := metaToken(cfg, logging.Discard()); got != "from-env" {
		t.Errorf("metaToken() = %q, want env token to win", got)
	}
	t.Setenv("MODMETA_META_TOKEN", "")

	cfg.Keychain = false
	if got := metaToken(cfg, logging.Discard()); got != "" {
		t.Errorf("metaToken() with keychain disabled = %q, want empty", got)
	}

	if _, err := run(t, "token", "clear"); err != nil {
		t.Fatalf("token clear error = %v", err)
	}
	if got := metaToken(config.Default(), logging.Discard()); got != "" {
		t.Errorf("metaToken() after clear = %q, want empty", got)
	}
}

func TestMetaShowRefresh_FallsBackToCachedCopy(t *testing.T) {
	cached := manifesttest.Sample("cached")
	good := manifesttest.NewServer(t, cached)
	isolate(t, good.URL)
	if _, err := run(t, "meta", "refresh"); err != nil {
		t.Fatalf("meta refresh error = %v", err)
	}

	broken := manifesttest.NewServer(t, manifesttest.Sample("new"),
		manifesttest.FailSegment("neo", http.StatusBadGateway))
	t.Setenv("MODMETA_META_URL", broken.URL)

	out, err := run(t, "meta", "show", "--json", "--refresh")
	if err != nil {
		t.Fatalf("meta show --refresh error = %v", err)
	}
	var got manifest.Metadata
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not a snapshot: %v", err)
	}
	if diff := cmp.Diff(cached, &got); diff != "" {
		t.Errorf("meta show --refresh mismatch (-want +got):\n%s", diff)
	}
	if broken.Hits() == 0 {
		t.Error("--refresh did not contact the service")
	}
}
