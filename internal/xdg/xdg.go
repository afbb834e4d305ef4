// Package xdg provides helpers to resolve XDG Base Directory paths for modmeta.
// It implements the XDG Base Directory specification for determining appropriate
// locations for configuration files and cached launcher metadata on Unix-like
// systems.
//
// The package handles fallback to traditional locations when XDG environment
// variables are not set. Directories are created on first use.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "modmeta"

// ConfigDir returns the XDG config directory for modmeta.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/modmeta when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config", 0o700)
}

// CacheDir returns the XDG cache directory for modmeta.
// It falls back to ~/.cache/modmeta when XDG_CACHE_HOME is unset.
func CacheDir() (string, error) {
	return resolve("XDG_CACHE_HOME", ".cache", 0o755)
}

// MetaCacheDir returns the directory holding the metadata cache files.
// An explicit override (from config) wins over the XDG location.
func MetaCacheDir(override string) (string, error) {
	base := override
	if base == "" {
		dir, err := CacheDir()
		if err != nil {
			return "", err
		}
		base = dir
	}
	dir := filepath.Join(base, "meta")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func resolve(env, fallback string, perm os.FileMode) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, perm); err != nil {
		return "", err
	}
	return dir, nil
}
