// Package config loads and stores CLI configuration in the XDG config dir.
// Values come from config.json, overridden by MODMETA_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modmeta/cli/internal/xdg"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (MODMETA_META_URL, ...).
const EnvPrefix = "MODMETA"

// DefaultMetaURL is the metadata service base used when nothing else is configured.
const DefaultMetaURL = "https://meta.modrinth.com"

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel      string `json:"log_level" mapstructure:"log_level"`
	MetaURL       string `json:"meta_url" mapstructure:"meta_url"`
	CacheDir      string `json:"cache_dir,omitempty" mapstructure:"cache_dir"`
	IOConcurrency int    `json:"io_concurrency" mapstructure:"io_concurrency"`
	HTTPTimeout   int    `json:"http_timeout_seconds" mapstructure:"http_timeout_seconds"`
	Offline       bool   `json:"offline" mapstructure:"offline"`
	Keychain      bool   `json:"keychain" mapstructure:"keychain"` // read a mirror token from the OS keychain
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:      "info",
		MetaURL:       DefaultMetaURL,
		IOConcurrency: 10,
		HTTPTimeout:   30,
		Keychain:      true,
	}
}

// Timeout returns the HTTP timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.HTTPTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTPTimeout) * time.Second
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults (still subject to env overrides).
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(p string) (Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("meta_url", defaults.MetaURL)
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("io_concurrency", defaults.IOConcurrency)
	v.SetDefault("http_timeout_seconds", defaults.HTTPTimeout)
	v.SetDefault("offline", defaults.Offline)
	v.SetDefault("keychain", defaults.Keychain)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(p); err == nil {
		v.SetConfigFile(p)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return defaults, fmt.Errorf("read config %s: %w", p, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return defaults, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return defaults, fmt.Errorf("parse config: %w", err)
	}
	c.MetaURL = strings.TrimRight(c.MetaURL, "/")
	if c.IOConcurrency <= 0 {
		c.IOConcurrency = defaults.IOConcurrency
	}
	return c, nil
}

// Exists reports whether a config file is present.
func Exists() bool {
	p, err := Path()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
