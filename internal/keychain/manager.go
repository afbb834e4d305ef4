// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps the metadata mirror token in the OS credential store.
//
// The public metadata service needs no credentials. A private mirror configured
// through meta_url may require a bearer token; it is stored here rather than in
// config.json, which only holds non-sensitive settings.
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "modmeta"

// KeyMetaToken is the keychain key of the mirror bearer token.
const KeyMetaToken = "meta_token"

// ErrNoToken is returned when no token has been stored.
var ErrNoToken = errors.New("no metadata token stored")

// Manager provides thread-safe access to the stored token.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// openRing opens the OS keyring using native platform backends only.
// There is no encrypted-file fallback; without a native store the token
// can still be passed through MODMETA_META_TOKEN.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	return keyring.Open(cfg)
}

// SaveMetaToken stores token, replacing any previous one.
func (m *Manager) SaveMetaToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty metadata token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: KeyMetaToken, Data: []byte(token), Label: "modmeta metadata token"})
}

// LoadMetaToken returns the stored token or ErrNoToken.
func (m *Manager) LoadMetaToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyMetaToken)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNoToken
	}
	return string(it.Data), nil
}

// ClearMetaToken removes the stored token. Clearing an absent token is not an error.
func (m *Manager) ClearMetaToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Remove(KeyMetaToken); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
