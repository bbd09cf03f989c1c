// Package prefs is the durable client-side key/value store: the current
// credential and the display preference, nothing else. Reads and writes are
// last-write-wins with no merge semantics.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/interchat/interchat/internal/credential"
)

type data struct {
	Credential *credential.Credential `json:"credential,omitempty"`
	DarkTheme  bool                   `json:"dark_theme"`
}

// Store persists preferences to a single JSON file, loaded once at startup
// and rewritten on every change.
type Store struct {
	mu   sync.Mutex
	path string
	data data
}

// Load reads the preference file at path. A missing or unreadable file yields
// an empty store; preferences are never worth failing startup over.
func Load(path string) *Store {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	// A corrupt file is treated as empty.
	_ = json.Unmarshal(raw, &s.data)
	return s
}

// Credential returns the stored credential, if any.
func (s *Store) Credential() (credential.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Credential == nil {
		return credential.Credential{}, false
	}
	return *s.data.Credential, true
}

// SetCredential stores the credential and persists immediately.
func (s *Store) SetCredential(cred credential.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Credential = &cred
	return s.save()
}

// ClearCredential removes the stored credential, as on logout.
func (s *Store) ClearCredential() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Credential = nil
	return s.save()
}

func (s *Store) DarkTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DarkTheme
}

func (s *Store) SetDarkTheme(dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.DarkTheme = dark
	return s.save()
}

func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
