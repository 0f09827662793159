// Package creds persists a single cached auth token on local storage.
//
// No encryption is applied; confidentiality relies on filesystem
// permission bits.
package creds

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// envCredsFile overrides the default credentials file location.
const envCredsFile = "PLEX_CREDS_FILE"

// record is the single-entry credentials file layout.
type record struct {
	AuthToken string `json:"auth_token"`
}

// Store reads and writes the cached token at one explicit path.
// Construct with New so the path is never an implicit global.
type Store struct {
	path string
}

// New returns a store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path the store operates on.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the credentials file location, honoring the
// PLEX_CREDS_FILE environment variable.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(envCredsFile)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "plextitler", "creds.json"), nil
}

// Load returns the cached token. A missing file, unreadable file, or
// malformed record all yield ok=false; Load never fails loudly.
func (s *Store) Load() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", false
	}
	if rec.AuthToken == "" {
		return "", false
	}
	return rec.AuthToken, true
}

// Save writes the token with owner-only permissions.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(record{AuthToken: token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	// WriteFile keeps the mode of a pre-existing file.
	return os.Chmod(s.path, 0o600)
}

// Clear removes the stored record. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
