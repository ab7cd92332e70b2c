// Package settings stores locsync access tokens outside the project so the
// config file can be committed without secrets.
//
// Tokens are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/locsync/auth.json  (default: ~/.local/share/locsync/auth.json)
//
// The file is a JSON object keyed by app ID (the token part before "!").
// File permissions are 0600 (owner read/write only).
//
// Lookup order for the access token:
//  1. access_token in the config file
//  2. LOCSYNC_ACCESS_TOKEN environment variable (also read from .env)
//  3. the default entry of this store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	dataDirName = "locsync"
	fileName    = "auth.json"
)

// Entry is one stored access token.
type Entry struct {
	// Token is the full access token ("<app id>!<secret>").
	Token string `json:"token"`
	// Name is the app name reported by the remote project at login.
	Name string `json:"name,omitempty"`
	// Default marks the entry used when the config file has no token.
	Default bool `json:"default,omitempty"`
	// Saved is the Unix timestamp of the login.
	Saved int64 `json:"saved,omitempty"`
}

// Store holds all stored tokens, keyed by app ID.
type Store map[string]*Entry

// AppID extracts the app ID from an access token.
func AppID(token string) string {
	id, _, _ := strings.Cut(token, "!")
	return id
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for locsync.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the locsync data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the token store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the token store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tokens: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

// SetToken stores a token and makes it the default.
func SetToken(token, name string) error {
	appID := AppID(token)
	if appID == "" {
		return fmt.Errorf("access token has no app ID")
	}

	store := Load()
	for _, e := range store {
		e.Default = false
	}
	store[appID] = &Entry{
		Token:   token,
		Name:    name,
		Default: true,
		Saved:   time.Now().Unix(),
	}
	return Save(store)
}

// Token returns the stored token for appID. With an empty appID it returns
// the default entry, or the only entry when exactly one is stored.
func Token(appID string) string {
	store := Load()
	if appID != "" {
		if e := store[appID]; e != nil {
			return e.Token
		}
		return ""
	}
	for _, e := range store {
		if e.Default {
			return e.Token
		}
	}
	if len(store) == 1 {
		for _, e := range store {
			return e.Token
		}
	}
	return ""
}

// Remove deletes the token for an app ID.
func Remove(appID string) error {
	store := Load()
	if _, ok := store[appID]; !ok {
		return nil // Nothing to delete
	}
	delete(store, appID)
	return Save(store)
}

// RemoveAll removes all stored tokens.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// AppIDs returns the stored app IDs in sorted order.
func (s Store) AppIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a token for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
