// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package client is the consumer side of the account API.

It keeps the issued session in local storage, attaches the bearer token to
every request it sends, and clears the session on logout.

# Persisted State

The session is stored as JSON under a single key, "user", holding the
display username and the token:

	{"user": {"username": "alice", "token": "eyJ..."}}
*/
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// sessionKey is the single storage key holding the session.
const sessionKey = "user"

// ErrNoSession is returned when no session is stored.
var ErrNoSession = errors.New("client: not logged in")

// Session is the persisted identity returned by register and login.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// SessionStore persists at most one session.
type SessionStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// FileSessionStore keeps the session in a JSON file readable only by the owner.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore creates a store backed by path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// DefaultSessionPath returns ~/.rendezvous/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("client: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".rendezvous", "session.json"), nil
}

// Load reads the stored session. A missing file or key yields ErrNoSession.
func (store *FileSessionStore) Load() (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("client: read session: %w", err)
	}

	var document map[string]*Session
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("client: decode session: %w", err)
	}

	session := document[sessionKey]
	if session == nil || session.Token == "" {
		return nil, ErrNoSession
	}
	return session, nil
}

// Save replaces the stored session.
func (store *FileSessionStore) Save(session *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := json.MarshalIndent(map[string]*Session{sessionKey: session}, "", "  ")
	if err != nil {
		return fmt.Errorf("client: encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		return fmt.Errorf("client: create session dir: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file.
	tmp := store.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("client: write session: %w", err)
	}
	if err := os.Rename(tmp, store.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("client: write session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (store *FileSessionStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(store.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("client: clear session: %w", err)
	}
	return nil
}
