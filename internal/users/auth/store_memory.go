// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taibuivan/rendezvous/pkg/uuid"
)

// MemoryUserRepository is a process-local [UserRepository] for development
// and tests. The mutex makes Insert's check and write one step.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*User
	byID       map[string]*User
	ordered    []*User
	now        func() time.Time
}

// NewMemoryUserRepository creates an empty in-memory store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byUsername: make(map[string]*User),
		byID:       make(map[string]*User),
		now:        time.Now,
	}
}

// Insert stores a copy of user unless the username is already present.
func (repository *MemoryUserRepository) Insert(_ context.Context, user *User) (string, error) {
	id, err := uuid.New()
	if err != nil {
		return "", fmt.Errorf("memory_user_repo_id_failed: %w", err)
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, taken := repository.byUsername[user.Username]; taken {
		return "", ErrDuplicateUsername
	}

	user.ID = id
	user.CreatedAt = repository.now().UTC()

	stored := cloneUser(user)
	repository.byUsername[stored.Username] = stored
	repository.byID[stored.ID] = stored
	repository.ordered = append(repository.ordered, stored)

	return id, nil
}

// FindByUsername returns a copy of the stored account.
func (repository *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, found := repository.byUsername[username]
	if !found {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

// ExistsByUsername reports whether the username is registered.
func (repository *MemoryUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	_, found := repository.byUsername[username]
	return found, nil
}

// FindByID returns the public view of the account with the given ID.
func (repository *MemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, found := repository.byID[id]
	if !found {
		return nil, ErrUserNotFound
	}
	return publicUser(user), nil
}

// List returns one page of accounts in insertion order.
func (repository *MemoryUserRepository) List(_ context.Context, limit, offset int) ([]*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	users := make([]*User, 0, limit)
	if offset < 0 || offset >= len(repository.ordered) {
		return users, nil
	}

	end := min(offset+limit, len(repository.ordered))
	for _, user := range repository.ordered[offset:end] {
		users = append(users, publicUser(user))
	}
	return users, nil
}

// Count returns the number of stored accounts.
func (repository *MemoryUserRepository) Count(_ context.Context) (int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	return len(repository.ordered), nil
}

func cloneUser(user *User) *User {
	clone := *user
	clone.PasswordHash = append([]byte(nil), user.PasswordHash...)
	clone.PasswordSalt = append([]byte(nil), user.PasswordSalt...)
	return &clone
}

func publicUser(user *User) *User {
	return &User{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt}
}
