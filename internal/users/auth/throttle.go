// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"
)

// Lockout policy for repeated login failures.
const (
	// LockoutThreshold is the number of failures that locks a username for one client.
	LockoutThreshold = 7

	// LockoutWindow is how long failures are remembered after the first one.
	LockoutWindow = 15 * time.Minute
)

// LoginThrottle tracks failed logins per key. The service keys attempts by
// canonical username and client address, see [FailureKey].
type LoginThrottle interface {
	Blocked(context context.Context, key string) (bool, error)
	RecordFailure(context context.Context, key string) error
	Reset(context context.Context, key string) error
}

// FailureKey scopes a lockout to one username as seen from one client, so
// failures from other addresses never lock out the owner.
func FailureKey(username, clientIP string) string {
	return username + "|" + clientIP
}

// FailureCounter is the expiring counter a [Throttle] is built on.
type FailureCounter interface {
	// Increment adds one and starts the window on the first failure.
	Increment(context context.Context, key string, window time.Duration) (int64, error)
	Count(context context.Context, key string) (int64, error)
	Clear(context context.Context, key string) error
}

// Throttle applies the lockout policy on top of a [FailureCounter].
type Throttle struct {
	counter   FailureCounter
	threshold int64
	window    time.Duration
}

// NewThrottle creates a throttle with the default lockout policy.
func NewThrottle(counter FailureCounter) *Throttle {
	return &Throttle{counter: counter, threshold: LockoutThreshold, window: LockoutWindow}
}

// Blocked reports whether key has reached the threshold.
func (throttle *Throttle) Blocked(context context.Context, key string) (bool, error) {
	failures, err := throttle.counter.Count(context, key)
	if err != nil {
		return false, err
	}
	return failures >= throttle.threshold, nil
}

// RecordFailure counts one failed attempt.
func (throttle *Throttle) RecordFailure(context context.Context, key string) error {
	_, err := throttle.counter.Increment(context, key, throttle.window)
	return err
}

// Reset forgets previous failures after a successful login.
func (throttle *Throttle) Reset(context context.Context, key string) error {
	return throttle.counter.Clear(context, key)
}

// # In-Memory Counter

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryFailureCounter is a process-local [FailureCounter] for single-replica
// deployments. Run [MemoryFailureCounter.RunSweeper] to evict expired keys.
type MemoryFailureCounter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryFailureCounter creates an empty counter using clock for expiry.
// A nil clock means time.Now.
func NewMemoryFailureCounter(clock func() time.Time) *MemoryFailureCounter {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryFailureCounter{entries: make(map[string]memoryEntry), now: clock}
}

// Increment adds one failure for key.
func (counter *MemoryFailureCounter) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	counter.mu.Lock()
	defer counter.mu.Unlock()

	now := counter.now()
	entry, found := counter.entries[key]
	if !found || !now.Before(entry.expiresAt) {
		entry = memoryEntry{expiresAt: now.Add(window)}
	}
	entry.count++
	counter.entries[key] = entry

	return entry.count, nil
}

// Count returns the live failure count for key.
func (counter *MemoryFailureCounter) Count(_ context.Context, key string) (int64, error) {
	counter.mu.Lock()
	defer counter.mu.Unlock()

	entry, found := counter.entries[key]
	if !found {
		return 0, nil
	}
	if !counter.now().Before(entry.expiresAt) {
		delete(counter.entries, key)
		return 0, nil
	}
	return entry.count, nil
}

// Clear removes key.
func (counter *MemoryFailureCounter) Clear(_ context.Context, key string) error {
	counter.mu.Lock()
	defer counter.mu.Unlock()

	delete(counter.entries, key)
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (counter *MemoryFailureCounter) Sweep() int {
	counter.mu.Lock()
	defer counter.mu.Unlock()

	now := counter.now()
	removed := 0
	for key, entry := range counter.entries {
		if !now.Before(entry.expiresAt) {
			delete(counter.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys, expired or not.
func (counter *MemoryFailureCounter) Len() int {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	return len(counter.entries)
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (counter *MemoryFailureCounter) RunSweeper(context context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			counter.Sweep()
		case <-context.Done():
			return
		}
	}
}
