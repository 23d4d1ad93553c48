// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taibuivan/rendezvous/internal/users/auth"
)

/*
TestMemoryFailureCounter covers counting, window expiry and clearing.
*/
func TestMemoryFailureCounter(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	counter := auth.NewMemoryFailureCounter(func() time.Time { return now })
	ctx := context.Background()

	got, err := counter.Increment(ctx, "alice", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got)

	// Later failures do not extend the window.
	now = now.Add(30 * time.Second)
	_, _ = counter.Increment(ctx, "alice", time.Minute)
	got, _ = counter.Increment(ctx, "alice", time.Minute)
	assert.EqualValues(t, 3, got)

	now = now.Add(29 * time.Second)
	count, _ := counter.Count(ctx, "alice")
	assert.EqualValues(t, 3, count)

	now = now.Add(time.Second)
	count, _ = counter.Count(ctx, "alice")
	assert.Zero(t, count)

	_, _ = counter.Increment(ctx, "bob", time.Minute)
	require.NoError(t, counter.Clear(ctx, "bob"))
	count, _ = counter.Count(ctx, "bob")
	assert.Zero(t, count)
}

/*
TestThrottle_Threshold checks the lockout boundary.
*/
func TestThrottle_Threshold(t *testing.T) {
	throttle := auth.NewThrottle(auth.NewMemoryFailureCounter(nil))
	ctx := context.Background()

	for range auth.LockoutThreshold - 1 {
		require.NoError(t, throttle.RecordFailure(ctx, "alice"))
	}
	blocked, err := throttle.Blocked(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, throttle.RecordFailure(ctx, "alice"))
	blocked, _ = throttle.Blocked(ctx, "alice")
	assert.True(t, blocked)

	require.NoError(t, throttle.Reset(ctx, "alice"))
	blocked, _ = throttle.Blocked(ctx, "alice")
	assert.False(t, blocked)
}

/*
TestMemoryFailureCounter_Sweep evicts keys that are never read again.
*/
func TestMemoryFailureCounter_Sweep(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	counter := auth.NewMemoryFailureCounter(func() time.Time { return now })
	ctx := context.Background()

	for _, key := range []string{"a|10.0.0.1", "b|10.0.0.1", "c|10.0.0.1"} {
		_, _ = counter.Increment(ctx, key, time.Minute)
	}
	now = now.Add(30 * time.Second)
	_, _ = counter.Increment(ctx, "d|10.0.0.1", time.Minute)
	require.Equal(t, 4, counter.Len())

	now = now.Add(30 * time.Second)
	assert.Equal(t, 3, counter.Sweep())
	assert.Equal(t, 1, counter.Len())

	count, _ := counter.Count(ctx, "d|10.0.0.1")
	assert.EqualValues(t, 1, count)
}

/*
TestMemoryFailureCounter_RunSweeper stops when its context is cancelled.
*/
func TestMemoryFailureCounter_RunSweeper(t *testing.T) {
	defer goleak.VerifyNone(t)

	counter := auth.NewMemoryFailureCounter(nil)
	_, _ = counter.Increment(context.Background(), "x|10.0.0.1", time.Nanosecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		counter.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return counter.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

/*
TestFailureKey separates the same username seen from different clients.
*/
func TestFailureKey(t *testing.T) {
	assert.NotEqual(t, auth.FailureKey("alice", "10.0.0.1"), auth.FailureKey("alice", "10.0.0.2"))
	assert.Equal(t, auth.FailureKey("alice", "10.0.0.1"), auth.FailureKey("alice", "10.0.0.1"))
}
