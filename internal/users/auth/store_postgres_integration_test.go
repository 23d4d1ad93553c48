// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/rendezvous/internal/platform/migration"
	pgpool "github.com/taibuivan/rendezvous/internal/platform/postgres"
	"github.com/taibuivan/rendezvous/internal/platform/sec"
	"github.com/taibuivan/rendezvous/internal/users/auth"
)

// setupPostgres starts a container, applies the migrations and returns a repository.
func setupPostgres(t *testing.T) *auth.PostgresUserRepository {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rendezvous_test"),
		postgres.WithUsername("rendezvous"),
		postgres.WithPassword("rendezvous"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrations, err := filepath.Abs("../../../data/migrations")
	require.NoError(t, err)
	require.NoError(t, migration.RunUp(dsn, migrations, slog.Default()))

	pool, err := pgpool.NewPool(ctx, dsn, slog.Default())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return auth.NewUserRepository(pool)
}

/*
TestPostgresUserRepository_Integration exercises the store contract against a real database.
*/
func TestPostgresUserRepository_Integration(t *testing.T) {
	repository := setupPostgres(t)
	ctx := context.Background()

	hash, salt, err := sec.NewHasher().Hash("Secret123!")
	require.NoError(t, err)

	id, err := repository.Insert(ctx, &auth.User{Username: "alice", PasswordHash: hash, PasswordSalt: salt})
	require.NoError(t, err)

	_, err = repository.Insert(ctx, &auth.User{Username: "alice", PasswordHash: hash, PasswordSalt: salt})
	assert.ErrorIs(t, err, auth.ErrDuplicateUsername)

	user, err := repository.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.True(t, sec.NewHasher().Verify("Secret123!", user.PasswordHash, user.PasswordSalt))

	byID, err := repository.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	exists, err := repository.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	total, err := repository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

/*
TestPostgresUserRepository_ConcurrentInsert checks that the unique index admits one winner.
*/
func TestPostgresUserRepository_ConcurrentInsert(t *testing.T) {
	repository := setupPostgres(t)
	ctx := context.Background()

	hash, salt, err := sec.NewHasher().Hash("pw")
	require.NoError(t, err)

	const workers = 16
	var (
		wg         sync.WaitGroup
		successes  atomic.Int32
		duplicates atomic.Int32
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repository.Insert(ctx, &auth.User{Username: "racer", PasswordHash: hash, PasswordSalt: salt})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, auth.ErrDuplicateUsername):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load())
	assert.EqualValues(t, workers-1, duplicates.Load())
}
