// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/rendezvous/internal/platform/dberr"
	"github.com/taibuivan/rendezvous/pkg/uuid"
)

// usernameConstraint is the unique index guarding canonical usernames.
const usernameConstraint = "account_username_key"

// DBTX is the subset of pgx shared by [pgxpool.Pool], pgx.Tx and pgxmock.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # User Repository

// PostgresUserRepository implements [UserRepository] on the users.account table.
type PostgresUserRepository struct {
	db DBTX
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
Insert creates the account in a single conditional statement.

Description: ON CONFLICT DO NOTHING makes the uniqueness check and the write
one atomic step. A conflict returns zero rows, which maps to
ErrDuplicateUsername. A 23505 raised by the index is mapped the same way.

Parameters:
  - context: context.Context
  - user: *User (ID and CreatedAt are filled in on success)

Returns:
  - string: The assigned ID
  - error: ErrDuplicateUsername or wrapped database errors
*/
func (repository *PostgresUserRepository) Insert(context context.Context, user *User) (string, error) {
	const query = `
		INSERT INTO users.account (id, username, passwordhash, passwordsalt)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
		RETURNING id, createdat`

	id, err := uuid.New()
	if err != nil {
		return "", fmt.Errorf("postgres_user_repo_id_failed: %w", err)
	}

	err = repository.db.QueryRow(context, query,
		id,
		user.Username,
		user.PasswordHash,
		user.PasswordSalt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dberr.IsNoRows(err) || dberr.IsUniqueViolation(err, usernameConstraint) {
			return "", ErrDuplicateUsername
		}
		return "", fmt.Errorf("postgres_user_repo_insert_failed: %w", err)
	}

	return user.ID, nil
}

/*
FindByUsername retrieves an account, including credentials, by canonical username.

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT id, username, passwordhash, passwordsalt, createdat
		FROM users.account
		WHERE username = $1`

	user := &User{}
	err := repository.db.QueryRow(context, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.PasswordSalt,
		&user.CreatedAt,
	)

	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

// ExistsByUsername reports whether the canonical username is registered.
func (repository *PostgresUserRepository) ExistsByUsername(context context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE username = $1)`

	var exists bool
	if err := repository.db.QueryRow(context, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_exists_failed: %w", err)
	}

	return exists, nil
}

// FindByID retrieves a public account view by ID. Credentials are not loaded.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, createdat
		FROM users.account
		WHERE id = $1`

	user := &User{}
	err := repository.db.QueryRow(context, query, id).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
List returns one page of accounts ordered by creation time.

Parameters:
  - context: context.Context
  - limit: int (page size)
  - offset: int (rows to skip)

Returns:
  - []*User: Accounts without credential material
  - error: Database retrieval failures
*/
func (repository *PostgresUserRepository) List(context context.Context, limit, offset int) ([]*User, error) {
	const query = `
		SELECT id, username, createdat
		FROM users.account
		ORDER BY createdat, id
		LIMIT $1 OFFSET $2`

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}

	return users, nil
}

// Count returns the total number of accounts.
func (repository *PostgresUserRepository) Count(context context.Context) (int, error) {
	const query = `SELECT count(*) FROM users.account`

	var total int64
	if err := repository.db.QueryRow(context, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	return int(total), nil
}
