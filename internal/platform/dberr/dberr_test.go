// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/rendezvous/internal/platform/dberr"
)

/*
TestIsUniqueViolation checks SQLSTATE and constraint-name matching.
*/
func TestIsUniqueViolation(t *testing.T) {
	violation := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_username_key"}
	wrapped := fmt.Errorf("insert failed: %w", violation)

	assert.True(t, dberr.IsUniqueViolation(wrapped, ""))
	assert.True(t, dberr.IsUniqueViolation(wrapped, "account_username_key"))
	assert.False(t, dberr.IsUniqueViolation(wrapped, "other_key"))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, ""))
	assert.False(t, dberr.IsUniqueViolation(errors.New("boom"), ""))
}

/*
TestIsNoRows matches pgx.ErrNoRows through wrapping only.
*/
func TestIsNoRows(t *testing.T) {
	assert.True(t, dberr.IsNoRows(pgx.ErrNoRows))
	assert.True(t, dberr.IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, dberr.IsNoRows(errors.New("no rows in result set")))
	assert.False(t, dberr.IsNoRows(nil))
}
