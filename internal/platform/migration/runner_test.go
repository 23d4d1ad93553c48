// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/rendezvous/internal/platform/migration"
)

/*
TestToPgx5DSN checks scheme rewriting for the migrate driver.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/rendezvous?sslmode=disable", "pgx5://u:p@db:5432/rendezvous?sslmode=disable"},
		{"postgresql://db/rendezvous", "pgx5://db/rendezvous"},
		{"pgx5://db/rendezvous", "pgx5://db/rendezvous"},
		{"host=db dbname=rendezvous", "host=db dbname=rendezvous"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
		})
	}
}
