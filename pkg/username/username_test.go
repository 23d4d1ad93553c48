// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package username_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/rendezvous/pkg/username"
)

/*
TestCanonical checks that case and normalization variants collapse to one form.
*/
func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already_canonical", "alice", "alice"},
		{"mixed_case", "Alice", "alice"},
		{"upper_case", "ALICE", "alice"},
		{"surrounding_space", "  bob\t", "bob"},
		{"composed_accent", "Zo\u00eb", "zo\u00eb"},
		{"decomposed_accent", "Zoe\u0308", "zo\u00eb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, username.Canonical(tt.in))
		})
	}
}

/*
TestCanonical_Idempotent ensures canonicalizing twice changes nothing.
*/
func TestCanonical_Idempotent(t *testing.T) {
	for _, in := range []string{"Alice", "ZOË", " Ünïcödé "} {
		once := username.Canonical(in)
		assert.Equal(t, once, username.Canonical(once))
	}
}
