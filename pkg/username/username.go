// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package username canonicalizes user-supplied account names.
//
// # Usage
//
// Every lookup and every insert goes through [Canonical], so "Alice",
// " alice " and "ALICE" all resolve to the same account.
package username

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// lower is language-neutral so results do not depend on the server locale.
var lower = cases.Lower(language.Und)

// Canonical converts a raw username into its stored form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFC so composed and decomposed accents compare equal.
// 3. Lowercases.
func Canonical(raw string) string {
	result := strings.TrimSpace(raw)
	result = norm.NFC.String(result)
	return lower.String(result)
}
