// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textutil cleans user-supplied text before validation.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SmartTrim normalizes s for storage and comparison.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC, so visually equal input compares equal.
// 2. Removes control characters (including tabs and newlines).
// 3. Collapses every whitespace run into a single space.
// 4. Trims leading and trailing spaces.
func SmartTrim(s string) string {
	t := transform.Chain(norm.NFC, transform.RemoveFunc(unicode.IsControl))
	cleaned, _, err := transform.String(t, s)
	if err != nil {
		cleaned = s
	}

	return strings.Join(strings.Fields(cleaned), " ")
}
