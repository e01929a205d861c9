// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small string helpers shared by the API and the
// translation store.
package util

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// langCodeRegex accepts "de", "pt_BR" and "pt-BR".
var langCodeRegex = regexp.MustCompile(`^[a-z]{2}([_-][A-Z]{2})?$`)

// IsValidLanguageCode reports whether code is a two letter language code with
// an optional region.
func IsValidLanguageCode(code string) bool {
	return langCodeRegex.MatchString(code)
}

// NormalizeText converts s to Unicode NFC, so visually equal strings compare
// equal. Whitespace is left alone.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
