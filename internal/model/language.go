// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Language text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// DefaultLanguageCode is used when no language configuration is available.
const DefaultLanguageCode = "en"

// Language is a site language offered by the language provider.
type Language struct {
	Code      string `json:"code"`       // en, de, pt_BR
	Name      string `json:"name"`       // English, Deutsch
	IsDefault bool   `json:"is_default"` // only one can be default
	Direction string `json:"direction"`  // ltr, rtl
}

// IsRTL returns true if the language is right-to-left.
func (l *Language) IsRTL() bool {
	return l.Direction == DirectionRTL
}

// rtlLanguages lists primary codes written right-to-left.
var rtlLanguages = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
}

// DirectionFor returns the text direction of a language code.
func DirectionFor(code string) string {
	if len(code) >= 2 && rtlLanguages[code[:2]] {
		return DirectionRTL
	}
	return DirectionLTR
}
