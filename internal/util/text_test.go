// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestIsValidLanguageCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"de", true},
		{"pt_BR", true},
		{"pt-BR", true},
		{"", false},
		{"DE", false},
		{"deu", false},
		{"pt_br", false},
		{"de_DE_x", false},
		{"d1", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsValidLanguageCode(tt.code); got != tt.want {
				t.Errorf("IsValidLanguageCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keeps whitespace", " cm ", " cm "},
		{"composes", "Gro\u0308\u00dfe", "Gr\u00f6\u00dfe"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
