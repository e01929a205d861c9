// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"sort"
	"strings"

	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/util"
)

// ValidationError maps input fields to what is wrong with them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Validate checks a save request. It returns nil or a *ValidationError.
func (in SaveInput) Validate() error {
	var v ValidationError

	if in.FormID <= 0 {
		v.add("form_id", "must be a positive integer")
	}
	if in.OwnerID == 0 {
		v.add("field_id", "is required")
	}

	if in.FieldPath == "" {
		v.add("field_path", "is required")
	} else if _, err := fieldpath.ParsePath(in.FieldPath); err != nil {
		v.add("field_path", "is not a valid field path")
	}

	if in.PropertyKind == "" {
		v.add("property_type", "is required")
	} else if _, ok := fieldpath.ParseKind(in.PropertyKind); !ok {
		v.add("property_type", "is not a known property type")
	}

	if in.LanguageCode == "" {
		v.add("language_code", "is required")
	} else if !util.IsValidLanguageCode(in.LanguageCode) {
		v.add("language_code", "must look like de or pt_BR")
	}

	if strings.TrimSpace(in.TranslatedValue) == "" {
		v.add("translated_value", "is required")
	}

	if len(v.Fields) > 0 {
		return &v
	}
	return nil
}
