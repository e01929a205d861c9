// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/store"
)

// DefaultValueProperty is the meta property a language field is filled
// through.
const DefaultValueProperty = "default_value"

// ErrNoLanguageField is returned when a form has no language field.
var ErrNoLanguageField = errors.New("language field not configured")

// SetLanguageField makes fieldID the language field of a form. The field
// must be a cataloged section field of the form.
func (s *Store) SetLanguageField(ctx context.Context, formID, fieldID int64) (model.LanguageField, error) {
	var v ValidationError
	if formID <= 0 {
		v.add("form_id", "must be a positive integer")
	}
	if fieldID <= 0 {
		v.add("field_id", "must be a positive integer")
	}
	if len(v.Fields) > 0 {
		return model.LanguageField{}, &v
	}

	fields, err := s.leaves.Fields(ctx, formID)
	if err != nil {
		return model.LanguageField{}, err
	}
	var found bool
	for _, f := range fields {
		if f.OwnerID == fieldID && !f.InRepeater {
			found = true
			break
		}
	}
	if !found {
		v.add("field_id", "is not a field of this form")
		return model.LanguageField{}, &v
	}

	now := time.Now().UTC()
	row, err := s.queries.UpsertLanguageField(ctx, store.UpsertLanguageFieldParams{
		FormID:    formID,
		FieldID:   fieldID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.LanguageField{}, fmt.Errorf("saving language field of form %d: %w", formID, err)
	}
	s.logger.Info("language field set", "form_id", formID, "field_id", fieldID)
	return languageFieldFromRow(row), nil
}

// LanguageField returns the language field of a form. The boolean is false
// if none is configured.
func (s *Store) LanguageField(ctx context.Context, formID int64) (model.LanguageField, bool, error) {
	row, err := s.queries.GetLanguageField(ctx, formID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LanguageField{}, false, nil
	}
	if err != nil {
		return model.LanguageField{}, false, fmt.Errorf("reading language field of form %d: %w", formID, err)
	}
	return languageFieldFromRow(row), true, nil
}

// ClearLanguageField removes the language field of a form.
func (s *Store) ClearLanguageField(ctx context.Context, formID int64) error {
	n, err := s.queries.DeleteLanguageField(ctx, formID)
	if err != nil {
		return fmt.Errorf("clearing language field of form %d: %w", formID, err)
	}
	if n == 0 {
		return ErrNoLanguageField
	}
	return nil
}

func languageFieldFromRow(row store.LanguageField) model.LanguageField {
	return model.LanguageField{
		FormID:    row.FormID,
		FieldID:   row.FieldID,
		UpdatedAt: row.UpdatedAt,
	}
}
