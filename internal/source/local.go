// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/store"
)

// Local serves form definitions kept in the service's own source_forms table.
type Local struct {
	queries *store.Queries
}

// NewLocal creates a source over the service database.
func NewLocal(db *sql.DB) *Local {
	return &Local{queries: store.New(db)}
}

// Load implements Source.
func (l *Local) Load(ctx context.Context, id int64) (*model.Form, error) {
	row, err := l.queries.GetSourceForm(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading form %d: %w", id, err)
	}
	if row.Status == model.FormStatusTrash {
		return nil, ErrNotFound
	}

	form, err := model.DecodeFormBytes([]byte(row.Definition))
	if err != nil {
		return nil, fmt.Errorf("form %d: %w", id, err)
	}
	finishLoad(form, row.ID, row.Label, row.Status, row.DateUpdated)
	return form, nil
}

// List implements Source.
func (l *Local) List(ctx context.Context) ([]model.FormSummary, error) {
	all, err := l.summaries(ctx)
	if err != nil {
		return nil, err
	}
	forms := make([]model.FormSummary, 0, len(all))
	for _, f := range all {
		if f.Status != model.FormStatusTrash {
			forms = append(forms, f)
		}
	}
	sortByLabel(forms)
	return forms, nil
}

// Fingerprint implements Source.
func (l *Local) Fingerprint(ctx context.Context) (string, error) {
	all, err := l.summaries(ctx)
	if err != nil {
		return "", err
	}
	return fingerprint(all), nil
}

func (l *Local) summaries(ctx context.Context) ([]model.FormSummary, error) {
	rows, err := l.queries.ListSourceFormSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	forms := make([]model.FormSummary, len(rows))
	for i, r := range rows {
		forms[i] = model.FormSummary{ID: r.ID, Label: r.Label, Status: r.Status, UpdatedAt: r.DateUpdated}
	}
	return forms, nil
}

// Put stores a form definition, replacing any previous one with the same id.
func (l *Local) Put(ctx context.Context, form *model.Form) error {
	if form == nil || form.ID <= 0 {
		return errors.New("form must have a positive id")
	}
	status := form.Status
	if status == "" {
		status = model.FormStatusDraft
	}

	definition, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encoding form %d: %w", form.ID, err)
	}

	updated := form.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	if err := l.queries.UpsertSourceForm(ctx, store.UpsertSourceFormParams{
		ID:          int64(form.ID),
		Label:       form.Label,
		Status:      status,
		Definition:  string(definition),
		DateUpdated: updated.UTC(),
	}); err != nil {
		return fmt.Errorf("storing form %d: %w", form.ID, err)
	}
	return nil
}
