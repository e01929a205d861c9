// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Sample form seeded into an empty local source in development.
const (
	SampleFormID    = 1
	SampleFormLabel = "Contact"
)

const sampleFormDefinition = `{
  "id": 1,
  "label": "Contact",
  "status": "publish",
  "groups": [
    {"id": 1, "label": "Contact details", "sections": [{"id": 1, "fields": [
      {"id": 1, "type": "text", "label": "Name", "meta": {"placeholder": "Your full name", "invalid_feedback": "Please enter your name"}},
      {"id": 2, "type": "email", "label": "Email", "meta": {"placeholder": "you@example.com", "help": "We never share your address"}},
      {"id": 3, "type": "select", "label": "Topic", "meta": {"placeholder": "Choose a topic", "data_grid_select": {
        "columns": [{"id": 0, "label": "Label"}, {"id": 1, "label": "Value"}],
        "groups": [{"label": "Topics", "rows": [
          {"id": 1, "data": ["General question", "general"]},
          {"id": 2, "data": ["Support", "support"]},
          {"id": 3, "data": ["Billing", "billing"]}
        ]}]
      }}},
      {"id": 4, "type": "textarea", "label": "Message", "meta": {"placeholder": "How can we help?"}},
      {"id": 5, "type": "submit", "label": "", "meta": {"text": "Send message"}}
    ]}]}
  ]
}`

// Seed inserts a sample form into the local form source when it is empty.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	count, err := queries.CountSourceForms(ctx)
	if err != nil {
		return fmt.Errorf("counting source forms: %w", err)
	}
	if count > 0 {
		slog.Info("source forms already present, skipping seed", "count", count)
		return nil
	}

	if err := queries.UpsertSourceForm(ctx, UpsertSourceFormParams{
		ID:          SampleFormID,
		Label:       SampleFormLabel,
		Status:      "publish",
		Definition:  sampleFormDefinition,
		DateUpdated: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("creating sample form: %w", err)
	}

	slog.Info("created sample form", "id", SampleFormID, "label", SampleFormLabel)
	return nil
}
