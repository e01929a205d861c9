// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const upsertSourceForm = `-- name: UpsertSourceForm :exec
INSERT INTO source_forms (id, label, status, definition, date_updated)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    label = excluded.label,
    status = excluded.status,
    definition = excluded.definition,
    date_updated = excluded.date_updated`

type UpsertSourceFormParams struct {
	ID          int64     `json:"id"`
	Label       string    `json:"label"`
	Status      string    `json:"status"`
	Definition  string    `json:"definition"`
	DateUpdated time.Time `json:"date_updated"`
}

func (q *Queries) UpsertSourceForm(ctx context.Context, arg UpsertSourceFormParams) error {
	_, err := q.db.ExecContext(ctx, upsertSourceForm,
		arg.ID,
		arg.Label,
		arg.Status,
		arg.Definition,
		arg.DateUpdated,
	)
	return err
}

const getSourceForm = `-- name: GetSourceForm :one
SELECT id, label, status, definition, date_updated FROM source_forms WHERE id = ?`

func (q *Queries) GetSourceForm(ctx context.Context, id int64) (SourceForm, error) {
	row := q.db.QueryRowContext(ctx, getSourceForm, id)
	var i SourceForm
	err := row.Scan(
		&i.ID,
		&i.Label,
		&i.Status,
		&i.Definition,
		&i.DateUpdated,
	)
	return i, err
}

const listSourceFormSummaries = `-- name: ListSourceFormSummaries :many
SELECT id, label, status, date_updated FROM source_forms ORDER BY id`

type ListSourceFormSummariesRow struct {
	ID          int64     `json:"id"`
	Label       string    `json:"label"`
	Status      string    `json:"status"`
	DateUpdated time.Time `json:"date_updated"`
}

func (q *Queries) ListSourceFormSummaries(ctx context.Context) ([]ListSourceFormSummariesRow, error) {
	rows, err := q.db.QueryContext(ctx, listSourceFormSummaries)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []ListSourceFormSummariesRow
	for rows.Next() {
		var i ListSourceFormSummariesRow
		if err := rows.Scan(
			&i.ID,
			&i.Label,
			&i.Status,
			&i.DateUpdated,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countSourceForms = `-- name: CountSourceForms :one
SELECT COUNT(*) FROM source_forms`

func (q *Queries) CountSourceForms(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSourceForms)
	var count int64
	err := row.Scan(&count)
	return count, err
}
