// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const upsertLanguageField = `-- name: UpsertLanguageField :one
INSERT INTO language_fields (form_id, field_id, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (form_id) DO UPDATE SET
    field_id = excluded.field_id,
    updated_at = excluded.updated_at
RETURNING form_id, field_id, created_at, updated_at`

type UpsertLanguageFieldParams struct {
	FormID    int64     `json:"form_id"`
	FieldID   int64     `json:"field_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) UpsertLanguageField(ctx context.Context, arg UpsertLanguageFieldParams) (LanguageField, error) {
	row := q.db.QueryRowContext(ctx, upsertLanguageField,
		arg.FormID,
		arg.FieldID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i LanguageField
	err := row.Scan(
		&i.FormID,
		&i.FieldID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLanguageField = `-- name: GetLanguageField :one
SELECT form_id, field_id, created_at, updated_at FROM language_fields WHERE form_id = ?`

func (q *Queries) GetLanguageField(ctx context.Context, formID int64) (LanguageField, error) {
	row := q.db.QueryRowContext(ctx, getLanguageField, formID)
	var i LanguageField
	err := row.Scan(
		&i.FormID,
		&i.FieldID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteLanguageField = `-- name: DeleteLanguageField :execrows
DELETE FROM language_fields WHERE form_id = ?`

func (q *Queries) DeleteLanguageField(ctx context.Context, formID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteLanguageField, formID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
