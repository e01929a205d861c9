// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const translationColumns = `id, form_id, owner_id, field_path, path_hash, property_kind, language_code,
    original_value, translated_value, context, is_auto_generated, last_synced, created_at, updated_at`

func scanTranslation(row rowScanner) (Translation, error) {
	var i Translation
	err := row.Scan(
		&i.ID,
		&i.FormID,
		&i.OwnerID,
		&i.FieldPath,
		&i.PathHash,
		&i.PropertyKind,
		&i.LanguageCode,
		&i.OriginalValue,
		&i.TranslatedValue,
		&i.Context,
		&i.IsAutoGenerated,
		&i.LastSynced,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanTranslations(rows *sql.Rows) ([]Translation, error) {
	defer func() { _ = rows.Close() }()
	var items []Translation
	for rows.Next() {
		i, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertTranslation = `-- name: UpsertTranslation :one
INSERT INTO translations (
    form_id, owner_id, field_path, path_hash, property_kind, language_code,
    original_value, translated_value, context, is_auto_generated, last_synced, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (form_id, owner_id, path_hash, property_kind, language_code) DO UPDATE SET
    field_path = excluded.field_path,
    original_value = excluded.original_value,
    translated_value = excluded.translated_value,
    context = excluded.context,
    is_auto_generated = excluded.is_auto_generated,
    last_synced = excluded.last_synced,
    updated_at = excluded.updated_at
RETURNING ` + translationColumns

type UpsertTranslationParams struct {
	FormID          int64        `json:"form_id"`
	OwnerID         int64        `json:"owner_id"`
	FieldPath       string       `json:"field_path"`
	PathHash        string       `json:"path_hash"`
	PropertyKind    string       `json:"property_kind"`
	LanguageCode    string       `json:"language_code"`
	OriginalValue   string       `json:"original_value"`
	TranslatedValue string       `json:"translated_value"`
	Context         string       `json:"context"`
	IsAutoGenerated bool         `json:"is_auto_generated"`
	LastSynced      sql.NullTime `json:"last_synced"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// UpsertTranslation inserts a translation or overwrites the row with the same key.
func (q *Queries) UpsertTranslation(ctx context.Context, arg UpsertTranslationParams) (Translation, error) {
	row := q.db.QueryRowContext(ctx, upsertTranslation,
		arg.FormID,
		arg.OwnerID,
		arg.FieldPath,
		arg.PathHash,
		arg.PropertyKind,
		arg.LanguageCode,
		arg.OriginalValue,
		arg.TranslatedValue,
		arg.Context,
		arg.IsAutoGenerated,
		arg.LastSynced,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanTranslation(row)
}

const getTranslation = `-- name: GetTranslation :one
SELECT ` + translationColumns + ` FROM translations WHERE id = ?`

func (q *Queries) GetTranslation(ctx context.Context, id int64) (Translation, error) {
	row := q.db.QueryRowContext(ctx, getTranslation, id)
	return scanTranslation(row)
}

const deleteTranslation = `-- name: DeleteTranslation :execrows
DELETE FROM translations WHERE id = ?`

func (q *Queries) DeleteTranslation(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTranslation, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTranslationsByForm = `-- name: ListTranslationsByForm :many
SELECT ` + translationColumns + ` FROM translations
WHERE form_id = ?
ORDER BY language_code, owner_id, id`

func (q *Queries) ListTranslationsByForm(ctx context.Context, formID int64) ([]Translation, error) {
	rows, err := q.db.QueryContext(ctx, listTranslationsByForm, formID)
	if err != nil {
		return nil, err
	}
	return scanTranslations(rows)
}

const listTranslationsByFormAndLanguage = `-- name: ListTranslationsByFormAndLanguage :many
SELECT ` + translationColumns + ` FROM translations
WHERE form_id = ? AND language_code = ?
ORDER BY owner_id, id`

type ListTranslationsByFormAndLanguageParams struct {
	FormID       int64  `json:"form_id"`
	LanguageCode string `json:"language_code"`
}

func (q *Queries) ListTranslationsByFormAndLanguage(ctx context.Context, arg ListTranslationsByFormAndLanguageParams) ([]Translation, error) {
	rows, err := q.db.QueryContext(ctx, listTranslationsByFormAndLanguage, arg.FormID, arg.LanguageCode)
	if err != nil {
		return nil, err
	}
	return scanTranslations(rows)
}

const countTranslationsByForm = `-- name: CountTranslationsByForm :one
SELECT COUNT(*) FROM translations WHERE form_id = ? AND translated_value != ''`

func (q *Queries) CountTranslationsByForm(ctx context.Context, formID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTranslationsByForm, formID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllTranslations = `-- name: DeleteAllTranslations :execrows
DELETE FROM translations`

func (q *Queries) DeleteAllTranslations(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllTranslations)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
