// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const listFieldCacheByForm = `-- name: ListFieldCacheByForm :many
SELECT id, form_id, owner_id, field_path, field_type, field_label, parent_owner_id,
    is_repeater, in_repeater, has_options, leaves, field_structure, last_scanned
FROM field_cache
WHERE form_id = ?
ORDER BY id`

func (q *Queries) ListFieldCacheByForm(ctx context.Context, formID int64) ([]FieldCache, error) {
	rows, err := q.db.QueryContext(ctx, listFieldCacheByForm, formID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []FieldCache
	for rows.Next() {
		var i FieldCache
		if err := rows.Scan(
			&i.ID,
			&i.FormID,
			&i.OwnerID,
			&i.FieldPath,
			&i.FieldType,
			&i.FieldLabel,
			&i.ParentOwnerID,
			&i.IsRepeater,
			&i.InRepeater,
			&i.HasOptions,
			&i.Leaves,
			&i.FieldStructure,
			&i.LastScanned,
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

const insertFieldCache = `-- name: InsertFieldCache :exec
INSERT INTO field_cache (
    form_id, owner_id, field_path, field_type, field_label, parent_owner_id,
    is_repeater, in_repeater, has_options, leaves, field_structure, last_scanned
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertFieldCacheParams struct {
	FormID         int64         `json:"form_id"`
	OwnerID        int64         `json:"owner_id"`
	FieldPath      string        `json:"field_path"`
	FieldType      string        `json:"field_type"`
	FieldLabel     string        `json:"field_label"`
	ParentOwnerID  sql.NullInt64 `json:"parent_owner_id"`
	IsRepeater     bool          `json:"is_repeater"`
	InRepeater     bool          `json:"in_repeater"`
	HasOptions     bool          `json:"has_options"`
	Leaves         string        `json:"leaves"`
	FieldStructure string        `json:"field_structure"`
	LastScanned    time.Time     `json:"last_scanned"`
}

func (q *Queries) InsertFieldCache(ctx context.Context, arg InsertFieldCacheParams) error {
	_, err := q.db.ExecContext(ctx, insertFieldCache,
		arg.FormID,
		arg.OwnerID,
		arg.FieldPath,
		arg.FieldType,
		arg.FieldLabel,
		arg.ParentOwnerID,
		arg.IsRepeater,
		arg.InRepeater,
		arg.HasOptions,
		arg.Leaves,
		arg.FieldStructure,
		arg.LastScanned,
	)
	return err
}

const updateFieldCache = `-- name: UpdateFieldCache :exec
UPDATE field_cache SET
    owner_id = ?,
    field_type = ?,
    field_label = ?,
    parent_owner_id = ?,
    is_repeater = ?,
    in_repeater = ?,
    has_options = ?,
    leaves = ?,
    field_structure = ?,
    last_scanned = ?
WHERE id = ?`

type UpdateFieldCacheParams struct {
	OwnerID        int64         `json:"owner_id"`
	FieldType      string        `json:"field_type"`
	FieldLabel     string        `json:"field_label"`
	ParentOwnerID  sql.NullInt64 `json:"parent_owner_id"`
	IsRepeater     bool          `json:"is_repeater"`
	InRepeater     bool          `json:"in_repeater"`
	HasOptions     bool          `json:"has_options"`
	Leaves         string        `json:"leaves"`
	FieldStructure string        `json:"field_structure"`
	LastScanned    time.Time     `json:"last_scanned"`
	ID             int64         `json:"id"`
}

func (q *Queries) UpdateFieldCache(ctx context.Context, arg UpdateFieldCacheParams) error {
	_, err := q.db.ExecContext(ctx, updateFieldCache,
		arg.OwnerID,
		arg.FieldType,
		arg.FieldLabel,
		arg.ParentOwnerID,
		arg.IsRepeater,
		arg.InRepeater,
		arg.HasOptions,
		arg.Leaves,
		arg.FieldStructure,
		arg.LastScanned,
		arg.ID,
	)
	return err
}

const deleteFieldCache = `-- name: DeleteFieldCache :exec
DELETE FROM field_cache WHERE id = ?`

func (q *Queries) DeleteFieldCache(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteFieldCache, id)
	return err
}

const deleteLegacyGroupFieldCache = `-- name: DeleteLegacyGroupFieldCache :execrows
DELETE FROM field_cache WHERE form_id = ? AND owner_id = 0 AND field_type = 'group'`

// DeleteLegacyGroupFieldCache removes group rows written before group owners
// were made negative.
func (q *Queries) DeleteLegacyGroupFieldCache(ctx context.Context, formID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteLegacyGroupFieldCache, formID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countFieldCacheByForm = `-- name: CountFieldCacheByForm :one
SELECT COUNT(*) FROM field_cache WHERE form_id = ?`

func (q *Queries) CountFieldCacheByForm(ctx context.Context, formID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFieldCacheByForm, formID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
