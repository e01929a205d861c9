// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const scanLogColumns = `id, run_id, form_id, scan_type, fields_found, new_fields, updated_fields,
    deleted_fields, status, error_message, duration_ms, scanned_at`

func scanScanLog(row rowScanner) (ScanLog, error) {
	var i ScanLog
	err := row.Scan(
		&i.ID,
		&i.RunID,
		&i.FormID,
		&i.ScanType,
		&i.FieldsFound,
		&i.NewFields,
		&i.UpdatedFields,
		&i.DeletedFields,
		&i.Status,
		&i.ErrorMessage,
		&i.DurationMs,
		&i.ScannedAt,
	)
	return i, err
}

const createScanLog = `-- name: CreateScanLog :one
INSERT INTO scan_log (
    run_id, form_id, scan_type, fields_found, new_fields, updated_fields,
    deleted_fields, status, error_message, duration_ms, scanned_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + scanLogColumns

type CreateScanLogParams struct {
	RunID         string    `json:"run_id"`
	FormID        int64     `json:"form_id"`
	ScanType      string    `json:"scan_type"`
	FieldsFound   int64     `json:"fields_found"`
	NewFields     int64     `json:"new_fields"`
	UpdatedFields int64     `json:"updated_fields"`
	DeletedFields int64     `json:"deleted_fields"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error_message"`
	DurationMs    int64     `json:"duration_ms"`
	ScannedAt     time.Time `json:"scanned_at"`
}

func (q *Queries) CreateScanLog(ctx context.Context, arg CreateScanLogParams) (ScanLog, error) {
	row := q.db.QueryRowContext(ctx, createScanLog,
		arg.RunID,
		arg.FormID,
		arg.ScanType,
		arg.FieldsFound,
		arg.NewFields,
		arg.UpdatedFields,
		arg.DeletedFields,
		arg.Status,
		arg.ErrorMessage,
		arg.DurationMs,
		arg.ScannedAt,
	)
	return scanScanLog(row)
}

const listScanLogsByForm = `-- name: ListScanLogsByForm :many
SELECT ` + scanLogColumns + ` FROM scan_log
WHERE form_id = ?
ORDER BY id DESC
LIMIT ?`

type ListScanLogsByFormParams struct {
	FormID int64 `json:"form_id"`
	Limit  int64 `json:"limit"`
}

func (q *Queries) ListScanLogsByForm(ctx context.Context, arg ListScanLogsByFormParams) ([]ScanLog, error) {
	rows, err := q.db.QueryContext(ctx, listScanLogsByForm, arg.FormID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []ScanLog
	for rows.Next() {
		i, err := scanScanLog(rows)
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

const getLastSuccessfulScan = `-- name: GetLastSuccessfulScan :one
SELECT ` + scanLogColumns + ` FROM scan_log
WHERE form_id = ? AND status = 'success'
ORDER BY id DESC
LIMIT 1`

func (q *Queries) GetLastSuccessfulScan(ctx context.Context, formID int64) (ScanLog, error) {
	row := q.db.QueryRowContext(ctx, getLastSuccessfulScan, formID)
	return scanScanLog(row)
}

const deleteScanLogsBefore = `-- name: DeleteScanLogsBefore :execrows
DELETE FROM scan_log WHERE scanned_at < ?`

func (q *Queries) DeleteScanLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteScanLogsBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
