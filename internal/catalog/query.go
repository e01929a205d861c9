// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/store"
)

// Leaf is a cataloged leaf together with the field it belongs to.
type Leaf struct {
	model.LeafRecord
	OwnerID    int64
	FieldLabel string
	Key        fieldpath.Key
}

// Fields returns the cached fields of a form in discovery order.
func (c *Catalog) Fields(ctx context.Context, formID int64) ([]model.CachedField, error) {
	rows, err := c.queries.ListFieldCacheByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("listing cached fields: %w", err)
	}

	fields := make([]model.CachedField, 0, len(rows))
	for _, row := range rows {
		f, err := cachedFieldFromRow(row)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Leaves returns every cataloged leaf of a form with its composite key.
func (c *Catalog) Leaves(ctx context.Context, formID int64) ([]Leaf, error) {
	fields, err := c.Fields(ctx, formID)
	if err != nil {
		return nil, err
	}

	var leaves []Leaf
	for _, f := range fields {
		for _, rec := range f.Leaves {
			kind, ok := fieldpath.ParseKind(rec.Kind)
			if !ok {
				c.logger.Warn("ignoring cached leaf of unknown kind", "form_id", formID, "kind", rec.Kind, "path", rec.Path)
				continue
			}
			leaves = append(leaves, Leaf{
				LeafRecord: rec,
				OwnerID:    f.OwnerID,
				FieldLabel: f.FieldLabel,
				Key:        fieldpath.NewKey(f.OwnerID, kind, rec.Path),
			})
		}
	}
	return leaves, nil
}

// FieldCount returns the number of cached fields of a form.
func (c *Catalog) FieldCount(ctx context.Context, formID int64) (int, error) {
	n, err := c.queries.CountFieldCacheByForm(ctx, formID)
	if err != nil {
		return 0, fmt.Errorf("counting cached fields: %w", err)
	}
	return int(n), nil
}

// ScanHistory returns the most recent scan log rows of a form, newest first.
func (c *Catalog) ScanHistory(ctx context.Context, formID int64, limit int) ([]model.ScanLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := c.queries.ListScanLogsByForm(ctx, store.ListScanLogsByFormParams{
		FormID: formID,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing scan log: %w", err)
	}

	logs := make([]model.ScanLog, len(rows))
	for i, row := range rows {
		logs[i] = scanLogFromRow(row)
	}
	return logs, nil
}

// LastScanned returns when a form was last scanned successfully. The boolean
// is false if it never was.
func (c *Catalog) LastScanned(ctx context.Context, formID int64) (time.Time, bool, error) {
	row, err := c.queries.GetLastSuccessfulScan(ctx, formID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading last scan: %w", err)
	}
	return row.ScannedAt, true, nil
}

// PruneScanLog deletes scan log rows older than the retention period.
func (c *Catalog) PruneScanLog(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := c.queries.DeleteScanLogsBefore(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("pruning scan log: %w", err)
	}
	return n, nil
}

func cachedFieldFromRow(row store.FieldCache) (model.CachedField, error) {
	f := model.CachedField{
		ID:          row.ID,
		FormID:      row.FormID,
		OwnerID:     row.OwnerID,
		FieldPath:   row.FieldPath,
		FieldType:   row.FieldType,
		FieldLabel:  row.FieldLabel,
		IsRepeater:  row.IsRepeater,
		InRepeater:  row.InRepeater,
		HasOptions:  row.HasOptions,
		Structure:   row.FieldStructure,
		LastScanned: row.LastScanned,
	}
	if row.ParentOwnerID.Valid {
		parent := row.ParentOwnerID.Int64
		f.ParentOwnerID = &parent
	}
	if err := json.Unmarshal([]byte(row.Leaves), &f.Leaves); err != nil {
		return model.CachedField{}, fmt.Errorf("decoding leaves of %s: %w", row.FieldPath, err)
	}
	if f.Leaves == nil {
		f.Leaves = []model.LeafRecord{}
	}
	return f, nil
}

func scanLogFromRow(row store.ScanLog) model.ScanLog {
	return model.ScanLog{
		ID:            row.ID,
		RunID:         row.RunID,
		FormID:        row.FormID,
		ScanType:      row.ScanType,
		FieldsFound:   int(row.FieldsFound),
		NewFields:     int(row.NewFields),
		UpdatedFields: int(row.UpdatedFields),
		DeletedFields: int(row.DeletedFields),
		Status:        row.Status,
		ErrorMessage:  row.ErrorMessage,
		DurationMs:    row.DurationMs,
		ScannedAt:     row.ScannedAt,
	}
}
