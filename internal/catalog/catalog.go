// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog keeps the per-form snapshot of discovered fields and their
// translatable leaves.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/source"
	"github.com/olegiv/ocms-formtrans/internal/store"
)

// ErrFormNotFound is returned when the form to scan is missing or trashed.
var ErrFormNotFound = errors.New("form not found")

// DefaultHistoryLimit is the number of scan log rows returned when no limit is given.
const DefaultHistoryLimit = 20

// Invalidator drops cached data derived from a form.
type Invalidator interface {
	InvalidateForm(ctx context.Context, formID int64)
}

// SyncStats counts what a sync did to the catalog of one form.
type SyncStats struct {
	Found   int `json:"fields_found"`
	New     int `json:"new_fields"`
	Updated int `json:"updated_fields"`
	Deleted int `json:"deleted_fields"`
}

// Catalog scans forms and serves the stored snapshot.
type Catalog struct {
	db          *sql.DB
	queries     *store.Queries
	source      source.Source
	walker      *fieldpath.Walker
	logger      *slog.Logger
	invalidator Invalidator
}

// New creates a catalog.
func New(db *sql.DB, src source.Source, walker *fieldpath.Walker, logger *slog.Logger) *Catalog {
	return &Catalog{
		db:      db,
		queries: store.New(db),
		source:  src,
		walker:  walker,
		logger:  logger,
	}
}

// SetInvalidator registers the cache notified after every successful scan.
func (c *Catalog) SetInvalidator(inv Invalidator) {
	c.invalidator = inv
}

// Scan loads a form, discovers its leaves and syncs them into the catalog.
// Every attempt is recorded in the scan log. A missing or trashed form fails
// with ErrFormNotFound and leaves the catalog untouched.
func (c *Catalog) Scan(ctx context.Context, formID int64, scanType string) (*model.ScanLog, error) {
	start := time.Now()
	if scanType == "" {
		scanType = model.ScanTypeFull
	}

	stats, scanErr := c.scan(ctx, formID)

	params := store.CreateScanLogParams{
		RunID:         uuid.NewString(),
		FormID:        formID,
		ScanType:      scanType,
		FieldsFound:   int64(stats.Found),
		NewFields:     int64(stats.New),
		UpdatedFields: int64(stats.Updated),
		DeletedFields: int64(stats.Deleted),
		Status:        model.ScanStatusSuccess,
		DurationMs:    time.Since(start).Milliseconds(),
		ScannedAt:     start.UTC(),
	}
	if scanErr != nil {
		params.Status = model.ScanStatusError
		params.ErrorMessage = scanErr.Error()
	}

	row, err := c.queries.CreateScanLog(ctx, params)
	if err != nil {
		c.logger.Error("failed to write scan log", "error", err, "form_id", formID, "category", model.EventCategoryScan)
		row = store.ScanLog{
			RunID:         params.RunID,
			FormID:        params.FormID,
			ScanType:      params.ScanType,
			FieldsFound:   params.FieldsFound,
			NewFields:     params.NewFields,
			UpdatedFields: params.UpdatedFields,
			DeletedFields: params.DeletedFields,
			Status:        params.Status,
			ErrorMessage:  params.ErrorMessage,
			DurationMs:    params.DurationMs,
			ScannedAt:     params.ScannedAt,
		}
	}
	entry := scanLogFromRow(row)

	if scanErr != nil {
		c.logger.Warn("scan failed", "form_id", formID, "run_id", row.RunID, "error", scanErr, "category", model.EventCategoryScan)
		return &entry, scanErr
	}

	c.logger.Info("form scanned",
		"form_id", formID,
		"run_id", row.RunID,
		"found", stats.Found,
		"new", stats.New,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
		"duration_ms", row.DurationMs,
	)
	if c.invalidator != nil {
		c.invalidator.InvalidateForm(ctx, formID)
	}
	return &entry, nil
}

func (c *Catalog) scan(ctx context.Context, formID int64) (SyncStats, error) {
	form, err := c.source.Load(ctx, formID)
	if errors.Is(err, source.ErrNotFound) {
		return SyncStats{}, fmt.Errorf("%w: %d", ErrFormNotFound, formID)
	}
	if err != nil {
		return SyncStats{}, fmt.Errorf("loading form %d: %w", formID, err)
	}

	discovered, err := c.walker.Discover(form)
	if err != nil {
		return SyncStats{}, fmt.Errorf("discovering form %d: %w", formID, err)
	}
	return c.Sync(ctx, formID, discovered)
}

// ScanAll scans every form offered by the source. Failures of single forms
// are logged and counted; they do not stop the run.
func (c *Catalog) ScanAll(ctx context.Context, scanType string) (scanned, failed int, err error) {
	forms, err := c.source.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("listing forms: %w", err)
	}
	for _, f := range forms {
		if ctx.Err() != nil {
			return scanned, failed, ctx.Err()
		}
		if _, err := c.Scan(ctx, f.ID, scanType); err != nil {
			failed++
			continue
		}
		scanned++
	}
	return scanned, failed, nil
}

// Sync reconciles discovered fields with the stored snapshot of a form in one
// transaction. Rows are matched by field path: unknown paths are inserted,
// known ones overwritten and vanished ones deleted.
func (c *Catalog) Sync(ctx context.Context, formID int64, discovered []fieldpath.DiscoveredField) (SyncStats, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncStats{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := c.queries.WithTx(tx)

	if n, err := q.DeleteLegacyGroupFieldCache(ctx, formID); err != nil {
		return SyncStats{}, fmt.Errorf("purging legacy group rows: %w", err)
	} else if n > 0 {
		c.logger.Info("purged legacy group rows", "form_id", formID, "count", n)
	}

	existing, err := q.ListFieldCacheByForm(ctx, formID)
	if err != nil {
		return SyncStats{}, fmt.Errorf("listing cached fields: %w", err)
	}
	byPath := make(map[string]store.FieldCache, len(existing))
	for _, row := range existing {
		byPath[row.FieldPath] = row
	}

	now := time.Now().UTC()
	stats := SyncStats{Found: len(discovered)}
	seen := make(map[string]bool, len(discovered))

	for _, df := range discovered {
		if seen[df.Path] {
			continue
		}
		seen[df.Path] = true

		leaves, err := json.Marshal(leafRecords(df.Leaves))
		if err != nil {
			return SyncStats{}, fmt.Errorf("encoding leaves of %s: %w", df.Path, err)
		}
		parent := sql.NullInt64{Int64: df.ParentOwnerID, Valid: df.ParentOwnerID != 0}

		if old, ok := byPath[df.Path]; ok {
			err = q.UpdateFieldCache(ctx, store.UpdateFieldCacheParams{
				ID:             old.ID,
				OwnerID:        df.OwnerID,
				FieldType:      df.Type,
				FieldLabel:     df.Label,
				ParentOwnerID:  parent,
				IsRepeater:     df.IsRepeater,
				InRepeater:     df.InRepeater,
				HasOptions:     df.HasOptions,
				Leaves:         string(leaves),
				FieldStructure: df.Structure,
				LastScanned:    now,
			})
			if err != nil {
				return SyncStats{}, fmt.Errorf("updating %s: %w", df.Path, err)
			}
			stats.Updated++
			continue
		}

		err = q.InsertFieldCache(ctx, store.InsertFieldCacheParams{
			FormID:         formID,
			OwnerID:        df.OwnerID,
			FieldPath:      df.Path,
			FieldType:      df.Type,
			FieldLabel:     df.Label,
			ParentOwnerID:  parent,
			IsRepeater:     df.IsRepeater,
			InRepeater:     df.InRepeater,
			HasOptions:     df.HasOptions,
			Leaves:         string(leaves),
			FieldStructure: df.Structure,
			LastScanned:    now,
		})
		if err != nil {
			return SyncStats{}, fmt.Errorf("inserting %s: %w", df.Path, err)
		}
		stats.New++
	}

	for _, row := range existing {
		if seen[row.FieldPath] {
			continue
		}
		if err := q.DeleteFieldCache(ctx, row.ID); err != nil {
			return SyncStats{}, fmt.Errorf("deleting %s: %w", row.FieldPath, err)
		}
		stats.Deleted++
	}

	if err := tx.Commit(); err != nil {
		return SyncStats{}, fmt.Errorf("committing sync: %w", err)
	}
	return stats, nil
}

func leafRecords(leaves []fieldpath.Leaf) []model.LeafRecord {
	out := make([]model.LeafRecord, len(leaves))
	for i, l := range leaves {
		out[i] = model.LeafRecord{
			Kind:    string(l.Kind),
			Path:    l.Path,
			Value:   l.Value,
			Context: l.Context,
		}
	}
	return out
}
