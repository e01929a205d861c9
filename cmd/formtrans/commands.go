// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/olegiv/ocms-formtrans/internal/auth"
	"github.com/olegiv/ocms-formtrans/internal/catalog"
	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/source"
)

func printTokenHash(w io.Writer, token string) error {
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}

// importForm stores a form definition in the local source and scans it.
func importForm(ctx context.Context, db *sql.DB, walker *fieldpath.Walker, logger *slog.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening form file: %w", err)
	}
	defer func() { _ = f.Close() }()

	form, err := model.DecodeForm(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if form.Status == "" {
		form.Status = model.FormStatusPublish
	}

	local := source.NewLocal(db)
	if err := local.Put(ctx, form); err != nil {
		return fmt.Errorf("importing form: %w", err)
	}
	slog.Info("form imported", "form_id", form.ID, "label", form.Label)

	return scanOne(ctx, catalog.New(db, local, walker, logger), int64(form.ID))
}

// scanOne scans a single form and prints the scan log entry.
func scanOne(ctx context.Context, cat *catalog.Catalog, formID int64) error {
	if formID <= 0 {
		return fmt.Errorf("invalid form id %d", formID)
	}
	entry, err := cat.Scan(ctx, formID, model.ScanTypeFull)
	if err != nil {
		return fmt.Errorf("scanning form %d: %w", formID, err)
	}
	_, _ = fmt.Printf("form %d: %d fields (%d new, %d updated, %d deleted) in %dms\n",
		formID, entry.FieldsFound, entry.NewFields, entry.UpdatedFields, entry.DeletedFields, entry.DurationMs)
	return nil
}
