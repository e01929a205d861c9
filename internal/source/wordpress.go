// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

// DefaultTablePrefix is the WordPress table prefix used when none is configured.
const DefaultTablePrefix = "wp_"

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// WordPress reads published form definitions straight from the form
// builder's table in a WordPress database.
type WordPress struct {
	db    *sql.DB
	table string
}

// OpenWordPress connects to a WordPress MySQL database.
func OpenWordPress(dsn, prefix string) (*WordPress, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing source DSN: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating source connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging source database: %w", err)
	}

	return NewWordPress(db, prefix)
}

// NewWordPress creates a source over an open database holding the
// <prefix>wsf_form table.
func NewWordPress(db *sql.DB, prefix string) (*WordPress, error) {
	if prefix == "" {
		prefix = DefaultTablePrefix
	}
	if !prefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("invalid table prefix %q", prefix)
	}
	return &WordPress{db: db, table: prefix + "wsf_form"}, nil
}

// Close closes the underlying database.
func (w *WordPress) Close() error {
	return w.db.Close()
}

// Load implements Source.
func (w *WordPress) Load(ctx context.Context, id int64) (*model.Form, error) {
	query := "SELECT id, label, status, date_updated, form_published FROM " + w.table + " WHERE id = ?"

	var (
		formID    int64
		label     string
		status    string
		updated   time.Time
		published sql.NullString
	)
	err := w.db.QueryRowContext(ctx, query, id).Scan(&formID, &label, &status, &updated, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading form %d: %w", id, err)
	}
	if status == model.FormStatusTrash || !published.Valid || published.String == "" {
		return nil, ErrNotFound
	}

	form, err := model.DecodeFormBytes([]byte(published.String))
	if err != nil {
		return nil, fmt.Errorf("form %d: %w", id, err)
	}
	finishLoad(form, formID, label, status, updated)
	return form, nil
}

// List implements Source.
func (w *WordPress) List(ctx context.Context) ([]model.FormSummary, error) {
	forms, err := w.summaries(ctx)
	if err != nil {
		return nil, err
	}
	sortByLabel(forms)
	return forms, nil
}

// Fingerprint implements Source.
func (w *WordPress) Fingerprint(ctx context.Context) (string, error) {
	forms, err := w.summaries(ctx)
	if err != nil {
		return "", err
	}
	return fingerprint(forms), nil
}

func (w *WordPress) summaries(ctx context.Context) ([]model.FormSummary, error) {
	query := "SELECT id, label, status, date_updated FROM " + w.table + " WHERE status != 'trash' ORDER BY id"

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var forms []model.FormSummary
	for rows.Next() {
		var f model.FormSummary
		if err := rows.Scan(&f.ID, &f.Label, &f.Status, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	return forms, nil
}
