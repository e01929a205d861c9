// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/ocms-formtrans/internal/store"
)

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "formtrans-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates an in-memory SQLite database without migrations.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open(store.DriverModernc, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// each pooled connection would get its own empty in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// OrderForm is a form definition covering group labels, meta strings,
// plain and priced choice grids and a repeater.
const OrderForm = `{
  "id": 7,
  "label": "Order",
  "groups": [
    {"id": 11, "label": "Details", "sections": [{"id": 1, "fields": [
      {"id": 101, "type": "text", "label": "Name", "meta": {"placeholder": "Your name"}},
      {"id": 102, "type": "select", "label": "Color", "meta": {"data_grid_select": {"groups": [
        {"rows": [{"data": ["Red", "r"]}, {"data": ["Blue", "b"]}]}
      ]}}},
      {"id": 103, "type": "price_radio", "label": "Size", "meta": {"data_grid_price_radio": {"groups": [
        {"rows": [{"data": ["Small", "1.00"]}, {"data": ["Medium", "2.00"]}, {"data": ["Large", "3.00"]}]}
      ]}}}
    ]}]},
    {"id": 12, "label": "Guests", "sections": [{"id": 2, "fields": [
      {"id": 201, "type": "repeater", "label": "Guest list", "meta": {"repeater_sections": [
        {"fields": [{"id": 202, "type": "text", "label": "Guest name"}]}
      ]}},
      {"id": 203, "type": "submit", "label": "", "meta": {"text": "Order now"}}
    ]}]}
  ]
}`

// OrderFormFields is the number of owners discovered in OrderForm.
const OrderFormFields = 8

// OrderFormLeaves is the number of leaves discovered in OrderForm.
const OrderFormLeaves = 14
