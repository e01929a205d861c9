// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type Translation struct {
	ID              int64        `json:"id"`
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

type FieldCache struct {
	ID             int64         `json:"id"`
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

type ScanLog struct {
	ID            int64     `json:"id"`
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

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

type SourceForm struct {
	ID          int64     `json:"id"`
	Label       string    `json:"label"`
	Status      string    `json:"status"`
	Definition  string    `json:"definition"`
	DateUpdated time.Time `json:"date_updated"`
}

type LanguageField struct {
	FormID    int64     `json:"form_id"`
	FieldID   int64     `json:"field_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
