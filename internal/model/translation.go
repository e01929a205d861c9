// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Scan types recorded in the scan log.
const (
	ScanTypeFull      = "full"
	ScanTypeScheduled = "scheduled"
)

// Scan statuses.
const (
	ScanStatusSuccess = "success"
	ScanStatusError   = "error"
)

// LeafRecord is the persisted form of one translatable string inside a
// cached field.
type LeafRecord struct {
	Kind    string `json:"type"`
	Path    string `json:"path"`
	Value   string `json:"value"`
	Context string `json:"context,omitempty"`
}

// CachedField is a catalog row: one discovered field (or group title) of a
// form together with its translatable leaves.
type CachedField struct {
	ID            int64        `json:"id"`
	FormID        int64        `json:"form_id"`
	OwnerID       int64        `json:"field_id"`
	FieldPath     string       `json:"field_path"`
	FieldType     string       `json:"field_type"`
	FieldLabel    string       `json:"field_label"`
	ParentOwnerID *int64       `json:"parent_field_id"`
	IsRepeater    bool         `json:"is_repeater"`
	InRepeater    bool         `json:"in_repeater"`
	HasOptions    bool         `json:"has_options"`
	Leaves        []LeafRecord `json:"translatable_properties"`
	Structure     string       `json:"-"`
	LastScanned   time.Time    `json:"last_scanned"`
}

// Translation is one stored override for a leaf in one language.
type Translation struct {
	ID              int64     `json:"id"`
	FormID          int64     `json:"form_id"`
	OwnerID         int64     `json:"field_id"`
	FieldPath       string    `json:"field_path"`
	PathHash        string    `json:"field_path_hash"`
	PropertyKind    string    `json:"property_type"`
	LanguageCode    string    `json:"language_code"`
	OriginalValue   string    `json:"original_value"`
	TranslatedValue string    `json:"translated_value"`
	Context         string    `json:"context,omitempty"`
	IsAutoGenerated bool      `json:"is_auto_generated"`
	LastSynced      time.Time `json:"last_synced"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MissingTranslation describes a catalog leaf with no stored translation.
type MissingTranslation struct {
	OwnerID       int64  `json:"field_id"`
	FieldPath     string `json:"field_path"`
	FieldLabel    string `json:"field_label"`
	PropertyKind  string `json:"property_type"`
	OriginalValue string `json:"original_value"`
	Context       string `json:"context,omitempty"`
}

// ScanLog is an audit row written for every scan attempt.
type ScanLog struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	FormID        int64     `json:"form_id"`
	ScanType      string    `json:"scan_type"`
	FieldsFound   int       `json:"fields_found"`
	NewFields     int       `json:"new_fields"`
	UpdatedFields int       `json:"updated_fields"`
	DeletedFields int       `json:"deleted_fields"`
	Status        string    `json:"scan_status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	DurationMs    int64     `json:"scan_duration_ms"`
	ScannedAt     time.Time `json:"scanned_at"`
}

// LanguageField is the hidden field of a form that receives the render
// language as its default value.
type LanguageField struct {
	FormID    int64     `json:"form_id"`
	FieldID   int64     `json:"field_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LanguageStats holds translation progress of one form in one language.
type LanguageStats struct {
	Name       string  `json:"name"`
	Translated int     `json:"translated"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// TranslationStats aggregates translation progress of one form.
type TranslationStats struct {
	TotalFields int                      `json:"total_fields"`
	TotalLeaves int                      `json:"total_leaves"`
	Languages   map[string]LanguageStats `json:"languages"`
}
