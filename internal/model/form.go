// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model contains domain models and constants for the application.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Form field type constants for the kinds the resolver knows about.
const (
	FieldTypeText          = "text"
	FieldTypeEmail         = "email"
	FieldTypeTel           = "tel"
	FieldTypeURL           = "url"
	FieldTypeTextarea      = "textarea"
	FieldTypeNumber        = "number"
	FieldTypeRange         = "range"
	FieldTypeDate          = "datetime"
	FieldTypeFile          = "file"
	FieldTypeSelect        = "select"
	FieldTypeRadio         = "radio"
	FieldTypeCheckbox      = "checkbox"
	FieldTypePriceSelect   = "price_select"
	FieldTypePriceRadio    = "price_radio"
	FieldTypePriceCheckbox = "price_checkbox"
	FieldTypeTextEditor    = "texteditor"
	FieldTypeHTML          = "html"
	FieldTypeSubmit        = "submit"
	FieldTypeButton        = "button"
	FieldTypeRepeater      = "repeater"
)

// Form statuses.
const (
	FormStatusDraft   = "draft"
	FormStatusPublish = "publish"
	FormStatusTrash   = "trash"
)

// ID is a numeric identifier assigned by the form builder. It decodes from a
// JSON number or a numeric string; anything else decodes as zero.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*id = 0
		return nil
	}
	*id = ID(n)
	return nil
}

// Form is the externally-owned form definition: groups (tabs) holding
// sections holding fields.
type Form struct {
	ID        ID             `json:"id"`
	Label     string         `json:"label"`
	Status    string         `json:"status,omitempty"`
	UpdatedAt time.Time      `json:"-"`
	Groups    []Group        `json:"groups"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Group is a tab of a form.
type Group struct {
	ID       ID             `json:"id"`
	Label    string         `json:"label"`
	Sections []Section      `json:"sections"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Section is a block of fields inside a group.
type Section struct {
	ID     ID             `json:"id"`
	Label  string         `json:"label"`
	Fields []Field        `json:"fields"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Field is a single form field. Meta is the kind-specific property bag.
type Field struct {
	ID    ID             `json:"id"`
	Type  string         `json:"type"`
	Label string         `json:"label"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// IsTrashed reports whether the form has been moved to trash.
func (f *Form) IsTrashed() bool {
	return f.Status == FormStatusTrash
}

// FieldByID returns the section field with the given id, or nil. Fields
// nested in repeaters are not searched.
func (f *Form) FieldByID(id int64) *Field {
	for gi := range f.Groups {
		for si := range f.Groups[gi].Sections {
			fields := f.Groups[gi].Sections[si].Fields
			for fi := range fields {
				if int64(fields[fi].ID) == id {
					return &fields[fi]
				}
			}
		}
	}
	return nil
}

// FormSummary is a lightweight view of a source form used for listings.
type FormSummary struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"date_updated"`
}

// DecodeForm parses a form definition. Numbers inside meta bags are kept as
// json.Number so prices and ids survive a round trip unchanged.
func DecodeForm(r io.Reader) (*Form, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var form Form
	if err := dec.Decode(&form); err != nil {
		return nil, fmt.Errorf("decoding form: %w", err)
	}
	return &form, nil
}

// DecodeFormBytes is DecodeForm for an in-memory document.
func DecodeFormBytes(b []byte) (*Form, error) {
	return DecodeForm(bytes.NewReader(b))
}

// Clone returns a deep copy of the form. Meta bags are copied recursively so
// the clone can be modified without touching the original.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := *f
	out.Meta = cloneMap(f.Meta)
	out.Groups = make([]Group, len(f.Groups))
	for gi, g := range f.Groups {
		ng := g
		ng.Meta = cloneMap(g.Meta)
		ng.Sections = make([]Section, len(g.Sections))
		for si, s := range g.Sections {
			ns := s
			ns.Meta = cloneMap(s.Meta)
			ns.Fields = make([]Field, len(s.Fields))
			for fi, fld := range s.Fields {
				ns.Fields[fi] = fld.Clone()
			}
			ng.Sections[si] = ns
		}
		out.Groups[gi] = ng
	}
	return &out
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	f.Meta = cloneMap(f.Meta)
	return f
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		// strings, numbers, bools and nil are immutable
		return v
	}
}
