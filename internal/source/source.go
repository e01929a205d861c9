// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package source loads externally-owned form definitions.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

// ErrNotFound is returned when a form does not exist or has been trashed.
var ErrNotFound = errors.New("form not found")

// Source provides read access to form definitions.
type Source interface {
	// Load returns the definition of a non-trashed form.
	Load(ctx context.Context, id int64) (*model.Form, error)
	// List returns all non-trashed forms ordered by label.
	List(ctx context.Context) ([]model.FormSummary, error)
	// Fingerprint changes whenever a non-trashed form is added, removed or updated.
	Fingerprint(ctx context.Context) (string, error)
}

// fingerprintTimeFormat matches the second resolution of the builder's
// date_updated column.
const fingerprintTimeFormat = "2006-01-02 15:04:05"

// fingerprint hashes id:date_updated of every non-trashed form in id order.
func fingerprint(forms []model.FormSummary) string {
	live := make([]model.FormSummary, 0, len(forms))
	for _, f := range forms {
		if f.Status != model.FormStatusTrash {
			live = append(live, f)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })

	parts := make([]string, len(live))
	for i, f := range live {
		parts[i] = strconv.FormatInt(f.ID, 10) + ":" + f.UpdatedAt.UTC().Format(fingerprintTimeFormat)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}

// sortByLabel orders summaries by label, then id.
func sortByLabel(forms []model.FormSummary) {
	sort.SliceStable(forms, func(i, j int) bool {
		if forms[i].Label != forms[j].Label {
			return forms[i].Label < forms[j].Label
		}
		return forms[i].ID < forms[j].ID
	})
}

// finishLoad fills identity fields the stored definition may lack.
func finishLoad(form *model.Form, id int64, label, status string, updated time.Time) {
	if form.ID == 0 {
		form.ID = model.ID(id)
	}
	if form.Label == "" {
		form.Label = label
	}
	form.Status = status
	form.UpdatedAt = updated
}
