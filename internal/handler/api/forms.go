// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/ocms-formtrans/internal/catalog"
	"github.com/olegiv/ocms-formtrans/internal/model"
)

// FormListItem is one entry of the forms list.
type FormListItem struct {
	model.FormSummary
	FieldCount  int                    `json:"field_count"`
	LastScanned *time.Time             `json:"last_scanned"`
	Stats       model.TranslationStats `json:"stats"`
}

// ListForms handles GET /forms. The list is served from cache while the
// source fingerprint is unchanged; ?refresh=1 rebuilds it.
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fp, err := h.Source.Fingerprint(ctx)
	if err != nil {
		h.Logger.Error("failed to fingerprint forms", "error", err)
		WriteInternalError(w, "Failed to list forms")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "1"
	if h.Cache != nil && !refresh {
		if payload, ok := h.Cache.Forms.Get(ctx, fp); ok {
			var items []json.RawMessage
			if json.Unmarshal(payload, &items) == nil {
				w.Header().Set("X-Cache", "HIT")
				WriteSuccess(w, payload, &Meta{Total: len(items)})
				return
			}
		}
	}

	items, err := h.buildFormList(r)
	if err != nil {
		h.Logger.Error("failed to build forms list", "error", err)
		WriteInternalError(w, "Failed to list forms")
		return
	}

	payload, err := json.Marshal(items)
	if err != nil {
		WriteInternalError(w, "Failed to list forms")
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Forms.Set(ctx, fp, payload); err != nil {
			h.Logger.Warn("failed to cache forms list", "error", err, "category", model.EventCategoryCache)
		}
	}

	w.Header().Set("X-Cache", "MISS")
	WriteSuccess(w, json.RawMessage(payload), &Meta{Total: len(items)})
}

func (h *Handler) buildFormList(r *http.Request) ([]FormListItem, error) {
	ctx := r.Context()

	forms, err := h.Source.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]FormListItem, 0, len(forms))
	for _, f := range forms {
		item := FormListItem{FormSummary: f}

		if item.FieldCount, err = h.Catalog.FieldCount(ctx, f.ID); err != nil {
			return nil, err
		}
		last, ok, err := h.Catalog.LastScanned(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			item.LastScanned = &last
		}
		if item.Stats, err = h.Translations.Stats(ctx, f.ID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ScanForm handles POST /forms/{id}/scan.
func (h *Handler) ScanForm(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}

	entry, err := h.Catalog.Scan(r.Context(), id, model.ScanTypeFull)
	if errors.Is(err, catalog.ErrFormNotFound) {
		WriteNotFound(w, "Form not found")
		return
	}
	if err != nil {
		h.Logger.Error("scan failed", "form_id", id, "error", err, "category", model.EventCategoryScan)
		WriteInternalError(w, "Failed to scan form")
		return
	}
	WriteSuccess(w, entry, nil)
}

// ListFields handles GET /forms/{id}/fields.
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}

	fields, err := h.Catalog.Fields(r.Context(), id)
	if err != nil {
		h.Logger.Error("failed to list fields", "form_id", id, "error", err)
		WriteInternalError(w, "Failed to list fields")
		return
	}
	WriteSuccess(w, fields, &Meta{Total: len(fields)})
}

// ListScans handles GET /forms/{id}/scans.
func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}
	limit, err := intParam(r, "limit", catalog.DefaultHistoryLimit)
	if err != nil {
		WriteValidationError(w, map[string]string{"limit": err.Error()})
		return
	}

	logs, err := h.Catalog.ScanHistory(r.Context(), id, limit)
	if err != nil {
		h.Logger.Error("failed to list scans", "form_id", id, "error", err)
		WriteInternalError(w, "Failed to list scans")
		return
	}
	WriteSuccess(w, logs, &Meta{Total: len(logs)})
}

// FormStats handles GET /forms/{id}/stats.
func (h *Handler) FormStats(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}

	stats, err := h.Translations.Stats(r.Context(), id)
	if err != nil {
		h.Logger.Error("failed to compute stats", "form_id", id, "error", err)
		WriteInternalError(w, "Failed to compute stats")
		return
	}
	WriteSuccess(w, stats, nil)
}
