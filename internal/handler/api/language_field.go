// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
)

// LanguageFieldRequest is the body of PUT /forms/{id}/language-field.
type LanguageFieldRequest struct {
	FieldID int64 `json:"field_id"`
}

// GetLanguageField handles GET /forms/{id}/language-field.
func (h *Handler) GetLanguageField(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}

	lf, found, err := h.Translations.LanguageField(r.Context(), id)
	if err != nil {
		h.Logger.Error("failed to read language field", "form_id", id, "error", err)
		WriteInternalError(w, "Failed to read language field")
		return
	}
	if !found {
		WriteNotFound(w, "Language field not configured")
		return
	}
	WriteSuccess(w, lf, nil)
}

// SetLanguageField handles PUT /forms/{id}/language-field.
func (h *Handler) SetLanguageField(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}
	var req LanguageFieldRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lf, err := h.Translations.SetLanguageField(r.Context(), id, req.FieldID)
	if err != nil {
		h.writeStoreError(w, err, "Failed to set language field")
		return
	}
	WriteSuccess(w, lf, nil)
}

// ClearLanguageField handles DELETE /forms/{id}/language-field.
func (h *Handler) ClearLanguageField(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}

	if err := h.Translations.ClearLanguageField(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to clear language field")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
