// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/olegiv/ocms-formtrans/internal/autotranslate"
	"github.com/olegiv/ocms-formtrans/internal/middleware"
	"github.com/olegiv/ocms-formtrans/internal/translation"
)

// MaxBulkItems caps the size of one bulk save request.
const MaxBulkItems = 500

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// BulkSaveRequest is the body of POST /translations/bulk.
type BulkSaveRequest struct {
	Translations []translation.SaveInput `json:"translations"`
}

// SavedTranslation is the response of a single save.
type SavedTranslation struct {
	ID int64 `json:"id"`
}

// ListTranslations handles GET /forms/{id}/translations.
func (h *Handler) ListTranslations(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}
	lang, ok := h.languageParam(w, r, false)
	if !ok {
		return
	}

	rows, err := h.Translations.List(r.Context(), id, lang)
	if err != nil {
		h.Logger.Error("failed to list translations", "form_id", id, "error", err)
		WriteInternalError(w, "Failed to list translations")
		return
	}
	WriteSuccess(w, rows, &Meta{Total: len(rows)})
}

// MissingTranslations handles GET /forms/{id}/translations/missing.
func (h *Handler) MissingTranslations(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}
	lang, ok := h.languageParam(w, r, true)
	if !ok {
		return
	}

	missing, err := h.Translations.Missing(r.Context(), id, lang)
	if err != nil {
		h.Logger.Error("failed to list missing translations", "form_id", id, "error", err)
		WriteInternalError(w, "Failed to list missing translations")
		return
	}
	WriteSuccess(w, missing, &Meta{Total: len(missing)})
}

// SuggestTranslations handles POST /forms/{id}/translations/suggest. It
// machine translates missing leaves from the default language.
func (h *Handler) SuggestTranslations(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}
	lang, ok := h.languageParam(w, r, true)
	if !ok {
		return
	}
	limit, err := intParam(r, "limit", autotranslate.DefaultLimit)
	if err != nil {
		WriteValidationError(w, map[string]string{"limit": err.Error()})
		return
	}
	if h.Filler == nil || !h.Filler.Enabled() {
		middleware.WriteAPIError(w, http.StatusServiceUnavailable, "unavailable", "Machine translation is not configured", nil)
		return
	}

	def, err := h.Languages.Default(r.Context())
	if err != nil {
		WriteInternalError(w, "No default language")
		return
	}
	if lang == def.Code {
		WriteValidationError(w, map[string]string{"language": "cannot translate into the default language"})
		return
	}

	res, err := h.Filler.Fill(r.Context(), id, def.Code, lang, limit)
	if err != nil {
		if errors.Is(err, autotranslate.ErrDisabled) {
			middleware.WriteAPIError(w, http.StatusServiceUnavailable, "unavailable", "Machine translation is not configured", nil)
			return
		}
		h.writeStoreError(w, err, "Failed to suggest translations")
		return
	}
	WriteSuccess(w, res, nil)
}

// SaveTranslation handles POST /translations.
func (h *Handler) SaveTranslation(w http.ResponseWriter, r *http.Request) {
	var in translation.SaveInput
	if !decodeBody(w, r, &in) {
		return
	}

	id, err := h.Translations.Save(r.Context(), in)
	if err != nil {
		h.writeStoreError(w, err, "Failed to save translation")
		return
	}
	WriteCreated(w, SavedTranslation{ID: id})
}

// BulkSaveTranslations handles POST /translations/bulk. Items are saved
// independently; failures are reported per index.
func (h *Handler) BulkSaveTranslations(w http.ResponseWriter, r *http.Request) {
	var req BulkSaveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Translations) == 0 {
		WriteValidationError(w, map[string]string{"translations": "at least one translation is required"})
		return
	}
	if len(req.Translations) > MaxBulkItems {
		WriteValidationError(w, map[string]string{
			"translations": fmt.Sprintf("at most %d translations per request", MaxBulkItems),
		})
		return
	}

	WriteSuccess(w, h.Translations.BulkSave(r.Context(), req.Translations), nil)
}

// DeleteTranslation handles DELETE /translations/{id}.
func (h *Handler) DeleteTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "translation")
	if !ok {
		return
	}

	if err := h.Translations.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to delete translation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON request body. It writes a 400 response and
// returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", map[string]string{"body": err.Error()})
		return false
	}
	return true
}
