// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API for scanning forms and managing their
// translations.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-formtrans/internal/autotranslate"
	"github.com/olegiv/ocms-formtrans/internal/cache"
	"github.com/olegiv/ocms-formtrans/internal/catalog"
	"github.com/olegiv/ocms-formtrans/internal/language"
	"github.com/olegiv/ocms-formtrans/internal/middleware"
	"github.com/olegiv/ocms-formtrans/internal/source"
	"github.com/olegiv/ocms-formtrans/internal/translation"
	"github.com/olegiv/ocms-formtrans/internal/util"
)

// URL parameters.
const (
	ParamID   = "id"
	ParamLang = "lang"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the components the handlers work with.
type Deps struct {
	Source       source.Source
	Catalog      *catalog.Catalog
	Translations *translation.Store
	Renderer     *translation.Renderer
	Filler       *autotranslate.Filler // nil disables suggestions
	Languages    *language.Static
	Cache        *cache.Manager
	DB           Pinger
	Version      string
	Logger       *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	Deps
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Handler{Deps: deps}
}

// Routes returns the /api/v1 router. adminMiddleware guards every endpoint
// except rendering and health.
func (h *Handler) Routes(adminMiddleware ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.Health)
	r.With(middleware.Language(h.Languages)).Get("/forms/{id}/render", h.Render)
	r.With(middleware.Language(h.Languages)).Get("/forms/{id}/render/{lang}", h.Render)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware...)

		r.Get("/languages", h.ListLanguages)

		r.Get("/forms", h.ListForms)
		r.Post("/forms/{id}/scan", h.ScanForm)
		r.Get("/forms/{id}/fields", h.ListFields)
		r.Get("/forms/{id}/scans", h.ListScans)
		r.Get("/forms/{id}/stats", h.FormStats)
		r.Get("/forms/{id}/translations", h.ListTranslations)
		r.Get("/forms/{id}/translations/missing", h.MissingTranslations)
		r.Post("/forms/{id}/translations/suggest", h.SuggestTranslations)
		r.Get("/forms/{id}/language-field", h.GetLanguageField)
		r.Put("/forms/{id}/language-field", h.SetLanguageField)
		r.Delete("/forms/{id}/language-field", h.ClearLanguageField)

		r.Post("/translations", h.SaveTranslation)
		r.Post("/translations/bulk", h.BulkSaveTranslations)
		r.Delete("/translations/{id}", h.DeleteTranslation)

		r.Get("/cache", h.CacheStats)
		r.Post("/cache/clear", h.ClearCache)
	})

	return r
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries list totals.
type Meta struct {
	Total int `json:"total"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteValidationError writes a 400 response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "validation_error", "Validation failed", fieldErrors)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeStoreError maps an error of a write operation to a response.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, message string) {
	var verr *translation.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, translation.ErrNotFound):
		WriteNotFound(w, "Translation not found")
	case errors.Is(err, translation.ErrNoLanguageField):
		WriteNotFound(w, "Language field not configured")
	case errors.Is(err, catalog.ErrFormNotFound), errors.Is(err, source.ErrNotFound):
		WriteNotFound(w, "Form not found")
	default:
		h.Logger.Error(message, "error", err)
		WriteInternalError(w, message)
	}
}

// requireID parses a positive numeric id URL parameter. It writes a 400
// response and returns false on failure.
func requireID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, ParamID), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+what+" ID", nil)
		return 0, false
	}
	return id, true
}

// languageParam reads ?language=. An empty value is allowed unless required.
func (h *Handler) languageParam(w http.ResponseWriter, r *http.Request, required bool) (string, bool) {
	lang := r.URL.Query().Get("language")
	if lang == "" {
		if required {
			WriteValidationError(w, map[string]string{"language": "language is required"})
			return "", false
		}
		return "", true
	}
	if !util.IsValidLanguageCode(lang) {
		WriteValidationError(w, map[string]string{"language": "invalid language code"})
		return "", false
	}
	if h.Languages != nil {
		if l, ok := h.Languages.Lookup(lang); ok {
			lang = l.Code
		}
	}
	return lang, true
}

// intParam reads a non-negative integer query parameter with a default.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
