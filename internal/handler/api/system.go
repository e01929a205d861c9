// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/ocms-formtrans/internal/cache"
	"github.com/olegiv/ocms-formtrans/internal/model"
)

// LanguagesResponse lists the configured languages.
type LanguagesResponse struct {
	Default   string           `json:"default"`
	Languages []model.Language `json:"languages"`
}

// ListLanguages handles GET /languages.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.Languages.List(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list languages")
		return
	}
	def, err := h.Languages.Default(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list languages")
		return
	}
	WriteSuccess(w, LanguagesResponse{Default: def.Code, Languages: langs}, &Meta{Total: len(langs)})
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// Health handles GET /health. It answers 503 when the database is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Status: "ok", Version: h.Version, Checks: map[string]string{}}
	code := http.StatusOK

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			h.Logger.Error("health check: database unreachable", "error", err)
			status.Status = "unhealthy"
			status.Checks["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			status.Checks["database"] = "ok"
		}
	}
	if h.Filler != nil && h.Filler.Enabled() {
		status.Checks["machine_translation"] = "enabled"
	} else {
		status.Checks["machine_translation"] = "disabled"
	}

	WriteJSON(w, code, status)
}

// CacheStats handles GET /cache.
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	var stats cache.Stats
	if h.Cache != nil {
		stats = h.Cache.Stats()
	}
	WriteSuccess(w, stats, nil)
}

// ClearCache handles POST /cache/clear.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.Cache != nil {
		if err := h.Cache.Clear(r.Context()); err != nil {
			h.Logger.Error("failed to clear cache", "error", err, "category", model.EventCategoryCache)
			WriteInternalError(w, "Failed to clear cache")
			return
		}
	}
	h.Logger.Info("cache cleared")
	w.WriteHeader(http.StatusNoContent)
}
