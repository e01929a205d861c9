// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/source"
)

// RenderResponse is a form with the translations of one language applied.
type RenderResponse struct {
	Language string      `json:"language"`
	Patched  int         `json:"patched"`
	Form     *model.Form `json:"form"`
}

// Render handles GET /forms/{id}/render. The language comes from the
// request context; ?preview=1 returns the untranslated form. A failing
// translation lookup falls back to the original form.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := requireID(w, r, "form")
	if !ok {
		return
	}

	form, err := h.Source.Load(ctx, id)
	if errors.Is(err, source.ErrNotFound) {
		WriteNotFound(w, "Form not found")
		return
	}
	if err != nil {
		h.Logger.Error("failed to load form for rendering", "form_id", id, "error", err, "category", model.EventCategoryRender)
		WriteInternalError(w, "Failed to load form")
		return
	}

	lang := h.Languages.Current(ctx)
	preview := r.URL.Query().Get("preview") == "1"

	out, patches, err := h.Renderer.Translate(ctx, form, lang.Code, preview)
	if err != nil {
		h.Logger.Warn("render fell back to the original form", "form_id", id, "language", lang.Code, "error", err, "category", model.EventCategoryRender)
		out, patches = form, nil
	}

	w.Header().Set("Content-Language", lang.Code)
	WriteSuccess(w, RenderResponse{
		Language: lang.Code,
		Patched:  len(patches),
		Form:     out,
	}, nil)
}
