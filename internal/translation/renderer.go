// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"log/slog"

	"github.com/olegiv/ocms-formtrans/internal/cache"
	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/model"
)

// Renderer applies stored translations to freshly loaded forms.
type Renderer struct {
	store  *Store
	walker *fieldpath.Walker
	maps   *cache.TranslationMapCache
	logger *slog.Logger
}

// NewRenderer creates a renderer. maps may be nil to read the store on every
// call.
func NewRenderer(s *Store, walker *fieldpath.Walker, maps *cache.TranslationMapCache, logger *slog.Logger) *Renderer {
	return &Renderer{store: s, walker: walker, maps: maps, logger: logger}
}

// Translate returns form with the translations of lang applied and its
// language field, if any, set to lang. Preview renders, an empty language
// and languages without translations or language field get the input back
// unchanged. Leaves without a translation keep their original text.
func (r *Renderer) Translate(ctx context.Context, form *model.Form, lang string, preview bool) (*model.Form, []fieldpath.Patch, error) {
	if form == nil || preview || lang == "" {
		return form, nil, nil
	}

	formID := int64(form.ID)
	load := func() (map[fieldpath.Key]string, error) {
		return r.store.Map(ctx, formID, lang)
	}

	var (
		values map[fieldpath.Key]string
		err    error
	)
	if r.maps != nil {
		values, err = r.maps.Get(ctx, formID, lang, load)
	} else {
		values, err = load()
	}
	if err != nil {
		return form, nil, err
	}

	out, patches := r.walker.Apply(form, values)
	out, err = r.stampLanguage(ctx, form, out, lang)
	if err != nil {
		return form, nil, err
	}
	if len(patches) > 0 {
		r.logger.Debug("form translated",
			"form_id", formID,
			"language", lang,
			"patched", len(patches),
			"available", len(values),
		)
	}
	return out, patches, nil
}

// stampLanguage writes lang into the default value of the form's language
// field. out is cloned first if it is still the caller's form.
func (r *Renderer) stampLanguage(ctx context.Context, form, out *model.Form, lang string) (*model.Form, error) {
	lf, ok, err := r.store.LanguageField(ctx, int64(form.ID))
	if err != nil || !ok {
		return out, err
	}
	if form.FieldByID(lf.FieldID) == nil {
		r.logger.Warn("language field not found in form",
			"form_id", lf.FormID, "field_id", lf.FieldID, "category", model.EventCategoryRender)
		return out, nil
	}

	if out == form {
		out = form.Clone()
	}
	f := out.FieldByID(lf.FieldID)
	if f.Meta == nil {
		f.Meta = make(map[string]any)
	}
	f.Meta[DefaultValueProperty] = lang
	return out, nil
}
