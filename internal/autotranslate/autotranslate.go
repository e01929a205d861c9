// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package autotranslate fills missing translations with machine translated
// suggestions.
package autotranslate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/translation"
)

// ErrDisabled is returned when no translator is configured.
var ErrDisabled = errors.New("machine translation is not configured")

// DefaultLimit caps the number of strings translated by one Fill call.
const DefaultLimit = 50

// Request is one string to translate.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	FieldLabel string
}

// Translator turns one string into another language.
type Translator interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// Result counts what a Fill call did.
type Result struct {
	Translated int      `json:"translated"`
	Failed     int      `json:"failed"`
	Remaining  int      `json:"remaining"`
	Errors     []string `json:"errors,omitempty"`
}

// Filler translates missing leaves and stores them as auto generated.
type Filler struct {
	store      *translation.Store
	translator Translator
	logger     *slog.Logger
}

// NewFiller creates a filler. A nil translator makes every Fill fail with
// ErrDisabled.
func NewFiller(store *translation.Store, translator Translator, logger *slog.Logger) *Filler {
	return &Filler{store: store, translator: translator, logger: logger}
}

// Enabled reports whether a translator is configured.
func (f *Filler) Enabled() bool {
	return f.translator != nil
}

// Fill translates up to limit missing leaves of a form from sourceLang into
// lang. Failures of single strings are counted; a cancelled context stops
// the run.
func (f *Filler) Fill(ctx context.Context, formID int64, sourceLang, lang string, limit int) (Result, error) {
	if f.translator == nil {
		return Result{}, ErrDisabled
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	missing, err := f.store.Missing(ctx, formID, lang)
	if err != nil {
		return Result{}, err
	}

	var res Result
	todo := make([]model.MissingTranslation, 0, len(missing))
	for _, m := range missing {
		if strings.TrimSpace(m.OriginalValue) != "" {
			todo = append(todo, m)
		}
	}
	if len(todo) > limit {
		res.Remaining = len(todo) - limit
		todo = todo[:limit]
	}

	for _, m := range todo {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		text, err := f.translator.Translate(ctx, Request{
			Text:       m.OriginalValue,
			SourceLang: sourceLang,
			TargetLang: lang,
			FieldLabel: m.FieldLabel,
		})
		if err == nil {
			_, err = f.store.Save(ctx, translation.SaveInput{
				FormID:          formID,
				OwnerID:         m.OwnerID,
				FieldPath:       m.FieldPath,
				PropertyKind:    m.PropertyKind,
				LanguageCode:    lang,
				OriginalValue:   m.OriginalValue,
				TranslatedValue: text,
				Context:         m.Context,
				IsAutoGenerated: true,
			})
		}
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%d/%s: %v", m.OwnerID, m.PropertyKind, err))
			continue
		}
		res.Translated++
	}

	f.logger.Info("machine translation finished",
		"form_id", formID,
		"language", lang,
		"translated", res.Translated,
		"failed", res.Failed,
		"remaining", res.Remaining,
	)
	if res.Failed > 0 {
		f.logger.Warn("machine translation had failures", "form_id", formID, "language", lang, "failed", res.Failed, "category", model.EventCategoryTranslation)
	}
	return res, nil
}
