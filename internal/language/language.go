// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package language provides the configured site languages and the language
// of the current request.
package language

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	xlang "golang.org/x/text/language"

	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/util"
)

// Provider exposes the configured languages.
type Provider interface {
	List(ctx context.Context) ([]model.Language, error)
	Default(ctx context.Context) (model.Language, error)
	// Current returns the language of the request in ctx, or the default.
	Current(ctx context.Context) model.Language
}

type ctxKey struct{}

// WithLanguage stores the request language in ctx.
func WithLanguage(ctx context.Context, lang model.Language) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the request language stored by WithLanguage.
func FromContext(ctx context.Context) (model.Language, bool) {
	lang, ok := ctx.Value(ctxKey{}).(model.Language)
	return lang, ok
}

// Static is a Provider over a fixed language list.
type Static struct {
	langs   []model.Language
	byCode  map[string]int
	matcher xlang.Matcher
}

// ParseList parses "en:English,de:Deutsch". Entries without a name use the
// code as name. The entry whose code is defaultCode becomes the default, or
// the first entry when defaultCode is empty.
func ParseList(spec, defaultCode string) ([]model.Language, error) {
	var langs []model.Language
	seen := map[string]bool{}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, name, _ := strings.Cut(entry, ":")
		code, name = strings.TrimSpace(code), strings.TrimSpace(name)
		if !util.IsValidLanguageCode(code) {
			return nil, fmt.Errorf("invalid language code %q", code)
		}
		if seen[code] {
			return nil, fmt.Errorf("duplicate language code %q", code)
		}
		seen[code] = true
		if name == "" {
			name = code
		}
		langs = append(langs, model.Language{Code: code, Name: name, Direction: model.DirectionFor(code)})
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("no languages configured")
	}

	if defaultCode == "" {
		langs[0].IsDefault = true
		return langs, nil
	}
	for i := range langs {
		if langs[i].Code == defaultCode {
			langs[i].IsDefault = true
			return langs, nil
		}
	}
	return nil, fmt.Errorf("default language %q is not in the language list", defaultCode)
}

// NewStatic builds a provider from a language list spec. An empty or invalid
// spec falls back to English alone.
func NewStatic(spec, defaultCode string, logger *slog.Logger) *Static {
	langs, err := ParseList(spec, defaultCode)
	if err != nil {
		if spec != "" && logger != nil {
			logger.Warn("invalid language configuration, using default", "error", err, "category", model.EventCategorySystem)
		}
		langs = []model.Language{{
			Code:      model.DefaultLanguageCode,
			Name:      "English",
			IsDefault: true,
			Direction: model.DirectionLTR,
		}}
	}
	return newStatic(langs)
}

func newStatic(langs []model.Language) *Static {
	// The matcher falls back to its first tag, so the default goes first.
	ordered := make([]model.Language, 0, len(langs))
	for _, l := range langs {
		if l.IsDefault {
			ordered = append(ordered, l)
		}
	}
	for _, l := range langs {
		if !l.IsDefault {
			ordered = append(ordered, l)
		}
	}

	s := &Static{langs: ordered, byCode: make(map[string]int, len(ordered))}
	tags := make([]xlang.Tag, len(ordered))
	for i, l := range ordered {
		s.byCode[NormalizeCode(l.Code)] = i
		tags[i] = xlang.Make(strings.ReplaceAll(l.Code, "_", "-"))
	}
	s.matcher = xlang.NewMatcher(tags)
	return s
}

// NormalizeCode folds case and the region separator, so "pt-BR" and "pt_br"
// compare equal to "pt_BR".
func NormalizeCode(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "-", "_"))
}

// List returns all languages, default first.
func (s *Static) List(context.Context) ([]model.Language, error) {
	out := make([]model.Language, len(s.langs))
	copy(out, s.langs)
	return out, nil
}

// Default returns the default language.
func (s *Static) Default(context.Context) (model.Language, error) {
	return s.langs[0], nil
}

// Current returns the request language, or the default.
func (s *Static) Current(ctx context.Context) model.Language {
	if lang, ok := FromContext(ctx); ok {
		return lang
	}
	return s.langs[0]
}

// Lookup finds a configured language by code, ignoring case and the
// separator style.
func (s *Static) Lookup(code string) (model.Language, bool) {
	i, ok := s.byCode[NormalizeCode(code)]
	if !ok {
		return model.Language{}, false
	}
	return s.langs[i], true
}

// Match picks the configured language that best serves an Accept-Language
// header.
func (s *Static) Match(acceptLanguage string) (model.Language, bool) {
	tags, _, err := xlang.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return model.Language{}, false
	}
	_, idx, conf := s.matcher.Match(tags...)
	if conf == xlang.No {
		return model.Language{}, false
	}
	return s.langs[idx], true
}

var _ Provider = (*Static)(nil)
