// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-formtrans/internal/language"
	"github.com/olegiv/ocms-formtrans/internal/model"
)

// LanguageCookieName is the cookie holding the language preference.
const LanguageCookieName = "formtrans_lang"

// LanguageResolver finds configured languages by code or Accept-Language.
type LanguageResolver interface {
	Default(ctx context.Context) (model.Language, error)
	Lookup(code string) (model.Language, bool)
	Match(acceptLanguage string) (model.Language, bool)
}

// Language stores the request language in the context. Sources in order:
//  1. query parameter ?lang=xx, which also updates the cookie
//  2. chi URL parameter {lang}
//  3. the language cookie
//  4. the Accept-Language header
//  5. the default language
//
// Unknown codes are ignored and the next source is tried.
func Language(resolver LanguageResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang, ok := detectLanguage(w, r, resolver)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(language.WithLanguage(r.Context(), lang)))
		})
	}
}

func detectLanguage(w http.ResponseWriter, r *http.Request, resolver LanguageResolver) (model.Language, bool) {
	if code := r.URL.Query().Get("lang"); code != "" {
		if lang, ok := resolver.Lookup(code); ok {
			SetLanguageCookie(w, lang.Code)
			return lang, true
		}
	}
	if code := chi.URLParam(r, "lang"); code != "" {
		if lang, ok := resolver.Lookup(code); ok {
			return lang, true
		}
	}
	if c, err := r.Cookie(LanguageCookieName); err == nil {
		if lang, ok := resolver.Lookup(c.Value); ok {
			return lang, true
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if lang, ok := resolver.Match(header); ok {
			return lang, true
		}
	}
	lang, err := resolver.Default(r.Context())
	return lang, err == nil
}

// SetLanguageCookie stores the language preference for a year.
func SetLanguageCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
