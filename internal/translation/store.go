// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translation stores translated strings and applies them to forms.
package translation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/ocms-formtrans/internal/catalog"
	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/language"
	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/store"
	"github.com/olegiv/ocms-formtrans/internal/util"
)

// ErrNotFound is returned when a translation id does not exist.
var ErrNotFound = errors.New("translation not found")

// SaveInput is one translation to store.
type SaveInput struct {
	FormID          int64  `json:"form_id"`
	OwnerID         int64  `json:"field_id"`
	FieldPath       string `json:"field_path"`
	PropertyKind    string `json:"property_type"`
	LanguageCode    string `json:"language_code"`
	OriginalValue   string `json:"original_value"`
	TranslatedValue string `json:"translated_value"`
	Context         string `json:"context,omitempty"`
	IsAutoGenerated bool   `json:"is_auto_generated,omitempty"`
}

// BulkError reports why one item of a bulk save failed.
type BulkError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkResult counts the outcome of a bulk save.
type BulkResult struct {
	Success int         `json:"success"`
	Failed  int         `json:"failed"`
	Errors  []BulkError `json:"errors"`
}

// LeafLister serves the cataloged fields and leaves of a form.
type LeafLister interface {
	Fields(ctx context.Context, formID int64) ([]model.CachedField, error)
	Leaves(ctx context.Context, formID int64) ([]catalog.Leaf, error)
	FieldCount(ctx context.Context, formID int64) (int, error)
}

// LanguageLister lists the configured languages.
type LanguageLister interface {
	List(ctx context.Context) ([]model.Language, error)
}

// Invalidator drops cached data derived from a form.
type Invalidator interface {
	InvalidateForm(ctx context.Context, formID int64)
}

// Store persists translations keyed by form, leaf key and language.
type Store struct {
	queries     *store.Queries
	leaves      LeafLister
	languages   LanguageLister
	invalidator Invalidator
	policy      *bluemonday.Policy
	logger      *slog.Logger
}

// NewStore creates a translation store.
func NewStore(db store.DBTX, leaves LeafLister, languages LanguageLister, logger *slog.Logger) *Store {
	return &Store{
		queries:   store.New(db),
		leaves:    leaves,
		languages: languages,
		policy:    bluemonday.UGCPolicy(),
		logger:    logger,
	}
}

// SetInvalidator registers the cache notified after every write.
func (s *Store) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// Save validates and upserts one translation. A row with the same form, key
// and language is overwritten.
func (s *Store) Save(ctx context.Context, in SaveInput) (int64, error) {
	id, err := s.save(ctx, in)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, in.FormID)
	return id, nil
}

func (s *Store) save(ctx context.Context, in SaveInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	lang, err := s.resolveLanguage(ctx, in.LanguageCode)
	if err != nil {
		return 0, err
	}
	kind, _ := fieldpath.ParseKind(in.PropertyKind)
	key := fieldpath.NewKey(in.OwnerID, kind, in.FieldPath)

	now := time.Now().UTC()
	row, err := s.queries.UpsertTranslation(ctx, store.UpsertTranslationParams{
		FormID:          in.FormID,
		OwnerID:         in.OwnerID,
		FieldPath:       in.FieldPath,
		PathHash:        key.PathHash(),
		PropertyKind:    string(kind),
		LanguageCode:    lang,
		OriginalValue:   in.OriginalValue,
		TranslatedValue: s.clean(in.TranslatedValue),
		Context:         in.Context,
		IsAutoGenerated: in.IsAutoGenerated,
		LastSynced:      sql.NullTime{Time: now, Valid: true},
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return 0, fmt.Errorf("saving translation %s/%s: %w", key, lang, err)
	}
	return row.ID, nil
}

// resolveLanguage maps code onto the configured language it names, so rows
// are stored under the code renders look them up with. Without a language
// list the code is kept as given.
func (s *Store) resolveLanguage(ctx context.Context, code string) (string, error) {
	if s.languages == nil {
		return code, nil
	}
	langs, err := s.languages.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing languages: %w", err)
	}
	want := language.NormalizeCode(code)
	for _, l := range langs {
		if language.NormalizeCode(l.Code) == want {
			return l.Code, nil
		}
	}
	v := &ValidationError{}
	v.add("language_code", "is not a configured language")
	return "", v
}

// clean composes a value to NFC and strips unsafe markup from values
// carrying HTML. Surrounding whitespace is kept; prefixes and suffixes rely
// on it.
func (s *Store) clean(v string) string {
	v = util.NormalizeText(v)
	if strings.ContainsRune(v, '<') {
		v = s.policy.Sanitize(v)
	}
	return v
}

// BulkSave saves every item independently. A failing item is counted and
// the rest are still saved.
func (s *Store) BulkSave(ctx context.Context, items []SaveInput) BulkResult {
	res := BulkResult{Errors: []BulkError{}}
	forms := make(map[int64]bool)

	for i, in := range items {
		if _, err := s.save(ctx, in); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, BulkError{Index: i, Message: err.Error()})
			continue
		}
		res.Success++
		forms[in.FormID] = true
	}

	for formID := range forms {
		s.invalidate(ctx, formID)
	}
	if res.Failed > 0 {
		s.logger.Warn("bulk save had failures", "success", res.Success, "failed", res.Failed, "category", model.EventCategoryTranslation)
	}
	return res
}

// Delete removes a translation by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	row, err := s.queries.GetTranslation(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading translation %d: %w", id, err)
	}

	n, err := s.queries.DeleteTranslation(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting translation %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, row.FormID)
	return nil
}

// List returns the translations of a form, of one language if lang is set.
func (s *Store) List(ctx context.Context, formID int64, lang string) ([]model.Translation, error) {
	var (
		rows []store.Translation
		err  error
	)
	if lang == "" {
		rows, err = s.queries.ListTranslationsByForm(ctx, formID)
	} else {
		rows, err = s.queries.ListTranslationsByFormAndLanguage(ctx, store.ListTranslationsByFormAndLanguageParams{
			FormID:       formID,
			LanguageCode: lang,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}

	out := make([]model.Translation, len(rows))
	for i, row := range rows {
		out[i] = translationFromRow(row)
	}
	return out, nil
}

// Map returns the translated values of a form in one language by leaf key.
// Empty values and rows of unknown kind are left out.
func (s *Store) Map(ctx context.Context, formID int64, lang string) (map[fieldpath.Key]string, error) {
	rows, err := s.queries.ListTranslationsByFormAndLanguage(ctx, store.ListTranslationsByFormAndLanguageParams{
		FormID:       formID,
		LanguageCode: lang,
	})
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}

	m := make(map[fieldpath.Key]string, len(rows))
	for _, row := range rows {
		if row.TranslatedValue == "" {
			continue
		}
		key, ok := rowKey(row)
		if !ok {
			continue
		}
		m[key] = row.TranslatedValue
	}
	return m, nil
}

// Missing returns the cataloged leaves of a form without a translation in
// lang.
func (s *Store) Missing(ctx context.Context, formID int64, lang string) ([]model.MissingTranslation, error) {
	rows, err := s.queries.ListTranslationsByFormAndLanguage(ctx, store.ListTranslationsByFormAndLanguageParams{
		FormID:       formID,
		LanguageCode: lang,
	})
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}
	have := make(map[fieldpath.Key]struct{}, len(rows))
	for _, row := range rows {
		if key, ok := rowKey(row); ok {
			have[key] = struct{}{}
		}
	}

	leaves, err := s.leaves.Leaves(ctx, formID)
	if err != nil {
		return nil, err
	}

	missing := []model.MissingTranslation{}
	for _, l := range leaves {
		if _, ok := have[l.Key]; ok {
			continue
		}
		missing = append(missing, model.MissingTranslation{
			OwnerID:       l.OwnerID,
			FieldPath:     l.Path,
			FieldLabel:    l.FieldLabel,
			PropertyKind:  l.Kind,
			OriginalValue: l.Value,
			Context:       l.Context,
		})
	}
	return missing, nil
}

// Stats reports translation progress of a form for every non-default
// language plus any language that already has rows.
func (s *Store) Stats(ctx context.Context, formID int64) (model.TranslationStats, error) {
	fields, err := s.leaves.FieldCount(ctx, formID)
	if err != nil {
		return model.TranslationStats{}, err
	}
	leaves, err := s.leaves.Leaves(ctx, formID)
	if err != nil {
		return model.TranslationStats{}, err
	}
	rows, err := s.queries.ListTranslationsByForm(ctx, formID)
	if err != nil {
		return model.TranslationStats{}, fmt.Errorf("listing translations: %w", err)
	}

	names := map[string]string{}
	if s.languages != nil {
		langs, err := s.languages.List(ctx)
		if err != nil {
			return model.TranslationStats{}, fmt.Errorf("listing languages: %w", err)
		}
		for _, l := range langs {
			if !l.IsDefault {
				names[l.Code] = l.Name
			}
		}
	}

	current := make(map[fieldpath.Key]struct{}, len(leaves))
	for _, l := range leaves {
		current[l.Key] = struct{}{}
	}

	translated := map[string]map[fieldpath.Key]struct{}{}
	for _, row := range rows {
		if _, ok := names[row.LanguageCode]; !ok {
			names[row.LanguageCode] = row.LanguageCode
		}
		key, ok := rowKey(row)
		if !ok || row.TranslatedValue == "" {
			continue
		}
		if _, ok := current[key]; !ok {
			continue
		}
		if translated[row.LanguageCode] == nil {
			translated[row.LanguageCode] = map[fieldpath.Key]struct{}{}
		}
		translated[row.LanguageCode][key] = struct{}{}
	}

	stats := model.TranslationStats{
		TotalFields: fields,
		TotalLeaves: len(leaves),
		Languages:   make(map[string]model.LanguageStats, len(names)),
	}
	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		n := len(translated[code])
		stats.Languages[code] = model.LanguageStats{
			Name:       names[code],
			Translated: n,
			Total:      len(leaves),
			Percentage: percentage(n, len(leaves)),
		}
	}
	return stats, nil
}

// Purge deletes every translation.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	n, err := s.queries.DeleteAllTranslations(ctx)
	if err != nil {
		return 0, fmt.Errorf("purging translations: %w", err)
	}
	return n, nil
}

func (s *Store) invalidate(ctx context.Context, formID int64) {
	if s.invalidator != nil {
		s.invalidator.InvalidateForm(ctx, formID)
	}
}

func rowKey(row store.Translation) (fieldpath.Key, bool) {
	kind, ok := fieldpath.ParseKind(row.PropertyKind)
	if !ok {
		return fieldpath.Key{}, false
	}
	return fieldpath.NewKey(row.OwnerID, kind, row.FieldPath), true
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

func translationFromRow(row store.Translation) model.Translation {
	t := model.Translation{
		ID:              row.ID,
		FormID:          row.FormID,
		OwnerID:         row.OwnerID,
		FieldPath:       row.FieldPath,
		PathHash:        row.PathHash,
		PropertyKind:    row.PropertyKind,
		LanguageCode:    row.LanguageCode,
		OriginalValue:   row.OriginalValue,
		TranslatedValue: row.TranslatedValue,
		Context:         row.Context,
		IsAutoGenerated: row.IsAutoGenerated,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.LastSynced.Valid {
		t.LastSynced = row.LastSynced.Time
	}
	return t
}
