// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
)

// TranslationMapTTL bounds how long a translation map is served without a
// write to its form.
const TranslationMapTTL = time.Hour

type mapEntry struct {
	OwnerID int64  `json:"o"`
	Kind    string `json:"k"`
	Locator string `json:"l,omitempty"`
	Value   string `json:"v"`
}

// TranslationMapCache holds the key to value map of one form in one
// language, as consumed by the renderer. Keys carry a per-form generation
// that InvalidateForm advances, so a map loaded before an invalidation is
// stored under a key no later Get reads.
type TranslationMapCache struct {
	typed *TypedCache[[]mapEntry]

	mu   sync.Mutex
	gens map[int64]uint64
}

// NewTranslationMapCache creates the translation map cache on backend.
func NewTranslationMapCache(backend Cacher) *TranslationMapCache {
	return &TranslationMapCache{
		typed: NewTypedCache[[]mapEntry](backend, TranslationMapTTL),
		gens:  make(map[int64]uint64),
	}
}

func (c *TranslationMapCache) generation(formID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[formID]
}

func (c *TranslationMapCache) advance(formID int64) {
	c.mu.Lock()
	c.gens[formID]++
	c.mu.Unlock()
}

func formPrefix(formID int64) string {
	return "tr:" + strconv.FormatInt(formID, 10) + ":"
}

func translationKey(formID int64, gen uint64, lang string) string {
	return formPrefix(formID) + strconv.FormatUint(gen, 10) + ":" + lang
}

// Get returns the cached map or builds it with load and stores it.
func (c *TranslationMapCache) Get(ctx context.Context, formID int64, lang string, load func() (map[fieldpath.Key]string, error)) (map[fieldpath.Key]string, error) {
	key := translationKey(formID, c.generation(formID), lang)
	entries, err := c.typed.GetOrSet(ctx, key, func() ([]mapEntry, error) {
		m, err := load()
		if err != nil {
			return nil, err
		}
		entries := make([]mapEntry, 0, len(m))
		for k, v := range m {
			entries = append(entries, mapEntry{OwnerID: k.OwnerID, Kind: string(k.Kind), Locator: k.Locator, Value: v})
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	m := make(map[fieldpath.Key]string, len(entries))
	for _, e := range entries {
		m[fieldpath.Key{OwnerID: e.OwnerID, Kind: fieldpath.PropertyKind(e.Kind), Locator: e.Locator}] = e.Value
	}
	return m, nil
}

// InvalidateForm drops the maps of every language of a form.
func (c *TranslationMapCache) InvalidateForm(ctx context.Context, formID int64) error {
	c.advance(formID)
	return c.typed.backend.DeleteByPrefix(ctx, formPrefix(formID))
}
