// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

// Manager owns the backend and the caches built on it.
type Manager struct {
	backend      Cacher
	logger       *slog.Logger
	Forms        *FormsListCache
	Translations *TranslationMapCache
}

// NewManager creates the caches on backend.
func NewManager(backend Cacher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend:      backend,
		logger:       logger,
		Forms:        NewFormsListCache(backend),
		Translations: NewTranslationMapCache(backend),
	}
}

// InvalidateForm drops everything derived from a form: its translation maps
// and the forms list, whose stats include the form. Failures are logged; a
// stale entry expires with its ttl.
func (m *Manager) InvalidateForm(ctx context.Context, formID int64) {
	if err := m.Translations.InvalidateForm(ctx, formID); err != nil {
		m.logger.Warn("failed to invalidate translation cache", "form_id", formID, "error", err, "category", model.EventCategoryCache)
	}
	if err := m.Forms.Invalidate(ctx); err != nil {
		m.logger.Warn("failed to invalidate forms list cache", "form_id", formID, "error", err, "category", model.EventCategoryCache)
	}
}

// Clear drops every entry and zeroes the traffic counters.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.backend.Clear(ctx); err != nil {
		return err
	}
	if sp, ok := m.backend.(StatsProvider); ok {
		sp.ResetStats()
	}
	return nil
}

// Stats returns backend counters, or zero stats if the backend keeps none.
func (m *Manager) Stats() Stats {
	if sp, ok := m.backend.(StatsProvider); ok {
		return sp.Stats()
	}
	return Stats{}
}

// Close closes the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
