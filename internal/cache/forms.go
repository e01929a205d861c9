// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// FormsListTTL bounds how long a forms list payload is served.
const FormsListTTL = 5 * time.Minute

const formsListKey = "forms:list"

type formsEnvelope struct {
	Fingerprint string          `json:"fingerprint"`
	Payload     json.RawMessage `json:"payload"`
}

// FormsListCache holds the rendered forms list together with the source
// fingerprint it was built from.
type FormsListCache struct {
	typed *TypedCache[formsEnvelope]
}

// NewFormsListCache creates the forms list cache on backend.
func NewFormsListCache(backend Cacher) *FormsListCache {
	return &FormsListCache{typed: NewTypedCache[formsEnvelope](backend, FormsListTTL)}
}

// Get returns the payload only if it was stored under fingerprint.
func (c *FormsListCache) Get(ctx context.Context, fingerprint string) (json.RawMessage, bool) {
	env, ok := c.typed.Get(ctx, formsListKey)
	if !ok || env.Fingerprint != fingerprint {
		return nil, false
	}
	return env.Payload, true
}

// Set stores payload for fingerprint.
func (c *FormsListCache) Set(ctx context.Context, fingerprint string, payload json.RawMessage) error {
	return c.typed.Set(ctx, formsListKey, formsEnvelope{Fingerprint: fingerprint, Payload: payload})
}

// Invalidate drops the stored payload.
func (c *FormsListCache) Invalidate(ctx context.Context) error {
	return c.typed.Delete(ctx, formsListKey)
}
