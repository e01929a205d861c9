// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/sha256"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/olegiv/ocms-formtrans/internal/auth"
	"github.com/olegiv/ocms-formtrans/internal/model"
)

// maxVerifiedTokens bounds the set of remembered token digests.
const maxVerifiedTokens = 64

// AdminToken requires "Authorization: Bearer <token>" matching tokenHash
// (argon2id or bcrypt). Digests of accepted tokens are remembered so the
// slow hash runs once per token.
func AdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	var (
		mu       sync.RWMutex
		verified = make(map[[32]byte]struct{})
	)

	check := func(token string) (bool, error) {
		digest := sha256.Sum256([]byte(token))

		mu.RLock()
		_, ok := verified[digest]
		mu.RUnlock()
		if ok {
			return true, nil
		}

		ok, err := auth.VerifyToken(token, tokenHash)
		if err != nil || !ok {
			return false, err
		}

		mu.Lock()
		if len(verified) >= maxVerifiedTokens {
			verified = make(map[[32]byte]struct{})
		}
		verified[digest] = struct{}{}
		mu.Unlock()
		return true, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed Authorization header. Use: Bearer <token>", nil)
				return
			}

			ok, err := check(token)
			if err != nil {
				logger.Error("failed to verify admin token", "error", err, "category", model.EventCategoryAuth)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to verify token", nil)
				return
			}
			if !ok {
				logger.Warn("rejected admin token", "ip", clientIP(r), "path", r.URL.Path, "category", model.EventCategoryAuth)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
