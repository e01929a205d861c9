// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the API: admin token
// authentication, rate limiting and request language detection.
package middleware

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON error body of every failed API request.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	var body APIError
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Details = details

	_ = json.NewEncoder(w).Encode(body)
}
