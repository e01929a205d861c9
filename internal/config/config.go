// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from OCMS_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/ocms-formtrans/internal/auth"
	"github.com/olegiv/ocms-formtrans/internal/language"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"OCMS_DB_PATH" envDefault:"./data/formtrans.db"`
	DBDriver   string `env:"OCMS_DB_DRIVER" envDefault:"sqlite"`
	ServerHost string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"OCMS_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string `env:"OCMS_REDIS_URL"`                            // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OCMS_CACHE_PREFIX" envDefault:"formtrans:"` // Redis key prefix
	CacheTTL     int    `env:"OCMS_CACHE_TTL" envDefault:"3600"`          // Default cache TTL in seconds
	CacheMaxSize int    `env:"OCMS_CACHE_MAX_SIZE" envDefault:"10000"`    // Max memory cache entries

	// Admin API
	AdminTokenHash string  `env:"OCMS_ADMIN_TOKEN_HASH,required"` // argon2id or bcrypt hash of the bearer token
	APIRateLimit   float64 `env:"OCMS_API_RATE_LIMIT" envDefault:"10"`
	APIRateBurst   int     `env:"OCMS_API_RATE_BURST" envDefault:"20"`

	// Languages
	Languages       string `env:"OCMS_LANGUAGES" envDefault:"en:English"`
	DefaultLanguage string `env:"OCMS_DEFAULT_LANGUAGE"`

	// Form source. Empty DSN uses the local source_forms table.
	SourceDSN         string `env:"OCMS_SOURCE_DSN"`
	SourceTablePrefix string `env:"OCMS_SOURCE_TABLE_PREFIX" envDefault:"wp_"`

	// Background jobs
	RescanSchedule       string `env:"OCMS_RESCAN_SCHEDULE"`
	ScanLogRetentionDays int    `env:"OCMS_SCAN_LOG_RETENTION_DAYS" envDefault:"90"`

	// Machine translation
	OpenAIAPIKey  string `env:"OCMS_OPENAI_API_KEY"`
	OpenAIModel   string `env:"OCMS_OPENAI_MODEL"`
	OpenAIBaseURL string `env:"OCMS_OPENAI_BASE_URL"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// UseWordPressSource returns true if forms are read from an external database.
func (c Config) UseWordPressSource() bool {
	return c.SourceDSN != ""
}

// MachineTranslationEnabled returns true if an OpenAI key is configured.
func (c Config) MachineTranslationEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// CacheTTLDuration returns the default cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// ScanLogRetention returns how long scan log rows and events are kept.
// Zero disables pruning.
func (c Config) ScanLogRetention() time.Duration {
	if c.ScanLogRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.ScanLogRetentionDays) * 24 * time.Hour
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	if err := auth.ValidateHash(c.AdminTokenHash); err != nil {
		return fmt.Errorf("OCMS_ADMIN_TOKEN_HASH must be an argon2id or bcrypt hash "+
			"(generate one with: formtrans -hash-token <token>): %w", err)
	}
	if _, err := language.ParseList(c.Languages, c.DefaultLanguage); err != nil {
		return fmt.Errorf("OCMS_LANGUAGES: %w", err)
	}
	switch c.DBDriver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("OCMS_DB_DRIVER must be sqlite or sqlite3, got %q", c.DBDriver)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("OCMS_SERVER_PORT out of range: %d", c.ServerPort)
	}
	if c.CacheTTL < 0 || c.CacheMaxSize < 0 {
		return fmt.Errorf("cache TTL and size must not be negative")
	}
	return nil
}
