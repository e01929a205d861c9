// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-formtrans/internal/autotranslate"
	"github.com/olegiv/ocms-formtrans/internal/cache"
	"github.com/olegiv/ocms-formtrans/internal/catalog"
	"github.com/olegiv/ocms-formtrans/internal/config"
	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/handler/api"
	"github.com/olegiv/ocms-formtrans/internal/language"
	"github.com/olegiv/ocms-formtrans/internal/logging"
	"github.com/olegiv/ocms-formtrans/internal/middleware"
	"github.com/olegiv/ocms-formtrans/internal/scheduler"
	"github.com/olegiv/ocms-formtrans/internal/source"
	"github.com/olegiv/ocms-formtrans/internal/store"
	"github.com/olegiv/ocms-formtrans/internal/translation"
	"github.com/olegiv/ocms-formtrans/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	importForm := flag.String("import-form", "", "Import a form definition (JSON file) into the local source and scan it")
	scanForm := flag.Int64("scan", 0, "Scan one form by id and exit")
	hashToken := flag.String("hash-token", "", "Print the argon2id hash of an admin token and exit")
	uninstall := flag.Bool("uninstall", false, "Drop every table created by formtrans and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "formtrans - translations for form builder forms\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ADMIN_TOKEN_HASH  argon2id or bcrypt hash of the admin API token (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DB_PATH           SQLite database path (default: ./data/formtrans.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_LANGUAGES         Languages, e.g. en:English,de:Deutsch (default: en:English)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SOURCE_DSN        MySQL DSN of the WordPress database (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_RESCAN_SCHEDULE   Cron schedule for rescanning all forms (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_OPENAI_API_KEY    Enables machine translation suggestions (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(buildInfo())
		os.Exit(0)
	}

	if *hashToken != "" {
		if err := printTokenHash(os.Stdout, *hashToken); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cmd := command{importPath: *importForm, scanID: *scanForm, uninstall: *uninstall}
	if err := run(cmd); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// command holds the one-shot operations requested on the command line.
type command struct {
	importPath string
	scanID     int64
	uninstall  bool
}

func (c command) isSet() bool {
	return c.importPath != "" || c.scanID != 0 || c.uninstall
}

func run(cmd command) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := buildInfo()

	logLevel := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath, "driver", cfg.DBDriver)
	dbCfg := store.DefaultDBConfig()
	dbCfg.Driver = cfg.DBDriver
	db, err := store.NewDBWithConfig(cfg.DBPath, dbCfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if cmd.uninstall {
		if err := store.Reset(db); err != nil {
			return fmt.Errorf("uninstalling: %w", err)
		}
		slog.Info("all formtrans tables removed")
		return nil
	}

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// WARN and ERROR records also go to the events table.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	walker := fieldpath.NewWalker(logger)

	if cmd.importPath != "" {
		return importForm(ctx, db, walker, logger, cmd.importPath)
	}

	src, closeSource, err := openSource(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeSource()

	cat := catalog.New(db, src, walker, logger)

	if cmd.isSet() {
		return scanOne(ctx, cat, cmd.scanID)
	}

	cacheResult, err := cache.New(cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.CacheTTLDuration(),
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	caches := cache.NewManager(cacheResult.Cache, logger)
	defer func() { _ = caches.Close() }()
	slog.Info("cache initialized", "backend", cacheResult.Backend, "fallback", cacheResult.IsFallback)

	langs := language.NewStatic(cfg.Languages, cfg.DefaultLanguage, logger)
	translations := translation.NewStore(db, cat, langs, logger)

	cat.SetInvalidator(caches)
	translations.SetInvalidator(caches)

	var translator autotranslate.Translator
	if cfg.MachineTranslationEnabled() {
		translator = autotranslate.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		slog.Info("machine translation enabled", "model", cfg.OpenAIModel)
	}

	sched := scheduler.New(cat, store.New(db), scheduler.Config{
		RescanSchedule: cfg.RescanSchedule,
		Retention:      cfg.ScanLogRetention(),
	}, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Deps{
		Source:       src,
		Catalog:      cat,
		Translations: translations,
		Renderer:     translation.NewRenderer(translations, walker, caches.Translations, logger),
		Filler:       autotranslate.NewFiller(translations, translator, logger),
		Languages:    langs,
		Cache:        caches,
		DB:           db,
		Version:      versionInfo.Version,
		Logger:       logger,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Mount("/api/v1", apiHandler.Routes(
		middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateBurst),
		middleware.AdminToken(cfg.AdminTokenHash, logger),
	))
	r.Get("/health", apiHandler.Health)
	slog.Info("API mounted at /api/v1")

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second, // suggestions call an external model
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openSource returns the WordPress source when a DSN is configured and the
// local source table otherwise. The local source is seeded with a sample
// form in development.
func openSource(ctx context.Context, cfg *config.Config, db *sql.DB) (source.Source, func(), error) {
	if cfg.UseWordPressSource() {
		wp, err := source.OpenWordPress(cfg.SourceDSN, cfg.SourceTablePrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("opening form source: %w", err)
		}
		slog.Info("using WordPress form source", "table_prefix", cfg.SourceTablePrefix)
		return wp, func() { _ = wp.Close() }, nil
	}

	if cfg.IsDevelopment() {
		if err := store.Seed(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("seeding database: %w", err)
		}
	}
	slog.Info("using local form source")
	return source.NewLocal(db), func() {}, nil
}

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}
