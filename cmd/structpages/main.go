// SPDX-License-Identifier: GPL-3.0-or-later

// Command structpages serves the structured-pages content API and the
// public page renderer.
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

	"structpages/internal/cache"
	"structpages/internal/config"
	"structpages/internal/handler"
	"structpages/internal/handler/api"
	"structpages/internal/middleware"
	"structpages/internal/store"
	"structpages/internal/version"
)

// Build-time values injected via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "structpages - structured pages content server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_ADMIN_TOKEN    Admin API token (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_DB_PATH        SQLite database path (default: ./data/structpages.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_SERVER_PORT    Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_ENV            Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_BASE_URL       Public base URL for canonical links\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SP_REDIS_URL      Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("structpages %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	var logHandler slog.Handler
	if cfg.IsDevelopment() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(logHandler))

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	pages := store.NewPages(db)
	categories := store.NewCategories(db)

	// Page cache: Redis when configured, in-process memory otherwise.
	pageBackend, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := pageBackend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("page cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("page cache initialized", "backend", "memory", "max_size", cfg.CacheSize)
	}
	pageCache := cache.NewPageCache(pageBackend, pages, time.Duration(cfg.CacheTTL)*time.Second)

	apiHandler := api.NewHandler(pages, categories, pageCache, versionInfo.Version)
	frontend, err := handler.NewFrontend(pages, pageCache, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("initializing frontend: %w", err)
	}

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", apiHandler.Status)

		// Reads are open
		r.Get("/pages", apiHandler.ListPages)
		r.Get("/pages/{key}", apiHandler.GetPage)
		r.Get("/categories", apiHandler.ListCategories)
		r.Get("/categories/{id}", apiHandler.GetCategory)

		// Writes require the admin token and pass the rate limiter
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminTokenAuth(cfg.AdminToken))
			r.Use(middleware.WriteRateLimit(cfg.WriteRPS, cfg.WriteBurst))

			r.Post("/pages", apiHandler.SavePage)
			r.Put("/pages/{id}/status", apiHandler.UpdatePageStatus)
			r.Patch("/pages/{id}/status", apiHandler.UpdatePageStatus)
			r.Delete("/pages/{id}", apiHandler.DeletePage)

			r.Post("/categories", apiHandler.SaveCategory)
			r.Delete("/categories/{id}", apiHandler.DeleteCategory)
		})
	})

	// Public renderer
	r.Get("/{slug}", frontend.Page)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
