// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure content and output directories exist.
	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("init content storage: %w", err)
	}
	out, err := storage.NewFS(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("init output storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	renderer := render.New(render.Options{
		Extensions: cfg.Render.Extensions,
		Safe:       cfg.Render.Safe,
		HardWraps:  cfg.Render.HardWraps,
	})
	builder := site.NewBuilder(store, out, renderer, db, logger, cfg.Build.Workers)

	// Run initial sync and site build.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	if report, buildErr := builder.Build(ctx); buildErr != nil {
		logger.Warn("initial build failed", slog.String("error", buildErr.Error()))
	} else {
		logger.Info("initial build complete",
			slog.Int("built", report.Built),
			slog.Int("failed", len(report.Failed)),
			slog.Duration("duration", report.Duration))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API service and router.
	svc := docservice.NewService(store, db, renderer)
	apiRouter := api.NewRouter(svc, builder, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Content.Dir)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Serve rendered pages and article assets.
	assets := api.NewAssetHandler(cfg.Content.Dir)
	r.Get("/assets/{filename}", assets.ServeFile)
	r.Handle("/*", http.FileServer(http.Dir(cfg.Output.Dir)))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher: keep the index and rendered output current and
	// notify SSE clients.
	g.Go(func() error {
		watchErr := index.Watch(gCtx, db, store, cfg.Content.Dir, logger, func(kind, path string) {
			switch kind {
			case "deleted":
				if err := builder.RemovePath(path); err != nil {
					logger.Warn("remove output failed", slog.String("path", path), slog.String("error", err.Error()))
				}
			default:
				if _, err := builder.BuildPath(path); err != nil {
					logger.Warn("incremental build failed", slog.String("path", path), slog.String("error", err.Error()))
				}
			}
			broker.PublishDocumentEvent(kind, path)
		})
		if watchErr != nil {
			logger.Warn("file watcher stopped", slog.String("error", watchErr.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
