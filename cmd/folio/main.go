// Package main is the entry point for the Folio portfolio server.
// It loads configuration, opens the configured storage backend, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/kv"
	"folio/internal/live"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/router"
	"folio/internal/session"
	"folio/internal/storage"
	"folio/internal/store"
)

func main() {
	// Load configuration from environment variables (and .env, if present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage_driver", cfg.StorageDriver,
	)

	// Open the key-value backend holding the portfolio and the admin session.
	var (
		backend      kv.Backend
		valkeyClient *redis.Client
		db           *sql.DB
	)
	switch cfg.StorageDriver {
	case config.DriverValkey:
		valkeyClient, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		backend = kv.NewValkey(valkeyClient, kv.DefaultValkeyPrefix)

	case config.DriverPostgres:
		db, err = database.Connect(cfg.DSN())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		backend = kv.NewPostgres(db)

	default:
		slog.Warn("using in-memory storage, all data is lost on restart")
		backend = kv.NewMemory(0)
	}

	ctx := context.Background()
	portfolio, err := store.Open(ctx, backend)
	if err != nil {
		slog.Error("failed to open portfolio store", "error", err)
		os.Exit(1)
	}

	gate := session.NewGate(backend, session.WithTimeout(cfg.SessionTimeout))
	if ok, err := gate.HasAdminAccount(ctx); err == nil && !ok {
		slog.Warn("no admin account yet, the first login will create it")
	}

	// Public response snapshots: shared in Valkey when it is available.
	var snaps cache.Snapshots
	if valkeyClient != nil {
		snaps = cache.NewValkeySnapshots(valkeyClient, cache.DefaultSnapshotTTL)
	} else {
		snaps = cache.NewMemorySnapshots(cache.DefaultSnapshotTTL)
	}

	// Connect to S3-compatible object storage (optional; uploads fall back to
	// data: URIs without it).
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads are returned inline")
	}

	// Live change feed for connected views.
	var allowOrigin func(string) bool
	if len(cfg.CORSOrigins) > 0 {
		allowOrigin = func(origin string) bool { return slices.Contains(cfg.CORSOrigins, origin) }
	}
	hub := live.NewHub(allowOrigin)
	defer hub.Close()
	portfolio.Subscribe(func(doc models.Document) { hub.PublishDocument(doc) })
	gate.OnLogout(hub.PublishLogout)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute, cfg.TrustProxy)
	defer loginLimiter.Stop()

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(portfolio, storageClient)
	authHandlers := handlers.NewAuth(gate, cfg.SecureCookies())
	publicHandlers := handlers.NewPublic(portfolio, snaps)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Options{
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: cfg.SecureCookies(),
	}, gate, adminHandlers, authHandlers, publicHandlers, hub, loginLimiter)

	// Create the HTTP server with sensible timeouts. WriteTimeout must leave
	// room for 5 MB uploads on slow links.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
