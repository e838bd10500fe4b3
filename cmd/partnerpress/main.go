// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the PartnerPress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partnerpress/internal/cache"
	"partnerpress/internal/config"
	"partnerpress/internal/database"
	"partnerpress/internal/engine"
	"partnerpress/internal/handlers"
	"partnerpress/internal/media"
	"partnerpress/internal/middleware"
	"partnerpress/internal/partner"
	"partnerpress/internal/render"
	"partnerpress/internal/router"
	"partnerpress/internal/session"
	"partnerpress/internal/storage"
	"partnerpress/internal/store"
	"partnerpress/internal/taxonomy"
	"partnerpress/web"
)

func main() {
	// Structured logger: text in development, JSON elsewhere.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if os.Getenv("APP_ENV") == "" || os.Getenv("APP_ENV") == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"partner_labels", cfg.PartnerLabels,
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	// Valkey backs sessions and the page cache.
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword, 0)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	userStore := store.NewUserStore(db)
	contentStore := store.NewContentStore(db)
	termStore := store.NewTermStore(db)
	mediaStore := store.NewMediaStore(db)

	// Object storage is optional; without it uploads are disabled and
	// partner logos resolve to nothing.
	storageClient, err := storage.New(storage.Options{
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
	var resolver *media.Resolver
	var imageOrigins []string
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		resolver = media.NewResolver(mediaStore, storageClient)
		imageOrigins = append(imageOrigins, storageClient.Origin())
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
		resolver = media.NewResolver(mediaStore, nil)
	}

	taxonomies := taxonomy.NewRegistry(taxonomy.LabelSet(cfg.PartnerLabels))

	renderer, err := render.New(cfg.IsDev(), taxonomies)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Public rendering: the partner grid shortcode and badge filter run
	// on every post body.
	pipeline := engine.NewPipeline()
	partner.Register(pipeline, partner.Deps{Terms: termStore, Assets: resolver})
	eng, err := engine.New(pipeline, taxonomies, termStore, cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template engine", "error", err)
		os.Exit(1)
	}

	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)

	adminHandlers := handlers.NewAdmin(renderer, taxonomies, contentStore, termStore, mediaStore, storageClient, resolver, pageCache)
	adminHandlers.RegisterTermHooks(taxonomy.Partner, handlers.PartnerTermHooks(termStore, resolver))
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	publicHandlers := handlers.NewPublic(eng, contentStore, termStore, pageCache)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	// Five login attempts per minute per client.
	loginLimiter := middleware.NewRateLimiter(5, 12*time.Second)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:     sessionStore,
		Taxonomies:   taxonomies,
		Admin:        adminHandlers,
		Auth:         authHandlers,
		Public:       publicHandlers,
		LoginLimiter: loginLimiter,
		Static:       static,
		ImageOrigins: imageOrigins,
		SecureCookie: secureCookies,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
