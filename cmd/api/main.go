// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Api is the entry point for the cereal delivery service: the CRUD HTTP
surface (books/chapters/subscribers/subscriptions) and the four
background pipeline workers (Discovery, Hydration, Conversion, Delivery)
that carry a tracked serial from "new chapter exists somewhere" to
"delivered to a subscriber" (spec.md §2).

Usage:

	go run cmd/api/main.go [flags]

The flags/environment variables are:

	SERVER_PORT     Port to listen on (default: 8080)
	ENVIRONMENT     deployment environment (development, production)
	DATABASE_PATH   SQLite file path (default: ./data.db)
	REDIS_URL       optional Discovery dedup cache connection string

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Open the embedded SQLite store; run migrations.
 4. Optional infrastructure: Redis dedup cache, S3 object store.
 5. Wiring: Inject dependencies into domain services/handlers and workers.
 6. Server + Supervisor: Bind HTTP listener, launch the worker supervisor,
    and handle graceful shutdown of both.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

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

	"github.com/jordansekky/cereal/internal/api"
	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/chapter"
	"github.com/jordansekky/cereal/internal/convert"
	"github.com/jordansekky/cereal/internal/dedup"
	"github.com/jordansekky/cereal/internal/notify"
	"github.com/jordansekky/cereal/internal/platform/config"
	"github.com/jordansekky/cereal/internal/platform/constants"
	"github.com/jordansekky/cereal/internal/platform/migration"
	redisstore "github.com/jordansekky/cereal/internal/platform/redis"
	"github.com/jordansekky/cereal/internal/platform/sqlite"
	"github.com/jordansekky/cereal/internal/provider"
	"github.com/jordansekky/cereal/internal/subscriber"
	"github.com/jordansekky/cereal/internal/subscription"
	"github.com/jordansekky/cereal/internal/worker"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries for trace correlation
	log := rawLog.With(slog.String("app", "cereal"))
	slog.SetDefault(log)

	log.Info("[cereal] service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "cereal"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. Embedded Store
	db, err := sqlite.Open(startupCtx, cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer func() {
		log.Info("closing sqlite store")
		if cerr := db.Close(); cerr != nil {
			log.Error("sqlite close error", slog.Any("error", cerr))
		}
	}()

	if err := migration.RunUp(cfg.DatabasePath, cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 4. Optional Infrastructure

	// Redis backs Discovery's dedup cache only. Absent or unreachable, it
	// degrades to a no-op (SPEC_FULL.md §13) rather than failing startup.
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis_unavailable_dedup_disabled", slog.Any("error", err))
		} else {
			rdb = client
			defer func() {
				log.Info("closing redis client")
				if cerr := client.Close(); cerr != nil {
					log.Error("redis close error", slog.Any("error", cerr))
				}
			}()
		}
	}
	dedupCache := dedup.New(rdb, log)

	// The S3-compatible object store backs the email-ingested providers
	// (Wandering Inn, Apparatus of Change). Without it those providers
	// error when invoked; Discovery logs and skips the affected books
	// (spec.md §4.B "per-book failures do not affect other books").
	var objectStore *provider.ObjectStore
	if cfg.AWSEmailBucket != "" {
		objectStore, err = provider.NewObjectStore(startupCtx, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSRegion, cfg.AWSS3Endpoint, cfg.AWSEmailBucket)
		if err != nil {
			return fmt.Errorf("configure object store: %w", err)
		}
	} else {
		log.Warn("object_store_not_configured_email_providers_disabled")
	}

	// # 5. Domain Wiring
	bookSvc := book.NewService(book.NewSQLiteRepository(db))
	chapterSvc := chapter.NewService(chapter.NewSQLiteRepository(db))
	subscriberSvc := subscriber.NewService(subscriber.NewSQLiteRepository(db))
	subscriptionSvc := subscription.NewService(subscription.NewSQLiteRepository(db), chapterSvc)

	dispatch := provider.NewDispatch(objectStore)
	converter := convert.NewConverter("")
	mailgunClient := notify.NewMailgunClient(cfg.MailgunAPIKey, cfg.MailgunAPIEndpoint, cfg.FromEmailAddress)
	pushoverClient := notify.NewPushoverClient(cfg.PushoverToken)

	// # 6. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return sqlite.Ping(context.Background(), db)
		},
		CheckCache: func() error {
			if rdb == nil {
				return nil
			}
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 7. CRUD Handler Wiring
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Book:         book.NewHandler(bookSvc),
		Chapter:      chapter.NewHandler(chapterSvc),
		Subscriber:   subscriber.NewHandler(subscriberSvc),
		Subscription: subscription.NewHandler(subscriptionSvc),
	}

	// # 8. Background Pipeline Wiring
	discovery := worker.NewDiscovery(bookSvc, chapterSvc, dispatch, dedupCache, log)
	hydration := worker.NewHydration(chapterSvc, dispatch, log)
	conversion := worker.NewConversion(bookSvc, chapterSvc, converter, log)
	delivery := worker.NewDelivery(subscriberSvc, subscriptionSvc, bookSvc, chapterSvc, converter, mailgunClient, pushoverClient, log)

	supervisor := worker.NewSupervisor(log,
		discovery.Task(),
		hydration.Task(),
		conversion.Task(),
		delivery.Task(),
	)

	// Create a background context for the whole application lifecycle
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	go supervisor.Run(appCtx)

	server := api.NewServer(appCtx, cfg, log, handlers)

	// # 9. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("cereal_api_running", slog.String("port", cfg.ServerPort))

	// Block until signal or error
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	// Start Graceful Shutdown Sequence
	appCancel() // Signal background workers to stop

	log.Info("shutting_down_api_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}
