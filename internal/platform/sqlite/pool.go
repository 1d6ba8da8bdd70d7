// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sqlite provides the embedded relational store connection pool.

It specializes in opening and tuning a [database/sql.DB] backed by
'mattn/go-sqlite3', the single file-backed store the whole pipeline
(Discovery/Hydration/Conversion/Delivery) and the CRUD surface share.

Architecture:

  - Pool: a small [database/sql.DB] pool — SQLite serializes writers
    internally, so the pool exists for concurrent readers, not for
    write parallelism.
  - Pragmas: WAL journal mode and a busy timeout are set via DSN
    parameters so concurrent workers don't trip SQLITE_BUSY under
    normal load.
  - Safety: integrates context deadlines to prevent runaway queries.

This package acts as the bridge between the domain repositories and the
physical storage layer.
*/
package sqlite

import (
	stdctx "context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// # Pool Configuration (Tuning)

const (
	// maxOpenConns bounds concurrent readers; SQLite serializes writers
	// regardless, matching spec's "single-writer in practice" model.
	maxOpenConns = 5

	// maxConnLifetime ensures connections are periodically recycled.
	maxConnLifetime = 60 * time.Minute

	// maxConnIdleTime closes connections that have been idle too long.
	maxConnIdleTime = 10 * time.Minute

	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
)

// # Lifecycle Management

// Open opens and validates the embedded SQLite database at path.
func Open(ctx stdctx.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: invalid DSN: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxLifetime(maxConnLifetime)
	db.SetConnMaxIdleTime(maxConnIdleTime)

	if err := Ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite database opened", slog.String("path", path))

	return db, nil
}

// Ping verifies that the database is reachable.
func Ping(ctx stdctx.Context, db *sql.DB) error {
	pingCtx, cancel := stdctx.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return nil
}
