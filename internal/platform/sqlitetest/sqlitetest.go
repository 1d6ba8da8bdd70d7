// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlitetest provides an in-memory SQLite database for
// repository-level tests. The teacher has no store-backed test to
// generalize from, so this is new test infrastructure shaped to fit
// database/sql + mattn/go-sqlite3 rather than an adapted teacher file
// (see DESIGN.md's Test tooling entry).
package sqlitetest

import (
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// Open returns a fresh in-memory SQLite database with the embedded store's
// schema migration applied, isolated per test by a shared-cache name
// derived from t.Name(). The connection pool is pinned to a single
// connection: SQLite's shared in-memory cache is keyed by DSN, and a
// single connection avoids any ambiguity about which memory instance a
// second connection would see.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on"

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	up, err := os.ReadFile(migrationPath())
	require.NoError(t, err)
	_, err = db.Exec(string(up))
	require.NoError(t, err)

	return db
}

// migrationPath resolves migrations/000001_init.up.sql relative to this
// source file, independent of the calling test's package directory.
func migrationPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations", "000001_init.up.sql")
}
