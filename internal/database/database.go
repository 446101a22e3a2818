// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package database is the DuckDB-backed implementation of the
// internal/repository interfaces. A single *DB hands out one repository
// per entity through accessor methods (Events(), Tables(), ...), so
// callers can either use the narrow repository interface or the concrete
// *DB where the full surface is needed (e.g. wiring in
// cmd/server/main.go).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/config"
	"github.com/tomtom215/bbqcomp/internal/logging"
)

// DB wraps a DuckDB connection pool and exposes the repository
// implementations built on top of it.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (creating if necessary) the DuckDB file at cfg.Name and runs
// schema migrations. Passing ":memory:" as cfg.Name opens a transient
// in-memory database, used by tests and by the offline single-laptop
// deployment profile that never persists between runs.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	path := cfg.Name
	if path != ":memory:" {
		path = path + ".duckdb"
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("database: create data directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	db.configureConnectionPool()

	if err := db.runMigrations(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	logging.Info().Str("path", path).Msg("database ready")
	return db, nil
}

func (db *DB) configureConnectionPool() {
	poolSize := db.cfg.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	db.conn.SetMaxOpenConns(poolSize)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(db.cfg.IdleTimeout)
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying *sql.DB for collaborators that need raw SQL
// access against the same connection pool, such as internal/audit's SQLStore.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func closeQuietly(conn *sql.DB) {
	_ = conn.Close()
}

// conflictIfExists returns Conflict(message) when the given query over
// live rows matches anything. DuckDB cannot declare "unique among
// non-deleted rows" as a partial index, so the repositories guard their
// uniqueness invariants here before inserting.
func (db *DB) conflictIfExists(ctx context.Context, message, query string, args ...interface{}) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return fmt.Errorf("database: uniqueness check: %w", err)
	}
	if count > 0 {
		return apperr.Conflict(message)
	}
	return nil
}

// isUniqueViolation reports whether err is the store's duplicate-key
// error, used to map index races onto Conflict.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{"Constraint Error", "unique", "UNIQUE", "Duplicate key"} {
		if containsSubstring(msg, s) {
			return true
		}
	}
	return false
}

// isConnectionError reports whether err indicates the DuckDB connection
// was lost, as opposed to a query-level failure (constraint violation,
// bad SQL).
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused", "connection reset", "broken pipe",
		"bad connection", "database is closed",
	} {
		if containsSubstring(msg, s) {
			return true
		}
	}
	return false
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
