package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/themizzi/sessionsuite/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open returns a pooled handle for cfg. No connection is made until the
// handle is first used.
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// Connect opens a handle and verifies the database is reachable
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Placeholder returns the n-th (1-based) bind parameter for driver
func Placeholder(driver string, n int) string {
	if driver == config.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
