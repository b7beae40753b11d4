// Package db opens the PostgreSQL pool that backs the postgres reference data
// source and manages the admin_units table.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/ug-admin-search/internal/config"
)

// PingTimeout bounds the connectivity check in Open.
const PingTimeout = 10 * time.Second

// Connection wraps the pool shared by providers and the db commands.
type Connection struct {
	DB *sql.DB
}

// pgEnv lists the libpq variables DSNFromEnv honours, with their defaults.
var pgEnv = []struct{ key, param, def string }{
	{"PGHOST", "host", "localhost"},
	{"PGPORT", "port", "5432"},
	{"PGUSER", "user", "postgres"},
	{"PGPASSWORD", "password", "postgres"},
	{"PGDATABASE", "dbname", "admin_units"},
	{"PGSSLMODE", "sslmode", "disable"},
}

// DSNFromEnv builds a lib/pq key/value DSN from the PG* environment variables.
func DSNFromEnv() string {
	parts := make([]string, 0, len(pgEnv))
	for _, v := range pgEnv {
		parts = append(parts, v.param+"="+config.GetEnv(v.key, v.def))
	}
	return strings.Join(parts, " ")
}

// Open opens and pings a pool for dsn, which may be a URL or key/value form.
// maxConns <= 0 selects 10.
func Open(dsn string, maxConns int) (*Connection, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	pool.SetMaxOpenConns(maxConns)
	pool.SetMaxIdleConns(max(1, maxConns/2))
	pool.SetConnMaxLifetime(time.Hour)

	return &Connection{DB: pool}, nil
}

// Close releases the pool.
func (c *Connection) Close() error {
	return c.DB.Close()
}
