package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ug-admin-search/internal/logger"
)

// schemaStatements create the reference table on first run. IF NOT EXISTS keeps
// them safe to run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS admin_units (
		level     SMALLINT NOT NULL CHECK (level BETWEEN 1 AND 5),
		id        TEXT NOT NULL,
		name      TEXT NOT NULL,
		parent_id TEXT,
		seq       INTEGER NOT NULL,
		PRIMARY KEY (level, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_admin_units_level_seq ON admin_units (level, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_admin_units_parent ON admin_units (level, parent_id)`,
}

// EnsureSchema creates the admin_units table and its indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range schemaStatements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}

// CountUnits returns the number of rows per level, used by `db ping`.
func CountUnits(ctx context.Context, db *sql.DB) (map[int]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT level, COUNT(*) FROM admin_units GROUP BY level ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("counting admin_units: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		out[level] = n
	}
	return out, rows.Err()
}
