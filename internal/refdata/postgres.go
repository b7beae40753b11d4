package refdata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ug-admin-search/internal/logger"
)

// PGProvider loads the dataset from the admin_units table (see db.EnsureSchema).
type PGProvider struct {
	DB *sql.DB
}

// NewPGProvider creates a provider reading from db.
func NewPGProvider(db *sql.DB) *PGProvider {
	return &PGProvider{DB: db}
}

const selectUnits = `
	SELECT level, id, name, COALESCE(parent_id, '')
	FROM admin_units
	ORDER BY level, seq`

// Load reads every unit in level then seq order.
func (p *PGProvider) Load(ctx context.Context) (*Dataset, error) {
	rows, err := p.DB.QueryContext(ctx, selectUnits)
	if err != nil {
		return nil, fmt.Errorf("querying admin_units: %w", err)
	}
	defer rows.Close()

	var byLevel [NumLevels][]Row
	for rows.Next() {
		var level int
		var r Row
		if err := rows.Scan(&level, &r.ID, &r.Name, &r.ParentID); err != nil {
			return nil, fmt.Errorf("scanning admin_units row: %w", err)
		}
		if !Level(level).Valid() {
			logger.L().Warn("refdata_row_dropped", "source", "postgres", "id", r.ID, "reason", "invalid level")
			continue
		}
		byLevel[level-1] = append(byLevel[level-1], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating admin_units: %w", err)
	}

	ds := NewDataset()
	for _, level := range Levels() {
		clean, issues := Sanitize(level, byLevel[level.Index()])
		logIssues(logger.L(), "postgres", issues)
		ds.AddRows(level, clean)
	}
	logger.L().Info("refdata_loaded", "source", "postgres", "units", ds.Len())
	return ds, nil
}

// Import replaces the contents of admin_units with ds inside one transaction.
// Row order is kept in the seq column so a later Load returns the same order.
func Import(ctx context.Context, db *sql.DB, ds *Dataset) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM admin_units`); err != nil {
		return 0, fmt.Errorf("clearing admin_units: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO admin_units (level, id, name, parent_id, seq)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for _, level := range Levels() {
		for seq, u := range ds.At(level) {
			if _, err := stmt.ExecContext(ctx, int(level), u.ID, u.Name, u.ParentID, seq); err != nil {
				return imported, fmt.Errorf("inserting %s %s: %w", level, u.ID, err)
			}
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return imported, nil
}
