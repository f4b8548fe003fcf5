package export

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in export_meta.
const SchemaVersion = 1

// CreateSchema creates the lanes, cards and export_meta tables.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"lanes", `
			CREATE TABLE IF NOT EXISTS lanes (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				position INTEGER NOT NULL
			)`},
		{"cards", `
			CREATE TABLE IF NOT EXISTS cards (
				id TEXT PRIMARY KEY,
				lane TEXT NOT NULL REFERENCES lanes(id),
				position INTEGER NOT NULL,
				text TEXT NOT NULL
			)`},
		{"cards index", `CREATE UNIQUE INDEX IF NOT EXISTS idx_cards_lane_position ON cards(lane, position)`},
		{"export_meta", `
			CREATE TABLE IF NOT EXISTS export_meta (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`},
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st.sql); err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

// OptimizeDatabase compacts a freshly written export into a single file.
func OptimizeDatabase(ctx context.Context, db *sql.DB) error {
	for _, pragma := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Best effort; some pragmas fail depending on build options.
		_, _ = db.ExecContext(ctx, pragma)
	}
	if _, err := db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// InsertMetaValue inserts or replaces an export_meta entry.
func InsertMetaValue(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
