package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vanderheijden86/laneboard/pkg/model"
	"github.com/vanderheijden86/laneboard/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a board to a standalone SQLite file.
type SQLiteExporter struct {
	Board model.BoardState
	Now   func() time.Time
}

// NewSQLiteExporter returns an exporter for s.
func NewSQLiteExporter(s model.BoardState) *SQLiteExporter {
	return &SQLiteExporter{Board: s, Now: time.Now}
}

// Export replaces path with a new database holding the board.
func (e *SQLiteExporter) Export(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(ctx, db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertBoard(ctx, db); err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	if err := e.insertMeta(ctx, db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(ctx, db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}
	return db.Close()
}

func (e *SQLiteExporter) insertBoard(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	laneStmt, err := tx.PrepareContext(ctx, `INSERT INTO lanes (id, title, position) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer laneStmt.Close()

	cardStmt, err := tx.PrepareContext(ctx, `INSERT INTO cards (id, lane, position, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer cardStmt.Close()

	for i, lane := range model.Lanes {
		if _, err := laneStmt.ExecContext(ctx, string(lane), lane.Title(), i); err != nil {
			return fmt.Errorf("lane %s: %w", lane, err)
		}
		for pos, c := range e.Board.Lane(lane) {
			if _, err := cardStmt.ExecContext(ctx, c.ID, string(lane), pos, c.Text); err != nil {
				return fmt.Errorf("card %s: %w", c.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(ctx context.Context, db *sql.DB) error {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	meta := map[string]string{
		"version":        version.Version,
		"generated_at":   now().UTC().Format(time.RFC3339),
		"card_count":     strconv.Itoa(e.Board.TotalCards()),
		"schema_version": strconv.Itoa(SchemaVersion),
	}
	for key, value := range meta {
		if err := InsertMetaValue(ctx, db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
