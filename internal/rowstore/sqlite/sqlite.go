// Package sqlite provides a SQLite-backed implementation of the
// rowstore.Store interface, used for local deployments and tests. Each
// sheet is stored as a sparse cell grid so the A1 addressing of the
// remote spreadsheet service carries over unchanged.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/kanitw/stockroom/internal/rowstore"
)

// Ensure SQLiteStore implements rowstore.Store
var _ rowstore.Store = (*SQLiteStore)(nil)

// SQLiteStore implements rowstore.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSheet creates the sheet if absent and repairs the header row if it
// is missing, too short, or starts with the wrong column name.
func (s *SQLiteStore) EnsureSheet(ctx context.Context, sheet string, header []string) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sheets (name) VALUES (?)", sheet,
	); err != nil {
		return fmt.Errorf("failed to ensure sheet %s: %w", sheet, err)
	}

	first, err := s.GetRow(ctx, sheet, 1)
	if err != nil {
		return err
	}
	if headerMatches(first, header) {
		return nil
	}

	return s.UpdateRange(ctx, sheet, rowstore.RowRange(len(header), 1), [][]string{header})
}

func headerMatches(row, header []string) bool {
	if len(row) < len(header) {
		return false
	}
	for i, h := range header {
		if row[i] != h {
			return false
		}
	}
	return true
}

// GetAllRows returns all data rows keyed by the header columns.
func (s *SQLiteStore) GetAllRows(ctx context.Context, sheet string) ([]rowstore.Row, error) {
	header, err := s.GetRow(ctx, sheet, 1)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT row, col, value FROM cells WHERE sheet = ? AND row >= 2 ORDER BY row, col",
		sheet,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells of %s: %w", sheet, err)
	}
	defer rows.Close()

	grid := make(map[int]map[int]string)
	maxRow := 1
	for rows.Next() {
		var r, c int
		var v string
		if err := rows.Scan(&r, &c, &v); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		if grid[r] == nil {
			grid[r] = make(map[int]string)
		}
		grid[r][c] = v
		if r > maxRow {
			maxRow = r
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cells: %w", err)
	}

	var out []rowstore.Row
	for r := 2; r <= maxRow; r++ {
		cells := grid[r]
		record := make(rowstore.Row, len(header))
		empty := true
		for c, name := range header {
			v := cells[c+1]
			if v != "" {
				empty = false
			}
			record[name] = v
		}
		if !empty {
			out = append(out, record)
		}
	}
	return out, nil
}

// GetRow returns the raw cell values of one row, up to the last non-empty
// column. A missing row yields an empty slice, not an error.
func (s *SQLiteStore) GetRow(ctx context.Context, sheet string, rowIndex int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT col, value FROM cells WHERE sheet = ? AND row = ? ORDER BY col",
		sheet, rowIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query row %d of %s: %w", rowIndex, sheet, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var col int
		var v string
		if err := rows.Scan(&col, &v); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		for len(out) < col {
			out = append(out, "")
		}
		out[col-1] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate row: %w", err)
	}
	return out, nil
}

// UpdateCell writes a single cell addressed in A1 notation.
func (s *SQLiteStore) UpdateCell(ctx context.Context, sheet, cell, value string) error {
	col, row, err := rowstore.ParseCell(cell)
	if err != nil {
		return err
	}
	return s.setCell(ctx, s.db, sheet, row, col, value)
}

// UpdateRange writes a rectangular block of cells addressed in A1 notation.
func (s *SQLiteStore) UpdateRange(ctx context.Context, sheet, rangeAddr string, values [][]string) error {
	startCol, startRow, _, _, err := rowstore.ParseRange(rangeAddr)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for ri, rowValues := range values {
		for ci, v := range rowValues {
			if err := s.setCell(ctx, tx, sheet, startRow+ri, startCol+ci, v); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AppendRow writes values into the first unused row: the count of existing
// data rows plus two.
func (s *SQLiteStore) AppendRow(ctx context.Context, sheet string, values []string) error {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT row) FROM cells WHERE sheet = ? AND row >= 2",
		sheet,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count rows of %s: %w", sheet, err)
	}
	return s.UpdateRange(ctx, sheet, rowstore.RowRange(len(values), count+2), [][]string{values})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) setCell(ctx context.Context, db execer, sheet string, row, col int, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)
		ON CONFLICT (sheet, row, col) DO UPDATE SET value = excluded.value`,
		sheet, row, col, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write cell %s%d of %s: %w", rowstore.ColumnLetter(col), row, sheet, err)
	}
	return nil
}
