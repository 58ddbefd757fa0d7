package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/skillsift/skillsift/internal/models"
)

// SQLiteStore implements ItemStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ ItemStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		type TEXT,
		url TEXT
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Replace swaps the stored items for the given list in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, items []models.Assessment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM assessments"); err != nil {
		return fmt.Errorf("clear assessments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assessments (position, id, name, description, type, url)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, i, item.ID, item.Name, item.Description, item.Type, item.URL); err != nil {
			return fmt.Errorf("insert assessment %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// List returns all items ordered by position.
func (s *SQLiteStore) List(ctx context.Context) ([]models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, type, url FROM assessments ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var items []models.Assessment
	for rows.Next() {
		var a models.Assessment
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Type, &a.URL); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Count returns the number of stored items.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
