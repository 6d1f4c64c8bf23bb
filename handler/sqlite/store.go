// Package sqlite provides a weather Store persisted in SQLite.
// It uses the pure Go modernc.org/sqlite driver, so no cgo is required.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Store is a handler.Store backed by a weather_reports table.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens (and migrates) the database at path. Parent directories are
// created on demand; WAL mode is enabled for file databases.
func Open(path string) (*Store, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == Memory {
		// Every connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	} else if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS weather_reports (
			city TEXT PRIMARY KEY,
			report TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create weather_reports table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.conn.Close() }

// Path returns the path to the database file.
func (s *Store) Path() string { return s.path }

// Put inserts or replaces the report of city.
func (s *Store) Put(ctx context.Context, city, report string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO weather_reports (city, report) VALUES (?, ?)
		ON CONFLICT(city) DO UPDATE SET report = excluded.report, updated_at = CURRENT_TIMESTAMP
	`, normalizeCity(city), report)
	if err != nil {
		return fmt.Errorf("put report for %s: %w", city, err)
	}
	return nil
}

// Seed stores every entry of table in one transaction.
func (s *Store) Seed(ctx context.Context, table map[string]string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weather_reports (city, report) VALUES (?, ?)
		ON CONFLICT(city) DO UPDATE SET report = excluded.report, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	for city, report := range table {
		if _, err := stmt.ExecContext(ctx, normalizeCity(city), report); err != nil {
			return fmt.Errorf("seed %s: %w", city, err)
		}
	}
	return tx.Commit()
}

// Lookup implements handler.Store.
func (s *Store) Lookup(ctx context.Context, city string) (string, bool, error) {
	var report string
	err := s.conn.QueryRowContext(ctx,
		"SELECT report FROM weather_reports WHERE city = ?", normalizeCity(city),
	).Scan(&report)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", city, err)
	}
	return report, true, nil
}

// Cities lists the stored cities in alphabetical order.
func (s *Store) Cities(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT city FROM weather_reports ORDER BY city")
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		out = append(out, city)
	}
	return out, rows.Err()
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
