package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// DefaultPath is where the database lives when no path is configured.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chatrail", "chatrail.db"), nil
}

// Open opens the database at path, or at DefaultPath when path is empty, and
// brings the schema up to date.
func Open(path string) (*DB, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &DB{db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			department TEXT NOT NULL,
			role TEXT NOT NULL,
			salary INTEGER NOT NULL,
			last_paycheck TEXT NOT NULL,
			manager TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS employees_department ON employees (department COLLATE NOCASE)`,
		`CREATE TABLE IF NOT EXISTS departments (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			headcount INTEGER NOT NULL,
			budget INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pay_runs (
			id INTEGER PRIMARY KEY,
			period TEXT NOT NULL,
			total_amount INTEGER NOT NULL,
			employee_count INTEGER NOT NULL,
			processed_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pto_summary (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			year INTEGER NOT NULL,
			used INTEGER NOT NULL,
			remaining TEXT NOT NULL,
			policy TEXT NOT NULL,
			approval_required TEXT NOT NULL,
			manager TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pto_requests (
			id TEXT PRIMARY KEY,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			days INTEGER NOT NULL,
			manager TEXT NOT NULL,
			reason TEXT NOT NULL,
			status TEXT NOT NULL,
			ics TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	return nil
}

func (db *DB) GetState(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (db *DB) SetState(key, value string) error {
	_, err := db.Exec(
		"INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
