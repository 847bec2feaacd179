// Package store provides storage backends for coachbot's order records.
//
// This file implements the SQLite-backed record store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dkovalev/coachbot/internal/models"
)

// DefaultDirPermissions defines the permissions for created database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists records to a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLite store from the DSN option. The DSN is a
// file path; its directory is created when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite store ready", "db_path", cfg.DSN)

	return &SQLiteStore{db: db}, nil
}

// AddRecord appends a record as a new row.
func (s *SQLiteStore) AddRecord(r models.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO records (chat_id, name, phone, address, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ChatID, r.Name, r.Phone, r.Address, r.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddRecord failed", "error", err, "chatID", r.ChatID)
		return fmt.Errorf("failed to insert record for chat %s: %w", r.ChatID, err)
	}
	slog.Debug("SQLiteStore AddRecord succeeded", "chatID", r.ChatID)
	return nil
}

// GetRecords returns all records in insertion order.
func (s *SQLiteStore) GetRecords() ([]models.Record, error) {
	rows, err := s.db.Query(`SELECT chat_id, name, phone, address, created_at FROM records ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore GetRecords query failed", "error", err)
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetRecordsByChat returns records for a single chat in insertion order.
func (s *SQLiteStore) GetRecordsByChat(chatID string) ([]models.Record, error) {
	rows, err := s.db.Query(`SELECT chat_id, name, phone, address, created_at FROM records WHERE chat_id = ? ORDER BY id`, chatID)
	if err != nil {
		slog.Error("SQLiteStore GetRecordsByChat query failed", "error", err, "chatID", chatID)
		return nil, fmt.Errorf("failed to query records for chat %s: %w", chatID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ClearRecords deletes all records (for tests).
func (s *SQLiteStore) ClearRecords() error {
	_, err := s.db.Exec(`DELETE FROM records`)
	if err != nil {
		slog.Error("SQLiteStore ClearRecords failed", "error", err)
		return err
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
		return err
	}
	return nil
}
