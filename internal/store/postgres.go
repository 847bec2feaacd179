// Package store provides storage backends for coachbot's order records.
//
// This file implements the PostgreSQL-backed record store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/dkovalev/coachbot/internal/models"
)

// Connection pool configuration.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists records to a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a Postgres store from the DSN option.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres store ready")

	return &PostgresStore{db: db}, nil
}

// AddRecord appends a record as a new row.
func (s *PostgresStore) AddRecord(r models.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO records (chat_id, name, phone, address, created_at) VALUES ($1, $2, $3, $4, $5)`,
		r.ChatID, r.Name, r.Phone, r.Address, r.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore AddRecord failed", "error", err, "chatID", r.ChatID)
		return fmt.Errorf("failed to insert record for chat %s: %w", r.ChatID, err)
	}
	slog.Debug("PostgresStore AddRecord succeeded", "chatID", r.ChatID)
	return nil
}

// GetRecords returns all records in insertion order.
func (s *PostgresStore) GetRecords() ([]models.Record, error) {
	rows, err := s.db.Query(`SELECT chat_id, name, phone, address, created_at FROM records ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore GetRecords query failed", "error", err)
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetRecordsByChat returns records for a single chat in insertion order.
func (s *PostgresStore) GetRecordsByChat(chatID string) ([]models.Record, error) {
	rows, err := s.db.Query(`SELECT chat_id, name, phone, address, created_at FROM records WHERE chat_id = $1 ORDER BY id`, chatID)
	if err != nil {
		slog.Error("PostgresStore GetRecordsByChat query failed", "error", err, "chatID", chatID)
		return nil, fmt.Errorf("failed to query records for chat %s: %w", chatID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Close closes the Postgres connection pool.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
		return err
	}
	return nil
}
