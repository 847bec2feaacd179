// Package store provides storage backends for coachbot's order records.
//
// Records are append-only: writing the same record twice produces two rows.
package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkovalev/coachbot/internal/models"
)

// Store is the record sink interface implemented by all backends.
type Store interface {
	// AddRecord appends a finalized onboarding record.
	AddRecord(r models.Record) error

	// GetRecords returns all stored records in insertion order.
	GetRecords() ([]models.Record, error)

	// GetRecordsByChat returns all records for a chat in insertion order.
	GetRecordsByChat(chatID string) ([]models.Record, error)

	// Close releases the backing resources.
	Close() error
}

// Opts holds configuration assembled from Options.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path as the backing database.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string as the backing database.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite" based on its shape.
// Anything that is not recognizably PostgreSQL is treated as a SQLite path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// New creates a store backend based on the DSN in the provided options. An
// empty DSN yields an in-memory store, which forgets everything on restart.
func New(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Warn("No database DSN configured, using in-memory record store")
		return NewInMemoryStore(), nil
	}
	switch DetectDSNType(cfg.DSN) {
	case "postgres":
		slog.Debug("Detected PostgreSQL DSN, creating Postgres store")
		st, err := NewPostgresStore(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres store: %w", err)
		}
		return st, nil
	default:
		slog.Debug("Detected SQLite DSN, creating SQLite store", "db_path", cfg.DSN)
		st, err := NewSQLiteStore(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		return st, nil
	}
}

// InMemoryStore is a simple in-memory record sink used in tests and as the
// fallback when no DSN is configured.
type InMemoryStore struct {
	records []models.Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddRecord appends a record.
func (s *InMemoryStore) AddRecord(r models.Record) error {
	s.records = append(s.records, r)
	return nil
}

// GetRecords returns all stored records.
func (s *InMemoryStore) GetRecords() ([]models.Record, error) {
	out := make([]models.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// GetRecordsByChat returns records for a single chat.
func (s *InMemoryStore) GetRecordsByChat(chatID string) ([]models.Record, error) {
	var out []models.Record
	for _, r := range s.records {
		if r.ChatID == chatID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
