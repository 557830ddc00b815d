package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
)

// DB is the subset of *sql.DB used by the audit table.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PingContext(ctx context.Context) error
}

// ClickHouseObservationStorage appends applied observations to a MergeTree table.
type ClickHouseObservationStorage struct {
	db    DB
	table string
}

// NewClickHouseObservationStorage creates the audit storage for table.
func NewClickHouseObservationStorage(db DB, table string) *ClickHouseObservationStorage {
	return &ClickHouseObservationStorage{db: db, table: table}
}

// SchemaStatements returns the idempotent DDL for the audit table.
func (s *ClickHouseObservationStorage) SchemaStatements() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    applied_at   DateTime64(3, 'UTC'),
    window_start DateTime('UTC'),
    window_end   DateTime('UTC'),
    label        LowCardinality(String),
    magnitude    Int8,
    bucket       LowCardinality(String)
) ENGINE = MergeTree
ORDER BY window_end`, s.table)}
}

// Init creates the table if it does not exist.
func (s *ClickHouseObservationStorage) Init(ctx context.Context) error {
	for _, stmt := range s.SchemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s: %w", s.table, err)
		}
	}
	return nil
}

func (s *ClickHouseObservationStorage) Store(ctx context.Context, o models.Observation, appliedAt time.Time) error {
	q := fmt.Sprintf("INSERT INTO %s (applied_at, window_start, window_end, label, magnitude, bucket) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		appliedAt.UTC(),
		o.WindowStart.UTC(),
		o.WindowEnd.UTC(),
		string(o.Signal.Label),
		int8(o.Signal.Magnitude),
		string(o.Signal.Bucket),
	)
	if err != nil {
		return fmt.Errorf("store observation: %w", err)
	}
	return nil
}

func (s *ClickHouseObservationStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseObservationStorage) Close() error {
	return nil // Managed by pkg
}

var _ drepo.ObservationStorage = (*ClickHouseObservationStorage)(nil)
