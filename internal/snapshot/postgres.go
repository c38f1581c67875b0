package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStorage keeps the snapshot in a single-row table, upserted on
// every save.
type PostgresStorage struct {
	db *sql.DB
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS questgen_snapshot (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	data     BYTEA NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL
)`

// NewPostgresStorage connects with the given DSN and ensures the table.
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) Name() string { return "postgres" }

func (s *PostgresStorage) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questgen_snapshot (id, data, saved_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		data, time.Now().UTC(),
	)
	return err
}

func (s *PostgresStorage) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM questgen_snapshot WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresStorage) Close() error { return s.db.Close() }
