package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const createFallbackTable = `
CREATE TABLE IF NOT EXISTS fallback_store (
	kind       TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres backs the fallback store with a single-table KV, surviving
// process restarts.
type Postgres struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgres connects and ensures the table exists.
func NewPostgres(dsn string, logger *slog.Logger) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect failed: %w", err)
	}
	if _, err := db.Exec(createFallbackTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create fallback table: %w", err)
	}
	return &Postgres{
		db:     db,
		logger: logger.With("component", "fallback_store"),
	}, nil
}

// Get returns the stored payload, or (nil, nil) when absent.
func (p *Postgres) Get(ctx context.Context, kind string) ([]byte, error) {
	var payload []byte
	err := p.db.GetContext(ctx, &payload,
		`SELECT payload FROM fallback_store WHERE kind = $1`, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fallback select failed: %w", err)
	}
	return payload, nil
}

// Put upserts the payload for a kind.
func (p *Postgres) Put(ctx context.Context, kind string, payload []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO fallback_store (kind, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (kind) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		kind, payload)
	if err != nil {
		return fmt.Errorf("fallback upsert failed: %w", err)
	}
	p.logger.Debug("payload_stored", "kind", kind, "size_bytes", len(payload))
	return nil
}

// Close closes the database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}
