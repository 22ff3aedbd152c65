package kv

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres is a Backend on the kv_store table created by the database
// migrations.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres backend on an open, migrated database.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Get reads a key. A missing row is reported with ok=false.
func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return val, true, nil
}

// Set upserts a key.
func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}
