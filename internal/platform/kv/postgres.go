// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a [Store] backend keeping one JSONB row per collection key in
// the phishguard.collection table (schema managed by golang-migrate, see
// data/migrations).
//
// Each Put is a single-row upsert, so individual collection writes are
// atomic even though the overall model stays whole-collection
// read-modify-write.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-connected pool (see platform/postgres.NewPool).
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Get implements [Store].
func (p *Postgres) Get(ctx context.Context, key string, target any) (bool, error) {
	const query = `SELECT doc FROM phishguard.collection WHERE key = $1`

	var raw []byte
	err := p.pool.QueryRow(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("kv: postgres read of %q failed: %w", key, err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("kv: postgres decode of %q failed: %w", key, err)
	}

	return true, nil
}

// Put implements [Store].
func (p *Postgres) Put(ctx context.Context, key string, value any) error {
	const query = `
		INSERT INTO phishguard.collection (key, doc, updatedat)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updatedat = EXCLUDED.updatedat`

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: postgres encode of %q failed: %w", key, err)
	}

	if _, err := p.pool.Exec(ctx, query, key, raw, time.Now()); err != nil {
		return fmt.Errorf("kv: postgres write of %q failed: %w", key, err)
	}

	return nil
}

// Delete implements [Store].
func (p *Postgres) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM phishguard.collection WHERE key = $1`

	if _, err := p.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("kv: postgres delete of %q failed: %w", key, err)
	}

	return nil
}
