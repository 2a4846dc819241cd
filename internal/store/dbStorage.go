// Internal/store/dbStorage.go.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/helpers"
)

// RDB keeps settings in Postgres so several installs can share them.
type RDB struct {
	pool *pgxpool.Pool
}

func NewRDB(ctx context.Context, dsn string) (*RDB, error) {
	cfg, parseErr := pgxpool.ParseConfig(dsn)
	if parseErr != nil {
		middleware.Log.Error().Err(parseErr).Str("dsn", helpers.Classify(dsn)).Msg("Parse DSN error")
		return nil, errors.New("parse DSN error: " + parseErr.Error())
	}

	pool, poolErr := pgxpool.NewWithConfig(ctx, cfg)
	if poolErr != nil {
		middleware.Log.Error().Err(poolErr).Msg("cannot create pgxpool")
		return nil, errors.New("cannot create pgxpool: " + poolErr.Error())
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		middleware.Log.Error().Err(pingErr).Str("dsn", helpers.Classify(dsn)).Msg("failed ping")
		return nil, errors.New("failed ping: " + pingErr.Error())
	}
	middleware.Log.Debug().Str("dsn", helpers.Classify(dsn)).Msg("postgres settings store connected")

	return &RDB{pool: pool}, nil
}

func (r *RDB) Bootstrap(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS recall_settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`

	tx, beginErr := r.pool.Begin(ctx)
	if beginErr != nil {
		middleware.Log.Error().Err(beginErr).Msg("cannot begin tx")
		return errors.New("cannot begin tx: " + beginErr.Error())
	}
	defer func() {
		err := tx.Rollback(ctx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			middleware.Log.Error().Err(err).Msg("cannot rollback")
		}
	}()

	if _, execErr := tx.Exec(ctx, schema); execErr != nil {
		middleware.Log.Error().Err(execErr).Msg("cannot create table")
		return errors.New("cannot create table: " + execErr.Error())
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		middleware.Log.Error().Err(commitErr).Msg("cannot commit tx")
		return errors.New("cannot commit tx: " + commitErr.Error())
	}

	return nil
}

func (r *RDB) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM recall_settings WHERE key = $1`, key).Scan(&value)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
		return "", ErrNotFound
	}
	middleware.Log.Error().Err(err).Str("key", key).Msg("Database query error")
	return "", fmt.Errorf("select setting: %w", err)
}

func (r *RDB) Set(ctx context.Context, key, value string) error {
	sqlUpsert := `
INSERT INTO recall_settings (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, sqlUpsert, key, value); err != nil {
		middleware.Log.Error().Err(err).Str("key", key).Msg("Database upsert error")
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

func (r *RDB) Ping(ctx context.Context) error {
	if pErr := r.pool.Ping(ctx); pErr != nil {
		middleware.Log.Error().Err(pErr).Msg("Failed to ping database")
		return errors.New("ping error")
	}
	return nil
}

func (r *RDB) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

// isUndefinedTable lets reads before Bootstrap behave like an empty store.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UndefinedTable
	}
	return false
}
