package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/patrimonio/internal/common"
)

// DBTX is the subset of database/sql used by SQLStore.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	get    string
	set    string
	delete string
}

var sqliteQueries = queries{
	get: `SELECT value FROM kv WHERE key = ?`,
	set: `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`,
	delete: `DELETE FROM kv WHERE key = ?`,
}

var postgresQueries = queries{
	get: `SELECT value FROM kv WHERE key = $1`,
	set: `
		INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`,
	delete: `DELETE FROM kv WHERE key = $1`,
}

// SQLStore keeps keys in the kv table of a relational database.
type SQLStore struct {
	db DBTX
	// conn is nil for a store bound to an open transaction.
	conn *sql.DB
	q    queries
}

func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, conn: db, q: sqliteQueries}
}

func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, conn: db, q: postgresQueries}
}

func (r *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, r.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get kv[%s]: %w", common.ErrStorage, key, err)
	}
	return value, nil
}

func (r *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.q.set, key, value); err != nil {
		return fmt.Errorf("%w: failed to set kv[%s]: %w", common.ErrStorage, key, err)
	}
	return nil
}

func (r *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.delete, key); err != nil {
		return fmt.Errorf("%w: failed to delete kv[%s]: %w", common.ErrStorage, key, err)
	}
	return nil
}

// InTx runs fn inside a database transaction. A store already bound to a
// transaction runs fn directly.
func (r *SQLStore) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if r.conn == nil {
		return fn(ctx, r)
	}
	return withTx(ctx, r.conn, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, &SQLStore{db: tx, q: r.q})
	})
}

func (r *SQLStore) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// withTx commits on success and rolls back on error or panic.
// Panics are rethrown.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", common.ErrStorage, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("%w: commit: %w", common.ErrStorage, cerr)
		}
	}()

	err = fn(ctx, tx)
	return err
}
