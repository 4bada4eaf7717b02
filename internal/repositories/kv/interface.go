// Package kv provides the key-value persistence used by the account store.
// Backends: SQLite (default, local), Postgres, Redis and an in-memory map.
package kv

import (
	"context"
)

// Store is a flat byte-valued key-value store.
// Get returns (nil, nil) when the key is absent. Delete is idempotent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Transactor runs fn against a Store whose writes commit together.
// fn returning an error discards every write made through it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// Backend is an opened store ready for use by the application.
type Backend interface {
	Store
	Transactor
	Close() error
}
