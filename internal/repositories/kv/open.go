package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/patrimonio/internal/migrations"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// DSN is a file path for sqlite and a connection string for postgres.
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

var gooseUpContext = goose.UpContext

var sqlOpen = sql.Open

var newRedisClient = func(opts *redis.Options) redisClient {
	return redis.NewClient(opts)
}

// Open connects to the configured backend and brings SQL schemas up to date.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		db, err := sqlOpen("sqlite", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := Migrate(ctx, db, DriverSQLite); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewSQLiteStore(db), nil

	case DriverPostgres:
		db, err := sqlOpen("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := Migrate(ctx, db, DriverPostgres); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil

	case DriverRedis:
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		c := newRedisClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return NewRedisStore(c, prefix), nil

	case DriverMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}

// Migrate applies the embedded goose migrations for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var dialect, dir string
	switch driver {
	case DriverSQLite:
		dialect, dir = "sqlite3", migrations.SQLiteDir
	case DriverPostgres:
		dialect, dir = "pgx", migrations.PostgresDir
	default:
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}
