// Package migrations embeds the SQL schema for the relational key-value
// backends. Each dialect has its own directory of goose migrations.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Directories inside Migrations, one per dialect.
const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
