package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS models (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL UNIQUE,
	schema_name TEXT NOT NULL DEFAULT '',
	element_count INTEGER NOT NULL DEFAULT 0,
	document TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS query_log (
	id TEXT PRIMARY KEY,
	model_id TEXT NOT NULL REFERENCES models(id),
	session_id TEXT NOT NULL DEFAULT '',
	question TEXT NOT NULL,
	intent TEXT NOT NULL,
	value REAL,
	unit TEXT NOT NULL DEFAULT '',
	confidence TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_log_model ON query_log(model_id, created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS models (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL UNIQUE,
	schema_name TEXT NOT NULL DEFAULT '',
	element_count INTEGER NOT NULL DEFAULT 0,
	document TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS query_log (
	id UUID PRIMARY KEY,
	model_id UUID NOT NULL REFERENCES models(id),
	session_id TEXT NOT NULL DEFAULT '',
	question TEXT NOT NULL,
	intent TEXT NOT NULL,
	value DOUBLE PRECISION,
	unit TEXT NOT NULL DEFAULT '',
	confidence TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_log_model ON query_log(model_id, created_at);
`

// Store bundles the database handle with its repositories.
type Store struct {
	DB      *sql.DB
	Models  *ModelRepository
	Queries *QueryLogRepository
}

// Open connects to the configured database and creates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	var driver, dsn, schema string
	switch cfg.Driver {
	case "sqlite":
		driver, dsn, schema = "sqlite3", cfg.SQLite.Path, sqliteSchema
	case "postgres":
		driver, dsn, schema = "postgres", cfg.Postgres.DSN, postgresSchema
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	switch cfg.Driver {
	case "sqlite":
		if cfg.SQLite.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.SQLite.MaxOpenConns)
		}
	case "postgres":
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.Driver == "sqlite" && cfg.SQLite.JournalMode != "" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode="+cfg.SQLite.JournalMode); err != nil {
			db.Close()
			return nil, fmt.Errorf("set journal mode: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{
		DB:      db,
		Models:  NewModelRepository(db),
		Queries: NewQueryLogRepository(db),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
