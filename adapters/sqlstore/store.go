// Package sqlstore persists lab runs and their summary records in PostgreSQL
// or SQLite through sqlx.
package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"simlab/internal/errors"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open connects to the database and applies pending migrations.
// For SQLite the pool is limited to a single connection, which also keeps
// ":memory:" databases alive for the lifetime of the store.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}
	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.DatabaseError("failed to enable foreign keys", err)
		}
	}

	if _, err := NewMigrator(db).Up(ctx); err != nil {
		db.Close()
		return nil, errors.DatabaseError("failed to migrate schema", err)
	}
	return db, nil
}
