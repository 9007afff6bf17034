// Package migrations embeds the goose migrations of both storage drivers.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Driver names match config.DriverPostgres and config.DriverSQLite.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Provider returns a goose provider for the migrations of driver.
func Provider(driver string, db *sql.DB) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case Postgres:
		dialect = goose.DialectPostgres
	case SQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("migrations: unknown driver %q", driver)
	}

	sub, err := fs.Sub(files, driver)
	if err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider, nil
}

// Up applies every pending migration and returns how many were applied.
func Up(ctx context.Context, driver string, db *sql.DB) (int, error) {
	provider, err := Provider(driver, db)
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}
