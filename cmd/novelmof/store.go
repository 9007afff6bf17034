package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/fliaght/novelmof/internal/adapter/postgres"
	pgentry "github.com/fliaght/novelmof/internal/adapter/postgres/mofentry"
	"github.com/fliaght/novelmof/internal/adapter/sqlite"
	liteentry "github.com/fliaght/novelmof/internal/adapter/sqlite/mofentry"
	"github.com/fliaght/novelmof/internal/config"
	"github.com/fliaght/novelmof/internal/domain"
	"github.com/fliaght/novelmof/internal/ingest"
	"github.com/fliaght/novelmof/migrations"
)

// store is the repository surface the commands use.
type store interface {
	ingest.Store
	Ping(ctx context.Context) error
	GetByIdentifier(ctx context.Context, identifier string) (*domain.MOFEntry, error)
	Search(ctx context.Context, f domain.Filter) ([]domain.MOFEntry, int64, error)
	Terms(ctx context.Context, facet domain.Facet, f domain.Filter, limit int) ([]domain.TermCount, error)
	Histogram(ctx context.Context, field domain.NumericField, f domain.Filter, bins int) ([]domain.HistogramBin, error)
}

// Compile-time interface assertions.
var (
	_ store = (*pgentry.Repo)(nil)
	_ store = (*liteentry.Repo)(nil)
)

// openStore connects to the configured driver. The SQLite schema is
// migrated on open; PostgreSQL requires an explicit migrate run.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return pgentry.New(pool), pool.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if n, err := migrations.Up(ctx, migrations.SQLite, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		} else if n > 0 {
			log.Info("applied migrations", slog.Int("count", n), slog.String("path", cfg.Storage.SQLitePath))
		}
		return liteentry.New(db), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// openSQL returns a database/sql handle for goose and the migration set
// matching the driver.
func openSQL(ctx context.Context, cfg *config.Config) (*sql.DB, string, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, "", nil, fmt.Errorf("connect to database: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		return db, migrations.Postgres, func() { _ = db.Close(); pool.Close() }, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, "", nil, err
		}
		return db, migrations.SQLite, func() { _ = db.Close() }, nil

	default:
		return nil, "", nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
