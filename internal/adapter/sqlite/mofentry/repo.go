// Package mofentry implements the MOF entry repository on SQLite.
package mofentry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/fliaght/novelmof/internal/adapter/query"
	"github.com/fliaght/novelmof/internal/domain"
)

// Repo provides MOF entry persistence and search backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Ping checks that the database file is usable.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Upsert stores e, replacing any entry with the same ID.
func (r *Repo) Upsert(ctx context.Context, e domain.MOFEntry) error {
	return upsert(ctx, r.db, e)
}

// UpsertAll stores entries in a single transaction.
func (r *Repo) UpsertAll(ctx context.Context, entries []domain.MOFEntry) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, e := range entries {
		if err := upsert(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, e domain.MOFEntry) error {
	row, err := query.FromEntry(e)
	if err != nil {
		return err
	}
	stmt, args, err := query.Upsert(query.SQLite, row)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("mof entry %s: %w", e.ID, err)
	}
	return nil
}

// GetByIdentifier returns the entry with the given record identifier.
func (r *Repo) GetByIdentifier(ctx context.Context, identifier string) (*domain.MOFEntry, error) {
	stmt, args, err := query.GetByIdentifier(query.SQLite, identifier)
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	var row query.Row
	if err := sqlscan.Get(ctx, r.db, &row, stmt, args...); err != nil {
		return nil, mapError(err, identifier)
	}
	return row.Entry()
}

// Search returns one page of entries matching f and the total match count.
func (r *Repo) Search(ctx context.Context, f domain.Filter) ([]domain.MOFEntry, int64, error) {
	countStmt, countArgs, err := query.Count(query.SQLite, f)
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "search")
	}

	stmt, args, err := query.Search(query.SQLite, f)
	if err != nil {
		return nil, 0, fmt.Errorf("build search: %w", err)
	}
	var rows []query.Row
	if err := sqlscan.Select(ctx, r.db, &rows, stmt, args...); err != nil {
		return nil, 0, mapError(err, "search")
	}

	entries := make([]domain.MOFEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.Entry()
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *e)
	}
	return entries, total, nil
}

// Terms counts entries per value of facet among entries matching f.
func (r *Repo) Terms(ctx context.Context, facet domain.Facet, f domain.Filter, limit int) ([]domain.TermCount, error) {
	stmt, args, err := query.Terms(query.SQLite, facet, f, limit)
	if err != nil {
		return nil, err
	}

	var out []domain.TermCount
	if err := sqlscan.Select(ctx, r.db, &out, stmt, args...); err != nil {
		return nil, mapError(err, string(facet))
	}
	return out, nil
}

// Histogram buckets the values of field among entries matching f.
func (r *Repo) Histogram(ctx context.Context, field domain.NumericField, f domain.Filter, bins int) ([]domain.HistogramBin, error) {
	stmt, args, err := query.NumericValues(query.SQLite, field, f)
	if err != nil {
		return nil, err
	}

	var values []float64
	if err := sqlscan.Select(ctx, r.db, &values, stmt, args...); err != nil {
		return nil, mapError(err, string(field))
	}
	return domain.BuildHistogram(values, bins), nil
}

func mapError(err error, key string) error {
	if errors.Is(err, sql.ErrNoRows) || sqlscan.NotFound(err) {
		return fmt.Errorf("mof entry %s: %w", key, domain.ErrNotFound)
	}
	return fmt.Errorf("mof entry %s: %w", key, err)
}
