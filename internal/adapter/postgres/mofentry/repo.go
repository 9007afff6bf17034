// Package mofentry implements the MOF entry repository using PostgreSQL.
package mofentry

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/fliaght/novelmof/internal/adapter/postgres"
	"github.com/fliaght/novelmof/internal/adapter/query"
	"github.com/fliaght/novelmof/internal/domain"
)

const entity = "mof entry"

// Repo provides MOF entry persistence and search backed by PostgreSQL.
type Repo struct {
	db postgres.DB
	tx *postgres.TxManager
}

// New creates a new repository. db is usually a *pgxpool.Pool.
func New(db postgres.DB) *Repo {
	return &Repo{db: db, tx: postgres.NewTxManager(db)}
}

// Ping runs a trivial statement on the pool.
func (r *Repo) Ping(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `SELECT 1`); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Upsert stores e, replacing any entry with the same ID.
func (r *Repo) Upsert(ctx context.Context, e domain.MOFEntry) error {
	row, err := query.FromEntry(e)
	if err != nil {
		return err
	}
	sql, args, err := query.Upsert(query.Postgres, row)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, entity, e.ID.String())
	}
	return nil
}

// UpsertAll stores entries in a single transaction.
func (r *Repo) UpsertAll(ctx context.Context, entries []domain.MOFEntry) error {
	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, e := range entries {
			if err := r.Upsert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByIdentifier returns the entry with the given record identifier.
func (r *Repo) GetByIdentifier(ctx context.Context, identifier string) (*domain.MOFEntry, error) {
	sql, args, err := query.GetByIdentifier(query.Postgres, identifier)
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	var row query.Row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, identifier)
	}
	return row.Entry()
}

// Search returns one page of entries matching f and the total match count.
func (r *Repo) Search(ctx context.Context, f domain.Filter) ([]domain.MOFEntry, int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	countSQL, countArgs, err := query.Count(query.Postgres, f)
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, entity, "search")
	}

	sql, args, err := query.Search(query.Postgres, f)
	if err != nil {
		return nil, 0, fmt.Errorf("build search: %w", err)
	}
	var rows []query.Row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, 0, postgres.MapError(err, entity, "search")
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
	sql, args, err := query.Terms(query.Postgres, facet, f, limit)
	if err != nil {
		return nil, err
	}

	var out []domain.TermCount
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, string(facet))
	}
	return out, nil
}

// Histogram buckets the values of field among entries matching f.
func (r *Repo) Histogram(ctx context.Context, field domain.NumericField, f domain.Filter, bins int) ([]domain.HistogramBin, error) {
	sql, args, err := query.NumericValues(query.Postgres, field, f)
	if err != nil {
		return nil, err
	}

	var values []float64
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &values, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, string(field))
	}
	return domain.BuildHistogram(values, bins), nil
}
