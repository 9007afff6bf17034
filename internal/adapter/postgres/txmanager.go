package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxManager runs repository work inside a transaction carried by the
// context. A RunInTx call made while a transaction is already in the
// context joins it instead of opening a second one, so a batch upsert can
// run inside a caller's transaction.
type TxManager struct {
	db Beginner
}

// NewTxManager creates a TxManager that begins transactions on db.
func NewTxManager(db Beginner) *TxManager {
	return &TxManager{db: db}
}

// RunInTx commits when fn returns nil and rolls back on error or panic.
// Joined calls leave commit and rollback to the outermost call.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		// The caller's context may already be done; rollback must still run.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
