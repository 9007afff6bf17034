package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestRunInTx_Commit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM mof_entries`).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	tm := NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := QuerierFromCtx(ctx, mock)
		_, err := q.Exec(ctx, `DELETE FROM mof_entries`)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("store failed")
	tm := NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("RunInTx error = %v, want %v", err, sentinel)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tm := NewTxManager(mock)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		panic("boom")
	})
}

func TestRunInTx_BeginError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	tm := NewTxManager(mock)
	called := false
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error from Begin")
	}
	if called {
		t.Error("fn must not run when Begin fails")
	}
}

func TestQuerierFromCtx_NoTx(t *testing.T) {
	mock := newMock(t)
	if got := QuerierFromCtx(context.Background(), mock); got != mock {
		t.Error("QuerierFromCtx without tx should return the fallback")
	}
}

func TestRunInTx_JoinsOuterTransaction(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM mof_entries`).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	tm := NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(outer context.Context) error {
		return tm.RunInTx(outer, func(inner context.Context) error {
			if QuerierFromCtx(inner, mock) != QuerierFromCtx(outer, mock) {
				t.Error("inner call should reuse the outer transaction")
			}
			_, err := QuerierFromCtx(inner, mock).Exec(inner, `DELETE FROM mof_entries`)
			return err
		})
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_RollbackErrorJoined(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

	sentinel := errors.New("store failed")
	tm := NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("RunInTx error = %v, want it to wrap %v", err, sentinel)
	}
	if err == sentinel {
		t.Error("rollback failure should be reported alongside the original error")
	}
}
