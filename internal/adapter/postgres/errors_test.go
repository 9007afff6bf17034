package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fliaght/novelmof/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "mof entry", "MOF001"); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := MapError(pgx.ErrNoRows, "mof entry", "MOF001")
	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := "mof entry MOF001: not found"; got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_WrappedNoRows(t *testing.T) {
	t.Parallel()

	got := MapError(fmt.Errorf("scan row: %w", pgx.ErrNoRows), "mof entry", "MOF001")
	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(wrapped ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrAlreadyExists},
		{"23503", domain.ErrNotFound},
		{"23514", domain.ErrValidation},
		{"22P02", domain.ErrValidation},
		{"57014", context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			got := MapError(&pgconn.PgError{Code: tt.code}, "mof entry", "MOF001")
			if !errors.Is(got, tt.want) {
				t.Errorf("MapError(%s) = %v, want wrapping %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMapError_ContextPassesThrough(t *testing.T) {
	t.Parallel()

	got := MapError(context.DeadlineExceeded, "mof entry", "MOF001")
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Errorf("MapError(DeadlineExceeded) = %v, want it to pass through", got)
	}
	if errors.Is(got, domain.ErrNotFound) {
		t.Error("context error must not be mapped to a domain error")
	}
}

func TestMapError_Unknown(t *testing.T) {
	t.Parallel()

	orig := errors.New("connection reset")
	got := MapError(orig, "mof entry", "MOF001")
	if !errors.Is(got, orig) {
		t.Errorf("MapError(unknown) should wrap the original: %v", got)
	}
}
