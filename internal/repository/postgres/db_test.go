package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"

	"rutaflow/internal/repository"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	other := errors.New("connection reset")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "no rows", in: sql.ErrNoRows, want: repository.ErrNotFound},
		{name: "wrapped no rows", in: fmt.Errorf("scan: %w", sql.ErrNoRows), want: repository.ErrNotFound},
		{name: "unique violation", in: &pq.Error{Code: "23505"}, want: repository.ErrConflict},
		{name: "other pq error", in: &pq.Error{Code: "23503"}, want: nil},
		{name: "passthrough", in: other, want: other},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := mapError(tc.in)
			if tc.want == nil {
				if tc.in == nil && got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				if tc.in != nil && (errors.Is(got, repository.ErrNotFound) || errors.Is(got, repository.ErrConflict)) {
					t.Errorf("expected error to pass through, got %v", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMigrationNamesSorted(t *testing.T) {
	t.Parallel()

	names, err := migrationNames()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) == 0 || names[0] != "0001_init.sql" {
		t.Errorf("expected 0001_init.sql first, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("expected sorted names, got %v", names)
		}
	}
}

func TestNullHelpers(t *testing.T) {
	t.Parallel()

	if nullTime(time.Time{}).Valid || !nullTime(time.Now()).Valid {
		t.Error("unexpected nullTime validity")
	}
	if nullString("").Valid || !nullString("s").Valid {
		t.Error("unexpected nullString validity")
	}
}
