package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"successplan/internal/store/core"
)

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestRoundTripAgainstLiveDatabase(t *testing.T) {
	dsn := os.Getenv("SUCCESSPLAN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SUCCESSPLAN_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	key := "success-plan-storage-test"
	if _, err := s.DB().ExecContext(ctx, `DELETE FROM documents WHERE key = $1`, key); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Put(ctx, key, []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil || len(got) == 0 {
		t.Fatalf("get: %s %v", got, err)
	}
}
