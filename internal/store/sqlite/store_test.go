package sqlite

import (
	"context"
	"errors"
	"testing"

	"successplan/internal/store/core"
)

func TestPutGetSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	ws := t.TempDir()
	s, err := Open(ctx, ws)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Get(ctx, "success-plan-storage"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Put(ctx, "success-plan-storage", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "success-plan-storage", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(ctx, ws)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "success-plan-storage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Fatalf("payload %s", got)
	}
}
