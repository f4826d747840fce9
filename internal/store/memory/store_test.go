package memory

import (
	"context"
	"errors"
	"testing"

	"successplan/internal/store/core"
)

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Get(ctx, "k"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	buf := []byte("v1")
	if err := s.Put(ctx, "k", buf); err != nil {
		t.Fatalf("put: %v", err)
	}
	buf[0] = 'x'
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("get: %q %v", got, err)
	}
	got[0] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "v1" {
		t.Fatalf("stored value aliased caller buffer: %q", again)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("driver %s", s.Driver())
	}
}
