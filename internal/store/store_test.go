package store

import (
	"context"
	"errors"
	"testing"

	"successplan/internal/config"
	"successplan/internal/domain"
	"successplan/internal/store/core"
	"successplan/internal/store/memory"
)

func seed() domain.SuccessPlan {
	return domain.SuccessPlan{ID: "1", CustomerName: "Acme Corp", Health: domain.StatusOnTrack}
}

type failingBackend struct{ *memory.Store }

func (failingBackend) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestLoadOrSeedColdStart(t *testing.T) {
	ctx := context.Background()
	g := Gateway{Backend: memory.New(), Seed: seed}
	if _, err := g.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	plan, seeded, err := g.LoadOrSeed(ctx)
	if err != nil || !seeded || plan.CustomerName != "Acme Corp" {
		t.Fatalf("cold start: %+v %v %v", plan, seeded, err)
	}
	plan, seeded, err = g.LoadOrSeed(ctx)
	if err != nil || seeded || plan == nil {
		t.Fatalf("warm start: %+v %v %v", plan, seeded, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := Gateway{Backend: memory.New(), Seed: seed}
	p := seed()
	p.Objectives = []domain.Objective{{ID: "1", Title: "Onboarding", Progress: 40, KPIs: []domain.KPI{{ID: "k", Name: "Activation", Value: "+1%"}}}}
	if err := g.Save(ctx, &p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Objectives[0].KPIs[0].Value != "+1%" || got.Objectives[0].Progress != 40 {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestAbsentPlanIsPersisted(t *testing.T) {
	ctx := context.Background()
	g := Gateway{Backend: memory.New(), Seed: seed}
	if err := g.Save(ctx, nil); err != nil {
		t.Fatalf("save nil: %v", err)
	}
	plan, seeded, err := g.LoadOrSeed(ctx)
	if err != nil || seeded || plan != nil {
		t.Fatalf("stored absent plan should stay absent: %+v %v %v", plan, seeded, err)
	}
}

func TestSaveFailureIsSurfaced(t *testing.T) {
	g := Gateway{Backend: failingBackend{memory.New()}, Seed: seed}
	p := seed()
	if err := g.Save(context.Background(), &p); err == nil {
		t.Fatalf("expected save error")
	}
	if _, _, err := g.LoadOrSeed(context.Background()); err == nil {
		t.Fatalf("seed persistence failure should surface")
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, config.Storage{Driver: "memory"})
	if err != nil || b.Driver() != core.DriverMemory {
		t.Fatalf("memory: %v %v", b, err)
	}
	b, err = Open(ctx, config.Storage{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer b.Close()
	if b.Driver() != core.DriverSQLite {
		t.Fatalf("driver %s", b.Driver())
	}
	if _, err := Open(ctx, config.Storage{Driver: "mongo"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
