// Package store persists the resident plan as one whole-document value under
// a fixed key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"successplan/internal/domain"
	"successplan/internal/store/core"
)

// Key is the single storage key holding the plan document.
const Key = "success-plan-storage"

// payloadVersion is the persisted envelope version, separate from the
// import/export file version.
const payloadVersion = 0

type Backend = core.Backend

var ErrNotFound = core.ErrNotFound

type persisted struct {
	State struct {
		SuccessPlan *domain.SuccessPlan `json:"successPlan"`
	} `json:"state"`
	Version int `json:"version"`
}

// Gateway reads and writes the plan document through a Backend. Seed
// supplies the document used on a cold start and on reset.
type Gateway struct {
	Backend Backend
	Seed    func() domain.SuccessPlan
}

// Load returns the persisted plan. It returns ErrNotFound when nothing was
// ever stored and a nil plan when an absent plan was stored.
func (g Gateway) Load(ctx context.Context) (*domain.SuccessPlan, error) {
	raw, err := g.Backend.Get(ctx, Key)
	if err != nil {
		return nil, err
	}
	var doc persisted
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Key, err)
	}
	return doc.State.SuccessPlan, nil
}

// LoadOrSeed loads the plan, persisting the seed on a cold start. seeded
// reports whether the seed was used.
func (g Gateway) LoadOrSeed(ctx context.Context) (plan *domain.SuccessPlan, seeded bool, err error) {
	plan, err = g.Load(ctx)
	if err == nil {
		return plan, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	seed, err := g.Reset(ctx)
	if err != nil {
		return nil, false, err
	}
	return &seed, true, nil
}

// Save writes plan, or an absent plan when plan is nil.
func (g Gateway) Save(ctx context.Context, plan *domain.SuccessPlan) error {
	var doc persisted
	doc.State.SuccessPlan = plan
	doc.Version = payloadVersion
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key, err)
	}
	if err := g.Backend.Put(ctx, Key, raw); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// Reset persists and returns the seed document.
func (g Gateway) Reset(ctx context.Context) (domain.SuccessPlan, error) {
	if g.Seed == nil {
		return domain.SuccessPlan{}, fmt.Errorf("no seed configured")
	}
	seed := g.Seed()
	if err := g.Save(ctx, &seed); err != nil {
		return domain.SuccessPlan{}, err
	}
	return seed, nil
}

func (g Gateway) Driver() core.Driver { return g.Backend.Driver() }

func (g Gateway) Close() error { return g.Backend.Close() }
