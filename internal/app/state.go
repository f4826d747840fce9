package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"successplan/internal/codec"
	"successplan/internal/domain"
	"successplan/internal/engine"
	"successplan/internal/logger"
	"successplan/internal/metrics"
	"successplan/internal/report"
	"successplan/internal/store"
	"successplan/internal/viewmode"
)

var (
	// ErrNoPlan is returned when an operation needs a resident plan and there
	// is none.
	ErrNoPlan = errors.New("no success plan loaded")
	// ErrNotFound is returned for an unknown objective, stakeholder or risk id.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an add reuses an existing id.
	ErrConflict = errors.New("already exists")
	// ErrInvalid is returned for values outside their enum or range.
	ErrInvalid = errors.New("invalid value")
)

type Options struct {
	Gateway store.Gateway
	Gate    *viewmode.Gate
	Log     *logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// State owns the single resident plan. Every change runs engine, then store,
// under one lock; a failed save leaves the resident plan untouched.
type State struct {
	mu      sync.Mutex
	plan    *domain.SuccessPlan
	gw      store.Gateway
	eng     engine.Engine
	gate    *viewmode.Gate
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Open loads the persisted plan, seeding storage on first run.
func Open(ctx context.Context, opts Options) (*State, error) {
	s := newState(opts)
	plan, seeded, err := s.gw.LoadOrSeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	s.plan = plan
	if seeded {
		s.log.Info("seeded success plan", "driver", s.gw.Driver())
	}
	return s, nil
}

func newState(opts Options) *State {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Gate == nil {
		opts.Gate = &viewmode.Gate{}
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Gateway.Seed == nil {
		opts.Gateway.Seed = Seed
	}
	return &State{
		gw:      opts.Gateway,
		eng:     engine.Engine{Now: now},
		gate:    opts.Gate,
		log:     opts.Log.With("component", "state"),
		metrics: opts.Metrics,
		now:     now,
	}
}

func (s *State) Gate() *viewmode.Gate { return s.gate }

// Close releases the storage backend.
func (s *State) Close() error { return s.gw.Close() }

// Plan returns a copy of the resident plan, or nil.
func (s *State) Plan() *domain.SuccessPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePtr(s.plan)
}

// NewID returns a fresh entity id.
func (s *State) NewID() string { return uuid.NewString() }

func (s *State) writable(ctx context.Context) error {
	if s.gate.External() || viewmode.IsReadOnly(ctx) {
		return viewmode.ErrReadOnly
	}
	return nil
}

// Apply runs m against the resident plan and persists the result. It
// reports whether the plan changed; a missing plan or a mutation that
// matches nothing is a silent no-op.
func (s *State) Apply(ctx context.Context, m engine.Mutation) (*domain.SuccessPlan, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, m, nil)
}

// applyLocked runs check against the resident plan before the mutation so
// that callers can turn engine no-ops into typed errors.
func (s *State) applyLocked(ctx context.Context, m engine.Mutation, check func(p *domain.SuccessPlan) error) (*domain.SuccessPlan, bool, error) {
	if err := s.writable(ctx); err != nil {
		s.metrics.Mutation(m.Op, "rejected")
		return nil, false, err
	}
	if check != nil {
		if s.plan == nil {
			return nil, false, ErrNoPlan
		}
		if err := check(s.plan); err != nil {
			s.metrics.Mutation(m.Op, "rejected")
			return nil, false, err
		}
	}
	next, changed := s.eng.Apply(s.plan, m)
	if !changed {
		s.metrics.Mutation(m.Op, "noop")
		return clonePtr(s.plan), false, nil
	}
	if err := s.saveLocked(ctx, next); err != nil {
		s.metrics.Mutation(m.Op, "failed")
		return nil, false, err
	}
	s.plan = next
	s.metrics.Mutation(m.Op, "applied")
	s.log.Debug("mutation applied", "op", m.Op, "lastUpdated", next.LastUpdated)
	return clonePtr(next), true, nil
}

func (s *State) saveLocked(ctx context.Context, p *domain.SuccessPlan) error {
	start := time.Now()
	err := s.gw.Save(ctx, p)
	driver := string(s.gw.Driver())
	s.metrics.Save(driver, time.Since(start), err)
	if err != nil {
		s.log.Error("persist plan failed", "driver", driver, "error", err)
	}
	return err
}

// Replace installs plan wholesale.
func (s *State) Replace(ctx context.Context, plan domain.SuccessPlan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(ctx); err != nil {
		return err
	}
	next := plan.Clone()
	if err := s.saveLocked(ctx, &next); err != nil {
		return err
	}
	s.plan = &next
	return nil
}

// Import replaces the resident plan with the one carried by data and stamps
// lastUpdated. On error the resident plan is unchanged.
func (s *State) Import(ctx context.Context, data []byte, f codec.Format) (domain.SuccessPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(ctx); err != nil {
		return domain.SuccessPlan{}, err
	}
	plan, err := codec.Import(data, f)
	if err != nil {
		s.metrics.Import(importResult(err))
		s.log.Warn("import rejected", "error", err)
		return domain.SuccessPlan{}, err
	}
	plan.LastUpdated = domain.FormatTimestamp(s.now())
	if err := s.saveLocked(ctx, &plan); err != nil {
		s.metrics.Import("failed")
		return domain.SuccessPlan{}, err
	}
	s.plan = &plan
	s.metrics.Import("ok")
	s.log.Info("plan imported", "customer", plan.CustomerName)
	return plan.Clone(), nil
}

func importResult(err error) string {
	switch {
	case errors.Is(err, codec.ErrParse):
		return "parse_error"
	case errors.Is(err, codec.ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return "unsupported_version"
	}
	return "failed"
}

// Export encodes the resident plan and returns it with its download filename.
func (s *State) Export(f codec.Format) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := s.now()
	data, err := codec.Export(s.plan, at, f)
	if err != nil {
		return nil, "", err
	}
	return data, codec.Filename(s.plan, at, f), nil
}

// Reset persists and installs the seed plan.
func (s *State) Reset(ctx context.Context) (domain.SuccessPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(ctx); err != nil {
		return domain.SuccessPlan{}, err
	}
	seed, err := s.gw.Reset(ctx)
	if err != nil {
		return domain.SuccessPlan{}, err
	}
	s.plan = &seed
	s.log.Info("plan reset to seed")
	return seed.Clone(), nil
}

// Reload discards the resident copy and reads the stored document again.
func (s *State) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, err := s.gw.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		s.plan = nil
		return nil
	}
	if err != nil {
		return err
	}
	s.plan = plan
	return nil
}

// Report selects report content for the resident plan.
func (s *State) Report(cfg domain.ReportConfig) ([]report.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil, ErrNoPlan
	}
	return report.SelectContent(s.plan, cfg, s.now()), nil
}

// MarkExported records a finished report export.
func (s *State) MarkExported(ctx context.Context, preset domain.Preset) (domain.SuccessPlan, error) {
	p, err := s.mutate(ctx, engine.MarkExported(), nil)
	if err != nil {
		return domain.SuccessPlan{}, err
	}
	s.metrics.ReportExport(string(preset))
	return *p, nil
}

func (s *State) mutate(ctx context.Context, m engine.Mutation, check func(p *domain.SuccessPlan) error) (*domain.SuccessPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		if err := s.writable(ctx); err != nil {
			return nil, err
		}
		return nil, ErrNoPlan
	}
	p, _, err := s.applyLocked(ctx, m, check)
	return p, err
}

func (s *State) PatchPlan(ctx context.Context, patch domain.PlanPatch) (domain.SuccessPlan, error) {
	p, err := s.mutate(ctx, engine.PatchPlan(patch), func(*domain.SuccessPlan) error {
		if patch.Health != nil && !patch.Health.Valid() {
			return fmt.Errorf("%w: health %q", ErrInvalid, *patch.Health)
		}
		return nil
	})
	if err != nil {
		return domain.SuccessPlan{}, err
	}
	return *p, nil
}

func (s *State) SetHealth(ctx context.Context, status domain.Status) (domain.SuccessPlan, error) {
	p, err := s.mutate(ctx, engine.SetHealth(status), func(*domain.SuccessPlan) error {
		if !status.Valid() {
			return fmt.Errorf("%w: health %q", ErrInvalid, status)
		}
		return nil
	})
	if err != nil {
		return domain.SuccessPlan{}, err
	}
	return *p, nil
}

// Objectives returns the active objectives matching f.
func (s *State) Objectives(f domain.ObjectiveFilter) ([]domain.Objective, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil, ErrNoPlan
	}
	return domain.FilterObjectives(s.plan.Objectives, f), nil
}

// AddObjective fills in id, timestamps and status when empty, then appends o.
func (s *State) AddObjective(ctx context.Context, o domain.Objective) (domain.Objective, error) {
	if strings.TrimSpace(o.ID) == "" {
		o.ID = s.NewID()
	}
	if o.Status == "" {
		o.Status = domain.StatusOnTrack
	}
	if o.KPIs == nil {
		o.KPIs = []domain.KPI{}
	}
	if o.CreatedAt == "" {
		o.CreatedAt = domain.FormatTimestamp(s.now())
	}
	if o.UpdatedAt == "" {
		o.UpdatedAt = o.CreatedAt
	}
	p, err := s.mutate(ctx, engine.AddObjective(o), func(p *domain.SuccessPlan) error {
		if !o.Status.Valid() {
			return fmt.Errorf("%w: status %q", ErrInvalid, o.Status)
		}
		if p.HasObjective(o.ID) {
			return fmt.Errorf("objective %s: %w", o.ID, ErrConflict)
		}
		return nil
	})
	if err != nil {
		return domain.Objective{}, err
	}
	return p.Objectives[p.FindObjective(o.ID)], nil
}

func (s *State) UpdateObjective(ctx context.Context, id string, patch domain.ObjectivePatch) (domain.Objective, error) {
	p, err := s.mutate(ctx, engine.UpdateObjective(id, patch), func(p *domain.SuccessPlan) error {
		if patch.Status != nil && !patch.Status.Valid() {
			return fmt.Errorf("%w: status %q", ErrInvalid, *patch.Status)
		}
		return activeObjective(p, id)
	})
	if err != nil {
		return domain.Objective{}, err
	}
	return p.Objectives[p.FindObjective(id)], nil
}

func (s *State) AdvanceObjective(ctx context.Context, id string, step int) (domain.Objective, error) {
	p, err := s.mutate(ctx, engine.AdvanceObjective(id, step), func(p *domain.SuccessPlan) error {
		return activeObjective(p, id)
	})
	if err != nil {
		return domain.Objective{}, err
	}
	return p.Objectives[p.FindObjective(id)], nil
}

// CompleteObjective moves an active objective to the completed list and
// returns it.
func (s *State) CompleteObjective(ctx context.Context, id string) (domain.Objective, error) {
	p, err := s.mutate(ctx, engine.CompleteObjective(id), func(p *domain.SuccessPlan) error {
		return activeObjective(p, id)
	})
	if err != nil {
		return domain.Objective{}, err
	}
	return p.CompletedObjectives[len(p.CompletedObjectives)-1], nil
}

// DeleteObjective removes an active objective. Unknown ids are not an error.
func (s *State) DeleteObjective(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, engine.DeleteObjective(id), nil)
	return err
}

func activeObjective(p *domain.SuccessPlan, id string) error {
	if p.FindObjective(id) < 0 {
		return fmt.Errorf("objective %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *State) AddStakeholder(ctx context.Context, sh domain.Stakeholder) (domain.Stakeholder, error) {
	if strings.TrimSpace(sh.ID) == "" {
		sh.ID = s.NewID()
	}
	if sh.Initials == "" {
		sh.Initials = Initials(sh.Name)
	}
	p, err := s.mutate(ctx, engine.AddStakeholder(sh), func(p *domain.SuccessPlan) error {
		if sh.RACI != "" && !sh.RACI.Valid() {
			return fmt.Errorf("%w: raci %q", ErrInvalid, sh.RACI)
		}
		if stakeholderIndex(p, sh.ID) >= 0 {
			return fmt.Errorf("stakeholder %s: %w", sh.ID, ErrConflict)
		}
		return nil
	})
	if err != nil {
		return domain.Stakeholder{}, err
	}
	return p.Stakeholders[stakeholderIndex(p, sh.ID)], nil
}

func (s *State) UpdateStakeholder(ctx context.Context, id string, patch domain.StakeholderPatch) (domain.Stakeholder, error) {
	p, err := s.mutate(ctx, engine.UpdateStakeholder(id, patch), func(p *domain.SuccessPlan) error {
		if patch.RACI != nil && !patch.RACI.Valid() {
			return fmt.Errorf("%w: raci %q", ErrInvalid, *patch.RACI)
		}
		if stakeholderIndex(p, id) < 0 {
			return fmt.Errorf("stakeholder %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return domain.Stakeholder{}, err
	}
	return p.Stakeholders[stakeholderIndex(p, id)], nil
}

func (s *State) DeleteStakeholder(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, engine.DeleteStakeholder(id), nil)
	return err
}

func (s *State) AddRisk(ctx context.Context, r domain.Risk) (domain.Risk, error) {
	if strings.TrimSpace(r.ID) == "" {
		r.ID = s.NewID()
	}
	if r.CreatedAt == "" {
		r.CreatedAt = domain.FormatTimestamp(s.now())
	}
	p, err := s.mutate(ctx, engine.AddRisk(r), func(p *domain.SuccessPlan) error {
		if !r.Impact.Valid() || !r.Likelihood.Valid() {
			return fmt.Errorf("%w: impact %q likelihood %q", ErrInvalid, r.Impact, r.Likelihood)
		}
		if riskIndex(p, r.ID) >= 0 {
			return fmt.Errorf("risk %s: %w", r.ID, ErrConflict)
		}
		return nil
	})
	if err != nil {
		return domain.Risk{}, err
	}
	return p.Risks[riskIndex(p, r.ID)], nil
}

func (s *State) UpdateRisk(ctx context.Context, id string, patch domain.RiskPatch) (domain.Risk, error) {
	p, err := s.mutate(ctx, engine.UpdateRisk(id, patch), func(p *domain.SuccessPlan) error {
		if (patch.Impact != nil && !patch.Impact.Valid()) || (patch.Likelihood != nil && !patch.Likelihood.Valid()) {
			return fmt.Errorf("%w: impact or likelihood", ErrInvalid)
		}
		if riskIndex(p, id) < 0 {
			return fmt.Errorf("risk %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return domain.Risk{}, err
	}
	return p.Risks[riskIndex(p, id)], nil
}

func (s *State) DeleteRisk(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, engine.DeleteRisk(id), nil)
	return err
}

func stakeholderIndex(p *domain.SuccessPlan, id string) int {
	for i, sh := range p.Stakeholders {
		if sh.ID == id {
			return i
		}
	}
	return -1
}

func riskIndex(p *domain.SuccessPlan, id string) int {
	for i, r := range p.Risks {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Initials derives up to two initials from a display name.
func Initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(f))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

func clonePtr(p *domain.SuccessPlan) *domain.SuccessPlan {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}
