package engine_test

import (
	"testing"
	"time"

	"successplan/internal/domain"
	"successplan/internal/engine"
)

type testEnv struct {
	Engine engine.Engine
	Plan   *domain.SuccessPlan
	clock  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{clock: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	env.Engine = engine.Engine{Now: func() time.Time {
		env.clock = env.clock.Add(time.Second)
		return env.clock
	}}
	env.Plan = &domain.SuccessPlan{
		ID:           "1",
		CustomerName: "Acme Corp",
		Health:       domain.StatusOnTrack,
		LastUpdated:  "2025-08-15",
		Objectives: []domain.Objective{
			{ID: "1", Title: "Launch onboarding", Progress: 90, Status: domain.StatusOnTrack},
			{ID: "2", Title: "Email journey", Progress: 35, Status: domain.StatusOnTrack},
			{ID: "3", Title: "EMEA dashboards", Progress: 78, Status: domain.StatusNeedsAttention},
		},
		CompletedObjectives: []domain.Objective{{ID: "4", Title: "Migrate", Progress: 100, CompletedAt: "2025-08-12"}},
		Stakeholders:        []domain.Stakeholder{{ID: "1", Name: "Evelyn Chen", RACI: domain.RACIResponsible}},
	}
	return env
}

func (env *testEnv) apply(t *testing.T, m engine.Mutation) bool {
	t.Helper()
	before := env.Plan.LastUpdated
	next, changed := env.Engine.Apply(env.Plan, m)
	if next.LastUpdated < before && changed {
		t.Fatalf("%s: lastUpdated went backwards: %s -> %s", m.Op, before, next.LastUpdated)
	}
	env.Plan = next
	assertDisjoint(t, env.Plan)
	return changed
}

func assertDisjoint(t *testing.T, p *domain.SuccessPlan) {
	t.Helper()
	ids := map[string]bool{}
	for _, o := range p.Objectives {
		ids[o.ID] = true
	}
	for _, o := range p.CompletedObjectives {
		if ids[o.ID] {
			t.Fatalf("objective %s is both active and completed", o.ID)
		}
	}
}

func TestCompleteObjectiveScenario(t *testing.T) {
	env := newTestEnv(t)
	progress := 100
	if !env.apply(t, engine.UpdateObjective("1", domain.ObjectivePatch{Progress: &progress})) {
		t.Fatalf("update should apply")
	}
	if !env.apply(t, engine.CompleteObjective("1")) {
		t.Fatalf("complete should apply")
	}
	if env.Plan.FindObjective("1") >= 0 {
		t.Fatalf("objective 1 still active")
	}
	var found *domain.Objective
	for i := range env.Plan.CompletedObjectives {
		if env.Plan.CompletedObjectives[i].ID == "1" {
			found = &env.Plan.CompletedObjectives[i]
		}
	}
	if found == nil {
		t.Fatalf("objective 1 not completed")
	}
	if found.Progress != 100 || found.CompletedAt == "" {
		t.Fatalf("unexpected completed objective %+v", found)
	}
	if found.UpdatedAt != found.CompletedAt {
		t.Fatalf("updatedAt %s != completedAt %s", found.UpdatedAt, found.CompletedAt)
	}
}

func TestCompleteAllObjectivesKeepsDisjoint(t *testing.T) {
	env := newTestEnv(t)
	for _, id := range []string{"2", "3", "1"} {
		if !env.apply(t, engine.CompleteObjective(id)) {
			t.Fatalf("complete %s", id)
		}
		if env.apply(t, engine.CompleteObjective(id)) {
			t.Fatalf("second complete of %s should be a no-op", id)
		}
	}
	if len(env.Plan.Objectives) != 0 || len(env.Plan.CompletedObjectives) != 4 {
		t.Fatalf("active=%d completed=%d", len(env.Plan.Objectives), len(env.Plan.CompletedObjectives))
	}
	if env.Plan.CompletedObjectives[1].ID != "2" || env.Plan.CompletedObjectives[3].ID != "1" {
		t.Fatalf("completion order not preserved")
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	env := newTestEnv(t)
	orig := env.Plan
	next, changed := env.Engine.Apply(orig, engine.CompleteObjective("2"))
	if !changed {
		t.Fatalf("expected change")
	}
	if len(orig.Objectives) != 3 || len(orig.CompletedObjectives) != 1 {
		t.Fatalf("input plan mutated")
	}
	if orig.LastUpdated != "2025-08-15" {
		t.Fatalf("input lastUpdated mutated")
	}
	if len(next.Objectives) != 2 {
		t.Fatalf("next objectives %d", len(next.Objectives))
	}
}

func TestMutationsOnAbsentPlan(t *testing.T) {
	e := engine.New()
	muts := []engine.Mutation{
		engine.PatchPlan(domain.PlanPatch{}),
		engine.SetHealth(domain.StatusAtRisk),
		engine.AddObjective(domain.Objective{ID: "x"}),
		engine.UpdateObjective("x", domain.ObjectivePatch{}),
		engine.DeleteObjective("x"),
		engine.CompleteObjective("x"),
		engine.AddStakeholder(domain.Stakeholder{ID: "x"}),
		engine.DeleteRisk("x"),
		engine.MarkExported(),
	}
	for _, m := range muts {
		next, changed := e.Apply(nil, m)
		if next != nil || changed {
			t.Fatalf("%s on nil plan: got %v %v", m.Op, next, changed)
		}
	}
}

func TestDeleteObjectiveIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	if !env.apply(t, engine.DeleteObjective("2")) {
		t.Fatalf("first delete should apply")
	}
	stamp := env.Plan.LastUpdated
	for i := 0; i < 2; i++ {
		if env.apply(t, engine.DeleteObjective("2")) {
			t.Fatalf("repeated delete should be a no-op")
		}
	}
	if env.Plan.LastUpdated != stamp || len(env.Plan.Objectives) != 2 {
		t.Fatalf("no-op delete changed the plan")
	}
	if env.apply(t, engine.DeleteObjective("4")) {
		t.Fatalf("delete must not reach completed objectives")
	}
}

func TestUpdateObjectiveOnlyTouchesActive(t *testing.T) {
	env := newTestEnv(t)
	title := "renamed"
	if env.apply(t, engine.UpdateObjective("4", domain.ObjectivePatch{Title: &title})) {
		t.Fatalf("completed objective must not be updated")
	}
	if env.apply(t, engine.UpdateObjective("missing", domain.ObjectivePatch{Title: &title})) {
		t.Fatalf("unknown id must be a no-op")
	}
	if !env.apply(t, engine.UpdateObjective("2", domain.ObjectivePatch{Title: &title})) {
		t.Fatalf("update should apply")
	}
	o := env.Plan.Objectives[env.Plan.FindObjective("2")]
	if o.Title != "renamed" || o.UpdatedAt != env.Plan.LastUpdated {
		t.Fatalf("unexpected objective %+v", o)
	}
}

func TestProgressIsClamped(t *testing.T) {
	env := newTestEnv(t)
	over := 250
	env.apply(t, engine.UpdateObjective("2", domain.ObjectivePatch{Progress: &over}))
	if got := env.Plan.Objectives[1].Progress; got != 100 {
		t.Fatalf("progress %d", got)
	}
	env.apply(t, engine.AdvanceObjective("3", 10))
	env.apply(t, engine.AdvanceObjective("3", 10))
	env.apply(t, engine.AdvanceObjective("3", 10))
	if got := env.Plan.Objectives[2].Progress; got != 100 {
		t.Fatalf("advanced progress %d", got)
	}
	env.apply(t, engine.AddObjective(domain.Objective{ID: "9", Progress: -3}))
	if got := env.Plan.Objectives[len(env.Plan.Objectives)-1].Progress; got != 0 {
		t.Fatalf("added progress %d", got)
	}
}

func TestAddObjectiveRefusesUsedIDs(t *testing.T) {
	env := newTestEnv(t)
	if env.apply(t, engine.AddObjective(domain.Objective{ID: "4", Title: "dup of completed"})) {
		t.Fatalf("id of completed objective must be refused")
	}
	if env.apply(t, engine.AddObjective(domain.Objective{ID: "1", Title: "dup of active"})) {
		t.Fatalf("id of active objective must be refused")
	}
	if !env.apply(t, engine.AddObjective(domain.Objective{ID: "5", Title: "new", CompletedAt: "2025-01-01"})) {
		t.Fatalf("new objective should be added")
	}
	if got := env.Plan.Objectives[3]; got.CompletedAt != "" {
		t.Fatalf("active objective carries completedAt %q", got.CompletedAt)
	}
}

func TestStakeholderAndRiskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	if !env.apply(t, engine.AddStakeholder(domain.Stakeholder{ID: "2", Name: "Mark Patel", RACI: domain.RACIAccountable})) {
		t.Fatalf("add stakeholder")
	}
	if env.apply(t, engine.AddStakeholder(domain.Stakeholder{ID: "2"})) {
		t.Fatalf("duplicate stakeholder must be refused")
	}
	role := "Head of Data"
	env.apply(t, engine.UpdateStakeholder("2", domain.StakeholderPatch{Role: &role}))
	if env.Plan.Stakeholders[1].Role != role || env.Plan.Stakeholders[1].Name != "Mark Patel" {
		t.Fatalf("stakeholder %+v", env.Plan.Stakeholders[1])
	}
	env.apply(t, engine.DeleteStakeholder("1"))
	if len(env.Plan.Stakeholders) != 1 {
		t.Fatalf("stakeholders %d", len(env.Plan.Stakeholders))
	}

	risk := domain.Risk{ID: "r1", Title: "Budget freeze", Impact: domain.LevelHigh, Likelihood: domain.LevelLow, CreatedAt: "2025-09-01"}
	if !env.apply(t, engine.AddRisk(risk)) {
		t.Fatalf("add risk")
	}
	mitigation := "Align with CFO"
	env.apply(t, engine.UpdateRisk("r1", domain.RiskPatch{Mitigation: &mitigation}))
	if env.Plan.Risks[0].Mitigation != mitigation || env.Plan.Risks[0].CreatedAt != "2025-09-01" {
		t.Fatalf("risk %+v", env.Plan.Risks[0])
	}
	if !env.apply(t, engine.DeleteRisk("r1")) || env.apply(t, engine.DeleteRisk("r1")) {
		t.Fatalf("risk delete should apply once")
	}
}

func TestPatchPlanStampsAndLeavesExported(t *testing.T) {
	env := newTestEnv(t)
	env.Plan.LastExported = "2025-08-01"
	name := "Acme Retail"
	env.apply(t, engine.PatchPlan(domain.PlanPatch{CustomerName: &name}))
	if env.Plan.CustomerName != name || env.Plan.LastExported != "2025-08-01" {
		t.Fatalf("unexpected plan %+v", env.Plan)
	}
	first := env.Plan.LastUpdated
	if !env.apply(t, engine.PatchPlan(domain.PlanPatch{})) {
		t.Fatalf("empty patch still stamps")
	}
	if !(env.Plan.LastUpdated > first) {
		t.Fatalf("lastUpdated not advanced: %s -> %s", first, env.Plan.LastUpdated)
	}
	env.apply(t, engine.SetHealth(domain.StatusAtRisk))
	if env.Plan.Health != domain.StatusAtRisk {
		t.Fatalf("health %s", env.Plan.Health)
	}
	env.apply(t, engine.MarkExported())
	if env.Plan.LastExported != env.Plan.LastUpdated {
		t.Fatalf("lastExported %s lastUpdated %s", env.Plan.LastExported, env.Plan.LastUpdated)
	}
}

func TestLastUpdatedNeverMovesBackwards(t *testing.T) {
	e := engine.Engine{Now: func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }}
	p := &domain.SuccessPlan{LastUpdated: "2025-08-15T10:00:00.000Z"}
	next, _ := e.Apply(p, engine.SetHealth(domain.StatusOnTrack))
	if next.LastUpdated < p.LastUpdated {
		t.Fatalf("lastUpdated went backwards: %s", next.LastUpdated)
	}
}
