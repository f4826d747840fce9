package engine

import (
	"time"

	"successplan/internal/domain"
)

// Engine applies mutations to a plan snapshot. It performs no I/O; the caller
// decides what to do with the returned plan.
type Engine struct {
	Now func() time.Time
}

func New() Engine {
	return Engine{Now: time.Now}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Mutation is one entity-lifecycle transition. The apply func edits a private
// copy of the plan and reports whether it changed anything.
type Mutation struct {
	Op    string
	apply func(p *domain.SuccessPlan, now string) bool
}

// Apply runs m against a copy of plan and returns the new plan and whether it
// changed. A nil plan is left nil. The input is never modified.
func (e Engine) Apply(plan *domain.SuccessPlan, m Mutation) (*domain.SuccessPlan, bool) {
	if plan == nil || m.apply == nil {
		return plan, false
	}
	next := plan.Clone()
	now := e.stamp(plan.LastUpdated)
	if !m.apply(&next, now) {
		return plan, false
	}
	next.LastUpdated = now
	return &next, true
}

// stamp returns the current timestamp, never earlier than prev.
func (e Engine) stamp(prev string) string {
	now := e.now()
	if prev != "" {
		if pt, err := domain.ParseTime(prev); err == nil && now.Before(pt) {
			now = pt
		}
	}
	return domain.FormatTimestamp(now)
}

// PatchPlan merges plan-level fields. It always counts as a change so that
// lastUpdated is stamped even for an empty patch.
func PatchPlan(patch domain.PlanPatch) Mutation {
	return Mutation{Op: "plan.patch", apply: func(p *domain.SuccessPlan, _ string) bool {
		patch.Apply(p)
		return true
	}}
}

func SetHealth(status domain.Status) Mutation {
	return Mutation{Op: "plan.health", apply: func(p *domain.SuccessPlan, _ string) bool {
		p.Health = status
		return true
	}}
}

// MarkExported records a finished report export.
func MarkExported() Mutation {
	return Mutation{Op: "plan.exported", apply: func(p *domain.SuccessPlan, now string) bool {
		p.LastExported = now
		return true
	}}
}

// AddObjective appends o to the active objectives. Ids already used by an
// active or completed objective are refused.
func AddObjective(o domain.Objective) Mutation {
	return Mutation{Op: "objective.add", apply: func(p *domain.SuccessPlan, _ string) bool {
		if p.HasObjective(o.ID) {
			return false
		}
		o = o.Clone()
		o.CompletedAt = ""
		o.Progress = domain.ClampProgress(o.Progress)
		p.Objectives = append(p.Objectives, o)
		return true
	}}
}

// UpdateObjective merges patch into the active objective id. Completed
// objectives are not reachable.
func UpdateObjective(id string, patch domain.ObjectivePatch) Mutation {
	return Mutation{Op: "objective.update", apply: func(p *domain.SuccessPlan, now string) bool {
		i := p.FindObjective(id)
		if i < 0 {
			return false
		}
		patch.Apply(&p.Objectives[i])
		p.Objectives[i].UpdatedAt = now
		return true
	}}
}

// AdvanceObjective moves progress by step, bounded to [0,100].
func AdvanceObjective(id string, step int) Mutation {
	return Mutation{Op: "objective.advance", apply: func(p *domain.SuccessPlan, now string) bool {
		i := p.FindObjective(id)
		if i < 0 {
			return false
		}
		p.Objectives[i].Progress = domain.ClampProgress(p.Objectives[i].Progress + step)
		p.Objectives[i].UpdatedAt = now
		return true
	}}
}

func DeleteObjective(id string) Mutation {
	return Mutation{Op: "objective.delete", apply: func(p *domain.SuccessPlan, _ string) bool {
		i := p.FindObjective(id)
		if i < 0 {
			return false
		}
		p.Objectives = append(p.Objectives[:i], p.Objectives[i+1:]...)
		return true
	}}
}

// CompleteObjective moves the active objective id to the completed list with
// progress 100 and completedAt set. Removal and append land in the same
// snapshot.
func CompleteObjective(id string) Mutation {
	return Mutation{Op: "objective.complete", apply: func(p *domain.SuccessPlan, now string) bool {
		i := p.FindObjective(id)
		if i < 0 {
			return false
		}
		done := p.Objectives[i]
		done.Progress = 100
		done.CompletedAt = now
		done.UpdatedAt = now
		p.Objectives = append(p.Objectives[:i], p.Objectives[i+1:]...)
		p.CompletedObjectives = append(p.CompletedObjectives, done)
		return true
	}}
}

func AddStakeholder(s domain.Stakeholder) Mutation {
	return Mutation{Op: "stakeholder.add", apply: func(p *domain.SuccessPlan, _ string) bool {
		if findStakeholder(p, s.ID) >= 0 {
			return false
		}
		p.Stakeholders = append(p.Stakeholders, s)
		return true
	}}
}

func UpdateStakeholder(id string, patch domain.StakeholderPatch) Mutation {
	return Mutation{Op: "stakeholder.update", apply: func(p *domain.SuccessPlan, _ string) bool {
		i := findStakeholder(p, id)
		if i < 0 {
			return false
		}
		patch.Apply(&p.Stakeholders[i])
		return true
	}}
}

func DeleteStakeholder(id string) Mutation {
	return Mutation{Op: "stakeholder.delete", apply: func(p *domain.SuccessPlan, _ string) bool {
		i := findStakeholder(p, id)
		if i < 0 {
			return false
		}
		p.Stakeholders = append(p.Stakeholders[:i], p.Stakeholders[i+1:]...)
		return true
	}}
}

// AddRisk appends r. CreatedAt is the caller's responsibility.
func AddRisk(r domain.Risk) Mutation {
	return Mutation{Op: "risk.add", apply: func(p *domain.SuccessPlan, _ string) bool {
		if findRisk(p, r.ID) >= 0 {
			return false
		}
		p.Risks = append(p.Risks, r)
		return true
	}}
}

func UpdateRisk(id string, patch domain.RiskPatch) Mutation {
	return Mutation{Op: "risk.update", apply: func(p *domain.SuccessPlan, _ string) bool {
		i := findRisk(p, id)
		if i < 0 {
			return false
		}
		patch.Apply(&p.Risks[i])
		return true
	}}
}

func DeleteRisk(id string) Mutation {
	return Mutation{Op: "risk.delete", apply: func(p *domain.SuccessPlan, _ string) bool {
		i := findRisk(p, id)
		if i < 0 {
			return false
		}
		p.Risks = append(p.Risks[:i], p.Risks[i+1:]...)
		return true
	}}
}

func findStakeholder(p *domain.SuccessPlan, id string) int {
	for i, s := range p.Stakeholders {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func findRisk(p *domain.SuccessPlan, id string) int {
	for i, r := range p.Risks {
		if r.ID == id {
			return i
		}
	}
	return -1
}
