package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout matches ISO-8601 with millisecond precision in UTC. Values
// in this layout sort lexically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout is used for due dates and review dates.
const DateLayout = "2006-01-02"

// FormatTimestamp renders t in TimestampLayout (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTime accepts the timestamp layouts produced here or by older exports,
// as well as bare dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano, time.RFC3339, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// Clone returns a deep copy of p.
func (p SuccessPlan) Clone() SuccessPlan {
	out := p
	out.Objectives = cloneObjectives(p.Objectives)
	out.CompletedObjectives = cloneObjectives(p.CompletedObjectives)
	out.Stakeholders = append([]Stakeholder{}, p.Stakeholders...)
	out.ProductsInScope = append([]string{}, p.ProductsInScope...)
	out.NextSteps = append([]string{}, p.NextSteps...)
	out.Risks = append([]Risk{}, p.Risks...)
	out.ValueRealized = p.ValueRealized.clone()
	return out
}

func (o Objective) Clone() Objective {
	out := o
	out.KPIs = append([]KPI{}, o.KPIs...)
	return out
}

func cloneObjectives(in []Objective) []Objective {
	out := make([]Objective, 0, len(in))
	for _, o := range in {
		out = append(out, o.Clone())
	}
	return out
}

func (v ValueRealized) clone() ValueRealized {
	return ValueRealized{
		ActivationRate: MetricSeries{Value: v.ActivationRate.Value, Trend: append([]float64{}, v.ActivationRate.Trend...)},
		TimeToValue:    MetricSeries{Value: v.TimeToValue.Value, Trend: append([]float64{}, v.TimeToValue.Trend...)},
	}
}

// Validate checks enum values, progress bounds, that no objective id is
// both active and completed, and that completedAt is set exactly on the
// completed list.
func (p SuccessPlan) Validate() error {
	if p.Health != "" && !p.Health.Valid() {
		return fmt.Errorf("invalid health %q", p.Health)
	}
	active := make(map[string]struct{}, len(p.Objectives))
	for _, o := range p.Objectives {
		if err := o.validate(); err != nil {
			return err
		}
		if o.CompletedAt != "" {
			return fmt.Errorf("active objective %q has completedAt set", o.ID)
		}
		if _, dup := active[o.ID]; dup {
			return fmt.Errorf("duplicate objective id %q", o.ID)
		}
		active[o.ID] = struct{}{}
	}
	done := make(map[string]struct{}, len(p.CompletedObjectives))
	for _, o := range p.CompletedObjectives {
		if err := o.validate(); err != nil {
			return err
		}
		if _, ok := active[o.ID]; ok {
			return fmt.Errorf("objective %q is both active and completed", o.ID)
		}
		if o.CompletedAt == "" {
			return fmt.Errorf("completed objective %q has no completedAt", o.ID)
		}
		if o.Progress != 100 {
			return fmt.Errorf("completed objective %q: progress %d, want 100", o.ID, o.Progress)
		}
		if _, dup := done[o.ID]; dup {
			return fmt.Errorf("duplicate completed objective id %q", o.ID)
		}
		done[o.ID] = struct{}{}
	}
	for _, s := range p.Stakeholders {
		if s.RACI != "" && !s.RACI.Valid() {
			return fmt.Errorf("stakeholder %q: invalid raci %q", s.ID, s.RACI)
		}
	}
	for _, r := range p.Risks {
		if r.Impact != "" && !r.Impact.Valid() {
			return fmt.Errorf("risk %q: invalid impact %q", r.ID, r.Impact)
		}
		if r.Likelihood != "" && !r.Likelihood.Valid() {
			return fmt.Errorf("risk %q: invalid likelihood %q", r.ID, r.Likelihood)
		}
	}
	return nil
}

func (o Objective) validate() error {
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("objective %q: invalid status %q", o.ID, o.Status)
	}
	if o.Progress < 0 || o.Progress > 100 {
		return fmt.Errorf("objective %q: progress %d out of range", o.ID, o.Progress)
	}
	for _, k := range o.KPIs {
		if !k.Trend.Valid() {
			return fmt.Errorf("objective %q: kpi %q has invalid trend %q", o.ID, k.ID, k.Trend)
		}
	}
	return nil
}

// FindObjective returns the index of the active objective with id, or -1.
func (p SuccessPlan) FindObjective(id string) int {
	for i, o := range p.Objectives {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// HasObjective reports whether id is used by an active or completed objective.
func (p SuccessPlan) HasObjective(id string) bool {
	if p.FindObjective(id) >= 0 {
		return true
	}
	for _, o := range p.CompletedObjectives {
		if o.ID == id {
			return true
		}
	}
	return false
}

// ObjectiveFilter narrows the objectives table. Empty fields match everything.
type ObjectiveFilter struct {
	Search string
	Owner  string
	Status Status
}

// FilterObjectives returns the objectives matching f, preserving order.
func FilterObjectives(objs []Objective, f ObjectiveFilter) []Objective {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Objective
	for _, o := range objs {
		if search != "" && !strings.Contains(strings.ToLower(o.Title), search) {
			continue
		}
		if f.Owner != "" && o.Owner.Name != f.Owner {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o.Clone())
	}
	return out
}

// Owners lists distinct owner names in first-seen order.
func Owners(objs []Objective) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, o := range objs {
		if o.Owner.Name == "" {
			continue
		}
		if _, ok := seen[o.Owner.Name]; ok {
			continue
		}
		seen[o.Owner.Name] = struct{}{}
		out = append(out, o.Owner.Name)
	}
	return out
}
