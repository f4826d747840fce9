package domain

import (
	"testing"
	"time"
)

func samplePlan() SuccessPlan {
	return SuccessPlan{
		ID:           "1",
		CustomerName: "Acme Corp",
		Health:       StatusOnTrack,
		Objectives: []Objective{
			{ID: "1", Title: "Launch self-serve onboarding", Owner: PersonRef{ID: "1", Name: "Jordan Lee"}, Status: StatusOnTrack, Progress: 62, KPIs: []KPI{{ID: "k1", Name: "Activation", Value: "+12%"}}},
			{ID: "2", Title: "Improve activation email journey", Owner: PersonRef{ID: "2", Name: "Kai Sun"}, Status: StatusOnTrack, Progress: 35},
			{ID: "3", Title: "Expand analytics dashboards", Owner: PersonRef{ID: "1", Name: "Jordan Lee"}, Status: StatusNeedsAttention, Progress: 78},
		},
		CompletedObjectives: []Objective{{ID: "4", Title: "Migrate analytics", Progress: 100, CompletedAt: "2025-08-12"}},
		NextSteps:           []string{"a", "b"},
		ValueRealized:       ValueRealized{ActivationRate: MetricSeries{Value: "+14%", Trend: []float64{1, 2}}},
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := samplePlan()
	c := p.Clone()
	c.Objectives[0].Title = "changed"
	c.Objectives[0].KPIs[0].Value = "0"
	c.NextSteps[0] = "z"
	c.ValueRealized.ActivationRate.Trend[0] = 99
	if p.Objectives[0].Title == "changed" || p.Objectives[0].KPIs[0].Value == "0" {
		t.Fatalf("clone shares objective storage")
	}
	if p.NextSteps[0] != "a" || p.ValueRealized.ActivationRate.Trend[0] != 1 {
		t.Fatalf("clone shares slices")
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	p := samplePlan()
	if err := p.Validate(); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}
	p.CompletedObjectives = append(p.CompletedObjectives, Objective{ID: "1", Progress: 100, CompletedAt: "2025-08-20"})
	if err := p.Validate(); err == nil {
		t.Fatalf("expected overlap error")
	}
}

func TestValidateCompletedAtMatchesList(t *testing.T) {
	p := samplePlan()
	p.Objectives[0].CompletedAt = "2025-08-20"
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for active objective with completedAt")
	}
	p = samplePlan()
	p.CompletedObjectives[0].CompletedAt = ""
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for completed objective without completedAt")
	}
	p = samplePlan()
	p.CompletedObjectives[0].Progress = 40
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for completed objective below 100")
	}
}

func TestValidateRejectsBadEnums(t *testing.T) {
	p := samplePlan()
	p.Objectives[1].Status = "done"
	if err := p.Validate(); err == nil {
		t.Fatalf("expected status error")
	}
	p = samplePlan()
	p.Risks = []Risk{{ID: "r1", Impact: "severe"}}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected impact error")
	}
	p = samplePlan()
	p.Objectives[0].Progress = 140
	if err := p.Validate(); err == nil {
		t.Fatalf("expected progress error")
	}
}

func TestFilterObjectives(t *testing.T) {
	objs := samplePlan().Objectives
	if got := FilterObjectives(objs, ObjectiveFilter{Search: "ACTIVATION"}); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("search: %+v", got)
	}
	if got := FilterObjectives(objs, ObjectiveFilter{Owner: "Jordan Lee"}); len(got) != 2 {
		t.Fatalf("owner: %+v", got)
	}
	if got := FilterObjectives(objs, ObjectiveFilter{Owner: "Jordan Lee", Status: StatusNeedsAttention}); len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("owner+status: %+v", got)
	}
	if got := FilterObjectives(objs, ObjectiveFilter{}); len(got) != 3 {
		t.Fatalf("empty filter: %d", len(got))
	}
}

func TestOwners(t *testing.T) {
	got := Owners(samplePlan().Objectives)
	if len(got) != 2 || got[0] != "Jordan Lee" || got[1] != "Kai Sun" {
		t.Fatalf("owners: %v", got)
	}
}

func TestTimestampsSortLexically(t *testing.T) {
	a := FormatTimestamp(time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC))
	b := FormatTimestamp(time.Date(2025, 8, 15, 9, 0, 0, int(time.Millisecond), time.UTC))
	if !(a < b) {
		t.Fatalf("%s should sort before %s", a, b)
	}
	if _, err := ParseTime("2025-08-15"); err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if _, err := ParseTime(a); err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
}

func TestPatchClampsProgress(t *testing.T) {
	o := Objective{Progress: 90}
	v := 130
	ObjectivePatch{Progress: &v}.Apply(&o)
	if o.Progress != 100 {
		t.Fatalf("progress %d", o.Progress)
	}
	v = -5
	ObjectivePatch{Progress: &v}.Apply(&o)
	if o.Progress != 0 {
		t.Fatalf("progress %d", o.Progress)
	}
}
