package domain

// PlanPatch carries the plan-level fields a caller may merge. Nil fields are
// left untouched. Entity collections, timestamps and the id are not
// patchable; they change only through their own operations.
type PlanPatch struct {
	CustomerName    *string        `json:"customerName,omitempty"`
	FiscalYear      *string        `json:"fiscalYear,omitempty"`
	Owner           *PersonRef     `json:"owner,omitempty"`
	Segment         *string        `json:"segment,omitempty"`
	Industry        *string        `json:"industry,omitempty"`
	Health          *Status        `json:"health,omitempty" enum:"on_track,needs_attention,at_risk"`
	NextReview      *string        `json:"nextReview,omitempty"`
	MissionSummary  *string        `json:"missionSummary,omitempty"`
	ProductsInScope []string       `json:"productsInScope,omitempty"`
	NextSteps       []string       `json:"nextSteps,omitempty"`
	ValueRealized   *ValueRealized `json:"valueRealized,omitempty"`
}

// Apply merges the non-nil fields of p into plan.
func (p PlanPatch) Apply(plan *SuccessPlan) {
	if p.CustomerName != nil {
		plan.CustomerName = *p.CustomerName
	}
	if p.FiscalYear != nil {
		plan.FiscalYear = *p.FiscalYear
	}
	if p.Owner != nil {
		plan.Owner = *p.Owner
	}
	if p.Segment != nil {
		plan.Segment = *p.Segment
	}
	if p.Industry != nil {
		plan.Industry = *p.Industry
	}
	if p.Health != nil {
		plan.Health = *p.Health
	}
	if p.NextReview != nil {
		plan.NextReview = *p.NextReview
	}
	if p.MissionSummary != nil {
		plan.MissionSummary = *p.MissionSummary
	}
	if p.ProductsInScope != nil {
		plan.ProductsInScope = append([]string{}, p.ProductsInScope...)
	}
	if p.NextSteps != nil {
		plan.NextSteps = append([]string{}, p.NextSteps...)
	}
	if p.ValueRealized != nil {
		plan.ValueRealized = p.ValueRealized.clone()
	}
}

type ObjectivePatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Owner       *PersonRef `json:"owner,omitempty"`
	DueDate     *string    `json:"dueDate,omitempty"`
	Status      *Status    `json:"status,omitempty" enum:"on_track,needs_attention,at_risk"`
	Progress    *int       `json:"progress,omitempty"`
	KPIs        []KPI      `json:"kpis,omitempty"`
}

func (p ObjectivePatch) Apply(o *Objective) {
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.Owner != nil {
		o.Owner = *p.Owner
	}
	if p.DueDate != nil {
		o.DueDate = *p.DueDate
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Progress != nil {
		o.Progress = ClampProgress(*p.Progress)
	}
	if p.KPIs != nil {
		o.KPIs = append([]KPI{}, p.KPIs...)
	}
}

type StakeholderPatch struct {
	Name     *string `json:"name,omitempty"`
	Initials *string `json:"initials,omitempty"`
	Role     *string `json:"role,omitempty"`
	RACI     *RACI   `json:"raci,omitempty" enum:"R,A,C,I"`
}

func (p StakeholderPatch) Apply(s *Stakeholder) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Initials != nil {
		s.Initials = *p.Initials
	}
	if p.Role != nil {
		s.Role = *p.Role
	}
	if p.RACI != nil {
		s.RACI = *p.RACI
	}
}

type RiskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Impact      *Level  `json:"impact,omitempty" enum:"low,medium,high"`
	Likelihood  *Level  `json:"likelihood,omitempty" enum:"low,medium,high"`
	Mitigation  *string `json:"mitigation,omitempty"`
	Owner       *string `json:"owner,omitempty"`
}

func (p RiskPatch) Apply(r *Risk) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Impact != nil {
		r.Impact = *p.Impact
	}
	if p.Likelihood != nil {
		r.Likelihood = *p.Likelihood
	}
	if p.Mitigation != nil {
		r.Mitigation = *p.Mitigation
	}
	if p.Owner != nil {
		r.Owner = *p.Owner
	}
}

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
