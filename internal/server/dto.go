package server

import (
	"time"

	"successplan/internal/domain"
	"successplan/internal/report"
)

// Request payloads

type SetHealthRequest struct {
	Health domain.Status `json:"health" enum:"on_track,needs_attention,at_risk"`
}

type CreateObjectiveRequest struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title" minLength:"1"`
	Description string            `json:"description,omitempty"`
	Owner       *domain.PersonRef `json:"owner,omitempty"`
	DueDate     string            `json:"dueDate,omitempty"`
	Status      domain.Status     `json:"status,omitempty" enum:"on_track,needs_attention,at_risk"`
	Progress    int               `json:"progress,omitempty"`
	KPIs        []domain.KPI      `json:"kpis,omitempty"`
}

func (r CreateObjectiveRequest) objective() domain.Objective {
	o := domain.Objective{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Status:      r.Status,
		Progress:    r.Progress,
		KPIs:        r.KPIs,
	}
	if r.Owner != nil {
		o.Owner = *r.Owner
	}
	return o
}

type AdvanceObjectiveRequest struct {
	Step int `json:"step"`
}

type CreateStakeholderRequest struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name" minLength:"1"`
	Initials string      `json:"initials,omitempty"`
	Role     string      `json:"role,omitempty"`
	RACI     domain.RACI `json:"raci,omitempty" enum:"R,A,C,I"`
}

func (r CreateStakeholderRequest) stakeholder() domain.Stakeholder {
	return domain.Stakeholder{ID: r.ID, Name: r.Name, Initials: r.Initials, Role: r.Role, RACI: r.RACI}
}

type CreateRiskRequest struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title" minLength:"1"`
	Description string       `json:"description,omitempty"`
	Impact      domain.Level `json:"impact" enum:"low,medium,high"`
	Likelihood  domain.Level `json:"likelihood" enum:"low,medium,high"`
	Mitigation  string       `json:"mitigation,omitempty"`
	Owner       string       `json:"owner,omitempty"`
}

func (r CreateRiskRequest) risk() domain.Risk {
	return domain.Risk{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Impact:      r.Impact,
		Likelihood:  r.Likelihood,
		Mitigation:  r.Mitigation,
		Owner:       r.Owner,
	}
}

// ReportRequest picks sections from a preset unless Sections is given.
type ReportRequest struct {
	Preset              domain.Preset          `json:"preset,omitempty" enum:"QBR,EBR,Implementation"`
	Sections            *domain.ReportSections `json:"sections,omitempty"`
	RedactInternalNotes *bool                  `json:"redactInternalNotes,omitempty"`
}

func (r ReportRequest) config() domain.ReportConfig {
	cfg := report.DefaultConfig(r.Preset)
	if r.Sections != nil {
		cfg.Sections = *r.Sections
	}
	if r.RedactInternalNotes != nil {
		cfg.RedactInternalNotes = *r.RedactInternalNotes
	}
	return cfg
}

type ReportExportedRequest struct {
	Preset domain.Preset `json:"preset,omitempty" enum:"QBR,EBR,Implementation"`
}

type ShareRequest struct {
	BaseURL string `json:"baseUrl,omitempty"`
}

// Responses

type ObjectiveList struct {
	Objectives []domain.Objective `json:"objectives"`
	Owners     []string           `json:"owners"`
}

type StakeholderList struct {
	Stakeholders []domain.Stakeholder `json:"stakeholders"`
}

type RiskList struct {
	Risks []domain.Risk `json:"risks"`
}

type ReportResponse struct {
	Filename string              `json:"filename"`
	Config   domain.ReportConfig `json:"config"`
	Blocks   []report.Block      `json:"blocks"`
}

type ViewResponse struct {
	External bool `json:"external"`
}

type ShareResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
