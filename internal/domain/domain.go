package domain

// Status is the health of an objective or of the plan as a whole.
type Status string

const (
	StatusOnTrack        Status = "on_track"
	StatusNeedsAttention Status = "needs_attention"
	StatusAtRisk         Status = "at_risk"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOnTrack, StatusNeedsAttention, StatusAtRisk:
		return true
	}
	return false
}

// Label returns the human form used in tables and reports.
func (s Status) Label() string {
	switch s {
	case StatusOnTrack:
		return "On track"
	case StatusNeedsAttention:
		return "Needs attention"
	case StatusAtRisk:
		return "At risk"
	}
	return string(s)
}

type RACI string

const (
	RACIResponsible RACI = "R"
	RACIAccountable RACI = "A"
	RACIConsulted   RACI = "C"
	RACIInformed    RACI = "I"
)

func (r RACI) Valid() bool {
	switch r {
	case RACIResponsible, RACIAccountable, RACIConsulted, RACIInformed:
		return true
	}
	return false
}

// Level grades risk impact and likelihood.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

func (t Trend) Valid() bool {
	switch t {
	case "", TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

// PersonRef is an embedded copy of a person. It is never resolved against a
// registry, so later edits to a stakeholder do not rewrite existing owners.
type PersonRef struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Initials string `json:"initials" yaml:"initials"`
}

type KPI struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Trend Trend  `json:"trend,omitempty" yaml:"trend,omitempty" enum:"up,down,stable"`
}

type Objective struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       PersonRef `json:"owner" yaml:"owner"`
	DueDate     string    `json:"dueDate" yaml:"dueDate" format:"date"`
	Status      Status    `json:"status" yaml:"status" enum:"on_track,needs_attention,at_risk"`
	Progress    int       `json:"progress" yaml:"progress" minimum:"0" maximum:"100"`
	KPIs        []KPI     `json:"kpis" yaml:"kpis"`
	CreatedAt   string    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string    `json:"updatedAt" yaml:"updatedAt"`
	CompletedAt string    `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
}

type Stakeholder struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Initials string `json:"initials" yaml:"initials"`
	Role     string `json:"role" yaml:"role"`
	RACI     RACI   `json:"raci" yaml:"raci" enum:"R,A,C,I"`
}

type Risk struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Impact      Level  `json:"impact" yaml:"impact" enum:"low,medium,high"`
	Likelihood  Level  `json:"likelihood" yaml:"likelihood" enum:"low,medium,high"`
	Mitigation  string `json:"mitigation,omitempty" yaml:"mitigation,omitempty"`
	Owner       string `json:"owner" yaml:"owner"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
}

// MetricSeries is a display value plus its chronological trend points.
type MetricSeries struct {
	Value string    `json:"value" yaml:"value"`
	Trend []float64 `json:"trend" yaml:"trend"`
}

type ValueRealized struct {
	ActivationRate MetricSeries `json:"activationRate" yaml:"activationRate"`
	TimeToValue    MetricSeries `json:"timeToValue" yaml:"timeToValue"`
}

// SuccessPlan is the aggregate root. Exactly one is resident at a time.
type SuccessPlan struct {
	ID                  string        `json:"id" yaml:"id"`
	CustomerName        string        `json:"customerName" yaml:"customerName"`
	FiscalYear          string        `json:"fiscalYear" yaml:"fiscalYear"`
	Owner               PersonRef     `json:"owner" yaml:"owner"`
	Segment             string        `json:"segment" yaml:"segment"`
	Industry            string        `json:"industry" yaml:"industry"`
	Health              Status        `json:"health" yaml:"health" enum:"on_track,needs_attention,at_risk"`
	NextReview          string        `json:"nextReview" yaml:"nextReview"`
	LastUpdated         string        `json:"lastUpdated" yaml:"lastUpdated"`
	LastExported        string        `json:"lastExported,omitempty" yaml:"lastExported,omitempty"`
	MissionSummary      string        `json:"missionSummary" yaml:"missionSummary"`
	Objectives          []Objective   `json:"objectives" yaml:"objectives"`
	CompletedObjectives []Objective   `json:"completedObjectives" yaml:"completedObjectives"`
	Stakeholders        []Stakeholder `json:"stakeholders" yaml:"stakeholders"`
	ProductsInScope     []string      `json:"productsInScope" yaml:"productsInScope"`
	NextSteps           []string      `json:"nextSteps" yaml:"nextSteps"`
	Risks               []Risk        `json:"risks" yaml:"risks"`
	ValueRealized       ValueRealized `json:"valueRealized" yaml:"valueRealized"`
}

type Preset string

const (
	PresetQBR            Preset = "QBR"
	PresetEBR            Preset = "EBR"
	PresetImplementation Preset = "Implementation"
)

func (p Preset) Valid() bool {
	switch p {
	case PresetQBR, PresetEBR, PresetImplementation:
		return true
	}
	return false
}

// ReportSections toggles which report sections are generated.
type ReportSections struct {
	CoverPage        bool `json:"coverPage" yaml:"coverPage"`
	ExecutiveSummary bool `json:"executiveSummary" yaml:"executiveSummary"`
	Objectives       bool `json:"objectives" yaml:"objectives"`
	KPISnapshot      bool `json:"kpiSnapshot" yaml:"kpiSnapshot"`
	Timeline         bool `json:"timeline" yaml:"timeline"`
	Risks            bool `json:"risks" yaml:"risks"`
	NextSteps        bool `json:"nextSteps" yaml:"nextSteps"`
	Appendix         bool `json:"appendix" yaml:"appendix"`
}

type ReportConfig struct {
	Preset              Preset         `json:"preset" yaml:"preset" enum:"QBR,EBR,Implementation"`
	Sections            ReportSections `json:"sections" yaml:"sections"`
	RedactInternalNotes bool           `json:"redactInternalNotes" yaml:"redactInternalNotes"`
}
