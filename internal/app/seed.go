package app

import "successplan/internal/domain"

// Seed returns the plan installed on first run and on reset.
func Seed() domain.SuccessPlan {
	jordan := domain.PersonRef{ID: "1", Name: "Jordan Lee", Initials: "JL"}
	kai := domain.PersonRef{ID: "2", Name: "Kai Sun", Initials: "KS"}
	return domain.SuccessPlan{
		ID:             "1",
		CustomerName:   "Acme Corp",
		FiscalYear:     "FY25",
		Owner:          jordan,
		Segment:        "Enterprise",
		Industry:       "Retail",
		Health:         domain.StatusOnTrack,
		NextReview:     "2025-09-30",
		LastUpdated:    "2025-08-15",
		MissionSummary: "Drive activation and value realization for the Acme Retail division to support FY25 revenue targets and reduce onboarding time.",
		Objectives: []domain.Objective{
			{
				ID: "1", Title: "Launch self-serve onboarding flow", Owner: jordan,
				DueDate: "2025-10-15", Status: domain.StatusOnTrack, Progress: 62,
				KPIs: []domain.KPI{
					{ID: "1", Name: "Activation", Value: "+12%"},
					{ID: "2", Name: "Time-to-value", Value: "-20%"},
				},
				CreatedAt: "2025-07-01", UpdatedAt: "2025-08-15",
			},
			{
				ID: "2", Title: "Improve activation email journey", Owner: kai,
				DueDate: "2025-11-01", Status: domain.StatusOnTrack, Progress: 35,
				KPIs:      []domain.KPI{{ID: "3", Name: "Weekly active", Value: "+9%"}},
				CreatedAt: "2025-07-01", UpdatedAt: "2025-08-15",
			},
			{
				ID: "3", Title: "Expand analytics dashboards to EMEA", Owner: jordan,
				DueDate: "2025-10-28", Status: domain.StatusNeedsAttention, Progress: 78,
				KPIs:      []domain.KPI{{ID: "4", Name: "Time-to-value", Value: "-8%"}},
				CreatedAt: "2025-07-01", UpdatedAt: "2025-08-15",
			},
		},
		CompletedObjectives: []domain.Objective{
			{
				ID: "4", Title: "Migrate analytics to v2 pipelines", Owner: kai,
				DueDate: "2025-08-12", Status: domain.StatusOnTrack, Progress: 100, KPIs: []domain.KPI{},
				CreatedAt: "2025-06-01", UpdatedAt: "2025-08-12", CompletedAt: "2025-08-12",
			},
			{
				ID: "5", Title: "Roll out SSO to all workspaces", Owner: jordan,
				DueDate: "2025-08-02", Status: domain.StatusOnTrack, Progress: 100, KPIs: []domain.KPI{},
				CreatedAt: "2025-06-01", UpdatedAt: "2025-08-02", CompletedAt: "2025-08-02",
			},
		},
		Stakeholders: []domain.Stakeholder{
			{ID: "1", Name: "Evelyn Chen", Initials: "EC", Role: "VP Product", RACI: domain.RACIResponsible},
			{ID: "2", Name: "Mark Patel", Initials: "MP", Role: "Head of Data", RACI: domain.RACIAccountable},
			{ID: "3", Name: "Sofia Gomez", Initials: "SG", Role: "Program Manager", RACI: domain.RACIConsulted},
		},
		ProductsInScope: []string{"Core Platform", "Automation", "Analytics", "Integrations"},
		NextSteps: []string{
			"Finalize onboarding KPI targets",
			"Confirm GTM launch timeline with Product",
			"Schedule QBR week of Oct 7",
		},
		Risks: []domain.Risk{},
		ValueRealized: domain.ValueRealized{
			ActivationRate: domain.MetricSeries{Value: "+14%", Trend: []float64{20, 15, 18, 10, 12, 8, 12, 9}},
			TimeToValue:    domain.MetricSeries{Value: "-19%", Trend: []float64{12, 10, 14, 18, 16, 20, 18, 21}},
		},
	}
}
