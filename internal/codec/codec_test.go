package codec

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"successplan/internal/domain"
)

var exportedAt = time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC)

func fullPlan() domain.SuccessPlan {
	return domain.SuccessPlan{
		ID:             "1",
		CustomerName:   "Acme Corp",
		FiscalYear:     "FY25",
		Owner:          domain.PersonRef{ID: "1", Name: "Jordan Lee", Initials: "JL"},
		Segment:        "Enterprise",
		Industry:       "Retail",
		Health:         domain.StatusOnTrack,
		NextReview:     "2025-09-30",
		LastUpdated:    "2025-08-15T10:00:00.000Z",
		LastExported:   "2025-08-20T10:00:00.000Z",
		MissionSummary: "Drive activation",
		Objectives: []domain.Objective{{
			ID: "1", Title: "Launch onboarding", Owner: domain.PersonRef{ID: "1", Name: "Jordan Lee", Initials: "JL"},
			DueDate: "2025-10-15", Status: domain.StatusOnTrack, Progress: 62,
			KPIs:      []domain.KPI{{ID: "1", Name: "Activation", Value: "+12%", Trend: domain.TrendUp}},
			CreatedAt: "2025-07-01", UpdatedAt: "2025-08-15",
		}},
		CompletedObjectives: []domain.Objective{{
			ID: "4", Title: "Migrate pipelines", Status: domain.StatusOnTrack, Progress: 100,
			KPIs: []domain.KPI{}, CreatedAt: "2025-06-01", UpdatedAt: "2025-08-12", CompletedAt: "2025-08-12",
		}},
		Stakeholders:    []domain.Stakeholder{{ID: "1", Name: "Evelyn Chen", Initials: "EC", Role: "VP Product", RACI: domain.RACIResponsible}},
		ProductsInScope: []string{"Core Platform", "Analytics"},
		NextSteps:       []string{"Finalize KPI targets"},
		Risks:           []domain.Risk{{ID: "r1", Title: "Budget", Impact: domain.LevelHigh, Likelihood: domain.LevelMedium, Owner: "Jordan Lee", CreatedAt: "2025-08-01"}},
		ValueRealized: domain.ValueRealized{
			ActivationRate: domain.MetricSeries{Value: "+14%", Trend: []float64{20, 15, 18.5}},
			TimeToValue:    domain.MetricSeries{Value: "-19%", Trend: []float64{12, 10}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		p := fullPlan()
		data, err := Export(&p, exportedAt, f)
		if err != nil {
			t.Fatalf("%s export: %v", f, err)
		}
		got, err := Import(data, f)
		if err != nil {
			t.Fatalf("%s import: %v", f, err)
		}
		if !reflect.DeepEqual(got, p) {
			t.Fatalf("%s round trip mismatch:\n got %+v\nwant %+v", f, got, p)
		}
	}
}

func TestExportEnvelope(t *testing.T) {
	p := fullPlan()
	data, err := Export(&p, exportedAt, FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var env map[string]any
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env["version"] != "1.0" || env["exportedAt"] != "2025-09-01T08:30:00.000Z" {
		t.Fatalf("envelope %v", env)
	}
	if !strings.Contains(string(data), "\n  \"successPlan\"") {
		t.Fatalf("expected two-space indentation:\n%s", data)
	}
}

func TestExportNilPlanWritesNull(t *testing.T) {
	data, err := Export(nil, exportedAt, FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), `"successPlan": null`) {
		t.Fatalf("unexpected export %s", data)
	}
	if _, err := Import(data, FormatJSON); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("null plan should not import: %v", err)
	}
}

func TestImportRejectsMissingPlan(t *testing.T) {
	_, err := Import([]byte(`{"foo":1}`), FormatJSON)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	for _, body := range []string{`[1,2]`, `"plan"`, `{"successPlan":{"objectives":"many"}}`, `{"successPlan":{"health":"fine"}}`} {
		if _, err := Import([]byte(body), FormatJSON); !errors.Is(err, ErrShapeMismatch) {
			t.Fatalf("%s: expected ErrShapeMismatch, got %v", body, err)
		}
	}
}

func TestImportRejectsMisplacedCompletedAt(t *testing.T) {
	for _, body := range []string{
		`{"successPlan":{"objectives":[{"id":"a","progress":10,"completedAt":"2025-01-01"}]}}`,
		`{"successPlan":{"completedObjectives":[{"id":"b","progress":40}]}}`,
		`{"successPlan":{"completedObjectives":[{"id":"b","progress":100}]}}`,
		`{"successPlan":{"completedObjectives":[{"id":"b","progress":40,"completedAt":"2025-01-01"}]}}`,
	} {
		if _, err := Import([]byte(body), FormatJSON); !errors.Is(err, ErrShapeMismatch) {
			t.Fatalf("%s: expected ErrShapeMismatch, got %v", body, err)
		}
	}
	ok := `{"successPlan":{"objectives":[{"id":"a","progress":10}],"completedObjectives":[{"id":"b","progress":100,"completedAt":"2025-01-01"}]}}`
	p, err := Import([]byte(ok), FormatJSON)
	if err != nil {
		t.Fatalf("import consistent plan: %v", err)
	}
	if p.Objectives[0].CompletedAt != "" || p.CompletedObjectives[0].CompletedAt != "2025-01-01" {
		t.Fatalf("unexpected completedAt values: %+v", p)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	if _, err := Import([]byte(`{"successPlan": {`), FormatJSON); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if _, err := Import([]byte("successPlan: [\n"), FormatYAML); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for yaml, got %v", err)
	}
}

func TestImportVersions(t *testing.T) {
	cases := map[string]error{
		`{"successPlan":{"id":"1"}}`:                  nil,
		`{"successPlan":{"id":"1"},"version":"1.3"}`:  nil,
		`{"successPlan":{"id":"1"},"version":1}`:      nil,
		`{"successPlan":{"id":"1"},"version":"2.0"}`:  ErrUnsupportedVersion,
		`{"successPlan":{"id":"1"},"version":"beta"}`: ErrUnsupportedVersion,
	}
	for body, want := range cases {
		_, err := Import([]byte(body), FormatJSON)
		if want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", body, err)
		}
		if want != nil && !errors.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", body, want, err)
		}
	}
}

func TestImportIgnoresUnknownKeysAndFillsCollections(t *testing.T) {
	p, err := Import([]byte(`{"successPlan":{"id":"9","customerName":"Globex"},"comment":"hi","version":"1.0"}`), FormatJSON)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if p.CustomerName != "Globex" || p.Objectives == nil || p.Risks == nil {
		t.Fatalf("unexpected plan %+v", p)
	}
}

func TestFilenameAndFormat(t *testing.T) {
	p := fullPlan()
	if got := Filename(&p, exportedAt, FormatJSON); got != "success-plan-Acme Corp-2025-09-01.json" {
		t.Fatalf("filename %q", got)
	}
	if got := Filename(&p, exportedAt, FormatYAML); got != "success-plan-Acme Corp-2025-09-01.yaml" {
		t.Fatalf("filename %q", got)
	}
	if DetectFormat("plan.YML") != FormatYAML || DetectFormat("plan.json") != FormatJSON || DetectFormat("plan") != FormatJSON {
		t.Fatalf("detect format")
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}
