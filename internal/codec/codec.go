// Package codec converts between the resident plan and the portable export
// envelope {successPlan, exportedAt, version}.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"successplan/internal/domain"
)

// Version is written into every export envelope.
const Version = "1.0"

var (
	// ErrParse means the input is not well-formed JSON or YAML.
	ErrParse = errors.New("import: malformed document")
	// ErrShapeMismatch means the input parsed but does not carry a plan.
	ErrShapeMismatch = errors.New("import: document does not contain a success plan")
	// ErrUnsupportedVersion means the envelope comes from a newer major version.
	ErrUnsupportedVersion = errors.New("import: unsupported envelope version")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
}

// DetectFormat picks the format from a file extension, defaulting to json.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Envelope is the export file layout.
type Envelope struct {
	SuccessPlan *domain.SuccessPlan `json:"successPlan" yaml:"successPlan"`
	ExportedAt  string              `json:"exportedAt" yaml:"exportedAt"`
	Version     string              `json:"version" yaml:"version"`
}

// Export encodes plan in an envelope stamped with at. A nil plan is written
// as null.
func Export(plan *domain.SuccessPlan, at time.Time, f Format) ([]byte, error) {
	env := Envelope{ExportedAt: domain.FormatTimestamp(at), Version: Version}
	if plan != nil {
		p := normalize(plan.Clone())
		env.SuccessPlan = &p
	}
	switch f {
	case FormatYAML:
		return yaml.Marshal(env)
	case FormatJSON, "":
		return json.MarshalIndent(env, "", "  ")
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// Filename returns success-plan-<customer>-<YYYY-MM-DD>.<ext>.
func Filename(plan *domain.SuccessPlan, at time.Time, f Format) string {
	customer := ""
	if plan != nil {
		customer = plan.CustomerName
	}
	ext := "json"
	if f == FormatYAML {
		ext = "yaml"
	}
	return fmt.Sprintf("success-plan-%s-%s.%s", customer, at.UTC().Format(domain.DateLayout), ext)
}

// Import decodes an envelope and returns the plan it carries. Unknown
// top-level keys are ignored. A missing version is accepted as 1.x.
func Import(data []byte, f Format) (domain.SuccessPlan, error) {
	var generic any
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &generic)
	case FormatJSON, "":
		err = json.Unmarshal(data, &generic)
	default:
		return domain.SuccessPlan{}, fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return domain.SuccessPlan{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	top, ok := generic.(map[string]any)
	if !ok {
		return domain.SuccessPlan{}, fmt.Errorf("%w: top level is not an object", ErrShapeMismatch)
	}
	if err := checkVersion(top["version"]); err != nil {
		return domain.SuccessPlan{}, err
	}
	if top["successPlan"] == nil {
		return domain.SuccessPlan{}, fmt.Errorf("%w: missing successPlan", ErrShapeMismatch)
	}

	var env Envelope
	if f == FormatYAML {
		err = yaml.Unmarshal(data, &struct {
			SuccessPlan **domain.SuccessPlan `yaml:"successPlan"`
		}{&env.SuccessPlan})
	} else {
		err = json.Unmarshal(data, &struct {
			SuccessPlan **domain.SuccessPlan `json:"successPlan"`
		}{&env.SuccessPlan})
	}
	if err != nil || env.SuccessPlan == nil {
		return domain.SuccessPlan{}, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	plan := normalize(*env.SuccessPlan)
	if err := plan.Validate(); err != nil {
		return domain.SuccessPlan{}, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	return plan, nil
}

func checkVersion(v any) error {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedVersion, v)
	}
	major, _, _ := strings.Cut(strings.TrimSpace(s), ".")
	n, err := strconv.Atoi(major)
	if err != nil || n > 1 {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, s)
	}
	return nil
}

// normalize replaces nil collections with empty ones so exports never carry
// null lists.
func normalize(p domain.SuccessPlan) domain.SuccessPlan {
	if p.Objectives == nil {
		p.Objectives = []domain.Objective{}
	}
	if p.CompletedObjectives == nil {
		p.CompletedObjectives = []domain.Objective{}
	}
	for i := range p.Objectives {
		if p.Objectives[i].KPIs == nil {
			p.Objectives[i].KPIs = []domain.KPI{}
		}
	}
	for i := range p.CompletedObjectives {
		if p.CompletedObjectives[i].KPIs == nil {
			p.CompletedObjectives[i].KPIs = []domain.KPI{}
		}
	}
	if p.Stakeholders == nil {
		p.Stakeholders = []domain.Stakeholder{}
	}
	if p.ProductsInScope == nil {
		p.ProductsInScope = []string{}
	}
	if p.NextSteps == nil {
		p.NextSteps = []string{}
	}
	if p.Risks == nil {
		p.Risks = []domain.Risk{}
	}
	if p.ValueRealized.ActivationRate.Trend == nil {
		p.ValueRealized.ActivationRate.Trend = []float64{}
	}
	if p.ValueRealized.TimeToValue.Trend == nil {
		p.ValueRealized.TimeToValue.Trend = []float64{}
	}
	return p
}
