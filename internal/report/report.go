// Package report maps a plan and a report configuration to an ordered list
// of content blocks for a renderer.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"successplan/internal/domain"
)

type Section string

const (
	SectionCover            Section = "coverPage"
	SectionExecutiveSummary Section = "executiveSummary"
	SectionObjectives       Section = "objectives"
	SectionKPISnapshot      Section = "kpiSnapshot"
	SectionTimeline         Section = "timeline"
	SectionRisks            Section = "risks"
	SectionNextSteps        Section = "nextSteps"
	SectionAppendix         Section = "appendix"
)

// Order is the fixed section order of every report.
var Order = []Section{
	SectionCover,
	SectionExecutiveSummary,
	SectionObjectives,
	SectionKPISnapshot,
	SectionTimeline,
	SectionRisks,
	SectionNextSteps,
	SectionAppendix,
}

var titles = map[Section]string{
	SectionCover:            "Cover Page",
	SectionExecutiveSummary: "Executive Summary",
	SectionObjectives:       "Objectives",
	SectionKPISnapshot:      "KPI Snapshot",
	SectionTimeline:         "Timeline",
	SectionRisks:            "Risks",
	SectionNextSteps:        "Next Steps",
	SectionAppendix:         "Appendix",
}

// Block is the content of one enabled section.
type Block struct {
	Section Section `json:"section"`
	Title   string  `json:"title"`
	Items   []Item  `json:"items"`
}

// Item is one line of a block. Detail is a secondary line; Series carries
// trend points for KPI items.
type Item struct {
	Text   string    `json:"text"`
	Detail string    `json:"detail,omitempty"`
	Series []float64 `json:"series,omitempty"`
}

const noRisks = "No risks identified yet."

// DefaultConfig returns the section toggles of a preset. Unknown presets get
// the QBR toggles.
func DefaultConfig(preset domain.Preset) domain.ReportConfig {
	cfg := domain.ReportConfig{Preset: preset, RedactInternalNotes: true}
	switch preset {
	case domain.PresetEBR:
		cfg.Sections = domain.ReportSections{CoverPage: true, ExecutiveSummary: true, KPISnapshot: true, Risks: true, NextSteps: true}
	case domain.PresetImplementation:
		cfg.Sections = domain.ReportSections{CoverPage: true, Objectives: true, Timeline: true, Risks: true, NextSteps: true, Appendix: true}
	default:
		cfg.Preset = domain.PresetQBR
		cfg.Sections = domain.ReportSections{CoverPage: true, ExecutiveSummary: true, Objectives: true, KPISnapshot: true, NextSteps: true}
	}
	return cfg
}

// Enabled reports whether s is switched on in sections.
func Enabled(sections domain.ReportSections, s Section) bool {
	switch s {
	case SectionCover:
		return sections.CoverPage
	case SectionExecutiveSummary:
		return sections.ExecutiveSummary
	case SectionObjectives:
		return sections.Objectives
	case SectionKPISnapshot:
		return sections.KPISnapshot
	case SectionTimeline:
		return sections.Timeline
	case SectionRisks:
		return sections.Risks
	case SectionNextSteps:
		return sections.NextSteps
	case SectionAppendix:
		return sections.Appendix
	}
	return false
}

// SelectContent builds one block per enabled section in Order. It has no
// side effects and returns nil for a nil plan.
func SelectContent(plan *domain.SuccessPlan, cfg domain.ReportConfig, generatedAt time.Time) []Block {
	if plan == nil {
		return nil
	}
	redact := cfg.RedactInternalNotes
	var blocks []Block
	for _, s := range Order {
		if !Enabled(cfg.Sections, s) {
			continue
		}
		var items []Item
		switch s {
		case SectionCover:
			items = cover(plan, generatedAt, redact)
		case SectionExecutiveSummary:
			items = executiveSummary(plan)
		case SectionObjectives:
			items = objectives(plan, redact)
		case SectionKPISnapshot:
			items = kpiSnapshot(plan)
		case SectionTimeline:
			items = timeline(plan)
		case SectionRisks:
			items = risks(plan, redact)
		case SectionNextSteps:
			items = numbered(plan.NextSteps)
		case SectionAppendix:
			items = appendix(plan, redact)
		}
		blocks = append(blocks, Block{Section: s, Title: titles[s], Items: items})
	}
	return blocks
}

// Filename returns <customer>-<fiscalYear>-Success-Plan without extension.
func Filename(plan *domain.SuccessPlan) string {
	if plan == nil {
		return "Success-Plan"
	}
	return fmt.Sprintf("%s-%s-Success-Plan", plan.CustomerName, plan.FiscalYear)
}

func cover(p *domain.SuccessPlan, at time.Time, redact bool) []Item {
	items := []Item{
		{Text: p.CustomerName},
		{Text: p.FiscalYear + " Success Plan"},
	}
	if !redact {
		items = append(items, Item{Text: "Prepared by: " + p.Owner.Name})
	}
	return append(items, Item{Text: "Date: " + at.UTC().Format(domain.DateLayout)})
}

func executiveSummary(p *domain.SuccessPlan) []Item {
	return []Item{
		{Text: "Customer: " + p.CustomerName},
		{Text: fmt.Sprintf("Segment: %s • %s", p.Segment, p.Industry)},
		{Text: "Health Status: " + strings.Replace(string(p.Health), "_", " ", 1)},
		{Text: "Mission: " + p.MissionSummary},
	}
}

func objectives(p *domain.SuccessPlan, redact bool) []Item {
	items := make([]Item, 0, len(p.Objectives))
	for i, o := range p.Objectives {
		var parts []string
		if !redact {
			parts = append(parts, "Owner: "+o.Owner.Name)
		}
		parts = append(parts, "Due: "+o.DueDate, fmt.Sprintf("Progress: %d%%", o.Progress))
		items = append(items, Item{
			Text:   fmt.Sprintf("%d. %s", i+1, o.Title),
			Detail: strings.Join(parts, " | "),
		})
	}
	return items
}

func kpiSnapshot(p *domain.SuccessPlan) []Item {
	v := p.ValueRealized
	return []Item{
		{Text: "Activation Rate: " + v.ActivationRate.Value, Series: append([]float64(nil), v.ActivationRate.Trend...)},
		{Text: "Time-to-Value: " + v.TimeToValue.Value, Series: append([]float64(nil), v.TimeToValue.Trend...)},
	}
}

func timeline(p *domain.SuccessPlan) []Item {
	type entry struct {
		o    domain.Objective
		done bool
	}
	entries := make([]entry, 0, len(p.Objectives)+len(p.CompletedObjectives))
	for _, o := range p.CompletedObjectives {
		entries = append(entries, entry{o: o, done: true})
	}
	for _, o := range p.Objectives {
		entries = append(entries, entry{o: o})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].o.DueDate < entries[j].o.DueDate })
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		detail := fmt.Sprintf("%s, %d%%", e.o.Status.Label(), e.o.Progress)
		if e.done {
			detail = "Completed " + dateOf(e.o.CompletedAt)
		}
		items = append(items, Item{Text: fmt.Sprintf("%s  %s", e.o.DueDate, e.o.Title), Detail: detail})
	}
	return items
}

func risks(p *domain.SuccessPlan, redact bool) []Item {
	if len(p.Risks) == 0 {
		return []Item{{Text: noRisks}}
	}
	items := make([]Item, 0, len(p.Risks))
	for _, r := range p.Risks {
		parts := []string{"Impact: " + string(r.Impact), "Likelihood: " + string(r.Likelihood)}
		if !redact {
			if r.Mitigation != "" {
				parts = append(parts, "Mitigation: "+r.Mitigation)
			}
			if r.Owner != "" {
				parts = append(parts, "Owner: "+r.Owner)
			}
		}
		items = append(items, Item{Text: r.Title, Detail: strings.Join(parts, " | ")})
	}
	return items
}

func numbered(lines []string) []Item {
	items := make([]Item, 0, len(lines))
	for i, l := range lines {
		items = append(items, Item{Text: fmt.Sprintf("%d. %s", i+1, l)})
	}
	return items
}

func appendix(p *domain.SuccessPlan, redact bool) []Item {
	items := make([]Item, 0, len(p.Stakeholders)+1)
	for _, s := range p.Stakeholders {
		text := fmt.Sprintf("%s (%s)", s.Name, s.Role)
		if redact {
			text = s.Role
		}
		items = append(items, Item{Text: text, Detail: "RACI: " + string(s.RACI)})
	}
	if len(p.ProductsInScope) > 0 {
		items = append(items, Item{Text: "Products in scope: " + strings.Join(p.ProductsInScope, ", ")})
	}
	return items
}

// dateOf trims a timestamp to its date part.
func dateOf(ts string) string {
	if len(ts) >= len(domain.DateLayout) {
		return ts[:len(domain.DateLayout)]
	}
	return ts
}
