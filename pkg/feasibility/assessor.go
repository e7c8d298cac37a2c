// Package feasibility scores a completed specification against the node
// catalog and domain constraints before generation is allowed to start.
package feasibility

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/registry"
)

// Issue is one feasibility concern.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking"`
}

// Report is the outcome of assessing one specification. Feasible is gated
// purely on the absence of blocking issues; the score is advisory so clear
// but low-scoring plans can still proceed with guidance.
type Report struct {
	Score           int      `json:"score"`
	Feasible        bool     `json:"feasible"`
	Blocking        []Issue  `json:"blocking_issues"`
	Warnings        []Issue  `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// Assessor scores specifications along independent axes.
type Assessor struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewAssessor(reg *registry.Registry, logger *slog.Logger) *Assessor {
	return &Assessor{registry: reg, logger: logger}
}

// Integrations known to require involved auth setup; they cost score but
// never block.
var complexAuthIntegrations = map[string]bool{
	"google_sheets": true,
	"salesforce":    true,
	"jira":          true,
}

// Integrations with aggressive rate limits relative to typical usage.
var rateLimitedIntegrations = map[string]bool{
	"slack":   true,
	"twitter": true,
}

// Assess scores the specification. The axes are independent: capability
// availability, integration/auth complexity, data-flow plausibility and
// rate-limit exposure each subtract from a perfect score.
func (a *Assessor) Assess(ctx context.Context, spec *models.Specification) Report {
	report := Report{Score: 100}

	a.assessCapabilities(spec, &report)
	a.assessIntegrations(spec, &report)
	a.assessDataFlow(spec, &report)

	if report.Score < 0 {
		report.Score = 0
	}

	report.Feasible = len(report.Blocking) == 0

	a.logger.InfoContext(ctx, "Assessed specification feasibility",
		"score", report.Score,
		"feasible", report.Feasible,
		"blocking", len(report.Blocking),
		"warnings", len(report.Warnings))

	return report
}

// assessCapabilities checks every requested action against the node catalog.
// A missing capability with a known substitute is a warning; one with no
// substitute blocks.
func (a *Assessor) assessCapabilities(spec *models.Specification, report *Report) {
	if spec.Trigger.Resolved() {
		triggerType := "trigger:" + spec.Trigger.Type
		if !a.registry.Available(triggerType) {
			if _, ok := a.registry.Substitute(triggerType); ok {
				report.Warnings = append(report.Warnings, Issue{
					Category: "capability",
					Message:  fmt.Sprintf("trigger %q is unavailable but a substitute exists", spec.Trigger.Type),
				})
				report.Score -= 10
			} else {
				report.Blocking = append(report.Blocking, Issue{
					Category: "capability",
					Message:  fmt.Sprintf("trigger %q is not supported", spec.Trigger.Type),
					Blocking: true,
				})
				report.Recommendations = append(report.Recommendations,
					"Choose a schedule, webhook, or manual start instead.")
				report.Score -= 40
			}
		}
	}

	for _, action := range spec.Actions {
		if a.registry.Available(action.Type) {
			continue
		}

		if alt, ok := a.registry.Substitute(action.Type); ok {
			report.Warnings = append(report.Warnings, Issue{
				Category: "capability",
				Message:  fmt.Sprintf("action %q is unavailable; %q can stand in", action.Type, alt.Type),
			})
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("The %s step will run through %s.", action.Type, alt.Name))
			report.Score -= 10

			continue
		}

		report.Blocking = append(report.Blocking, Issue{
			Category: "capability",
			Message:  fmt.Sprintf("action %q has no supported implementation", action.Type),
			Blocking: true,
		})
		report.Score -= 40
	}
}

func (a *Assessor) assessIntegrations(spec *models.Specification, report *Report) {
	for _, integration := range spec.Integrations {
		if complexAuthIntegrations[integration] {
			report.Warnings = append(report.Warnings, Issue{
				Category: "auth",
				Message:  fmt.Sprintf("%s requires OAuth credentials to be configured before the workflow can run", integration),
			})
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Connect your %s account before deploying.", integration))
			report.Score -= 5
		}

		if rateLimitedIntegrations[integration] {
			report.Warnings = append(report.Warnings, Issue{
				Category: "rate_limit",
				Message:  fmt.Sprintf("%s enforces strict rate limits; high-frequency triggers may be throttled", integration),
			})
			report.Score -= 5
		}
	}
}

// assessDataFlow applies plausibility heuristics over the step sequence.
func (a *Assessor) assessDataFlow(spec *models.Specification, report *Report) {
	if len(spec.Actions) > 6 {
		report.Warnings = append(report.Warnings, Issue{
			Category: "data_flow",
			Message:  "workflows beyond six steps are harder to debug and more likely to fail mid-run",
		})
		report.Recommendations = append(report.Recommendations,
			"Consider splitting this into two smaller workflows.")
		report.Score -= 10
	}

	if spec.Complexity == models.ComplexityComplex {
		report.Score -= 10
	}
}
