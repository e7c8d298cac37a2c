// Package validation runs independent structural, performance and security
// checks over a candidate workflow and combines them into one verdict.
package validation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/intelogroup/clixen/pkg/models"
)

// checkResult is the outcome of one validation dimension.
type checkResult struct {
	Score    int
	Issues   []models.ValidationIssue
	Warnings []models.ValidationWarning
}

// Aggregator owns the three validators and the combination rule.
type Aggregator struct {
	structural *structuralValidator
	logger     *slog.Logger
}

func NewAggregator(logger *slog.Logger) (*Aggregator, error) {
	structural, err := newStructuralValidator()
	if err != nil {
		return nil, err
	}

	return &Aggregator{structural: structural, logger: logger}, nil
}

// Validate produces the aggregate verdict. The overall score is the minimum
// of the per-dimension scores: a workflow that is structurally perfect but
// critically insecure must not pass, so an average would be wrong here.
// Performance and security inspect the same immutable artifact and run
// concurrently; structural runs first since the other two assume a sane graph.
func (a *Aggregator) Validate(ctx context.Context, workflow *models.Workflow) models.ValidationVerdict {
	structural := a.structural.check(workflow)

	var (
		wg          sync.WaitGroup
		performance checkResult
		security    checkResult
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		performance = checkPerformance(workflow)
	}()

	go func() {
		defer wg.Done()

		security = checkSecurity(workflow)
	}()

	wg.Wait()

	verdict := models.ValidationVerdict{
		Structural:  structural.Score,
		Performance: performance.Score,
		Security:    security.Score,
		Score:       minScore(structural.Score, performance.Score, security.Score),
	}

	for _, result := range []checkResult{structural, performance, security} {
		verdict.Issues = append(verdict.Issues, result.Issues...)
		verdict.Warnings = append(verdict.Warnings, result.Warnings...)
	}

	verdict.Valid = !verdict.HasBlockingIssues()

	a.logger.InfoContext(ctx, "Validated workflow candidate",
		"workflow_id", workflow.ID,
		"valid", verdict.Valid,
		"score", verdict.Score,
		"structural", verdict.Structural,
		"performance", verdict.Performance,
		"security", verdict.Security)

	return verdict
}

func minScore(scores ...int) int {
	lowest := scores[0]
	for _, score := range scores[1:] {
		if score < lowest {
			lowest = score
		}
	}

	return lowest
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}

	return score
}
