// Package recovery decides what to do when a pipeline step fails: retry with
// a correction, retry with an alternative approach, or stop and explain.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/intelogroup/clixen/pkg/extraction"
	"github.com/intelogroup/clixen/pkg/generator"
	"github.com/intelogroup/clixen/pkg/llm"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/registry"
)

// Action is what the caller should do next.
type Action string

const (
	ActionRetryCorrected   Action = "retry_corrected"   // Retry the same approach with a targeted fix
	ActionRetryAlternative Action = "retry_alternative" // Retry with a different approach
	ActionTerminal         Action = "terminal"          // Stop and explain to the user
)

// Resolution is the coordinator's decision for one failure.
type Resolution struct {
	Action        Action
	Strategy      string                // Recorded in the attempt ledger
	Explanation   string                // User-facing, set on terminal resolutions
	Specification *models.Specification // Replacement spec, set when the alternative simplifies
	Backoff       time.Duration         // Wait before retrying, set for rate limits
}

// CapabilityError reports a generated workflow referencing a node type the
// catalog cannot serve.
type CapabilityError struct {
	NodeType string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("node type %q is not available", e.NodeType)
}

// Coordinator maps failures to recovery strategies within the per-operation
// retry budget.
type Coordinator struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewCoordinator(reg *registry.Registry, logger *slog.Logger) *Coordinator {
	return &Coordinator{registry: reg, logger: logger}
}

// Classify maps an error to its retry category.
func (c *Coordinator) Classify(err error) models.ErrorType {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return models.ErrorTypeRateLimit
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return models.ErrorTypeTimeout
	case isCapabilityError(err):
		return models.ErrorTypeCapability
	case generator.IsGenerationError(err), extraction.IsExtractionError(err), llm.IsParseError(err):
		return models.ErrorTypeStructure
	default:
		return models.ErrorTypeUnknown
	}
}

// Resolve records the failure in the ledger and picks the next move. The
// budget is three attempts per operation: the first failure gets a targeted
// correction, the second an alternative approach, the third a terminal
// explanation. Rate limits and timeouts are transient, so they retry
// unchanged with backoff until the budget runs out.
func (c *Coordinator) Resolve(ctx context.Context, ectx *models.ErrorContext, spec *models.Specification, err error) Resolution {
	errType := c.Classify(err)

	resolution := c.decide(ectx, spec, errType, err)
	ectx.RecordAttempt(errType, err.Error(), resolution.Strategy)

	c.logger.InfoContext(ctx, "Resolved pipeline failure",
		"operation", ectx.Operation,
		"error_type", errType,
		"attempt", ectx.AttemptNumber,
		"action", resolution.Action,
		"strategy", resolution.Strategy)

	return resolution
}

func (c *Coordinator) decide(ectx *models.ErrorContext, spec *models.Specification, errType models.ErrorType, err error) Resolution {
	if ectx.AttemptNumber >= models.MaxAttempts-1 {
		return c.terminal(ectx, errType, err)
	}

	switch errType {
	case models.ErrorTypeRateLimit:
		return Resolution{
			Action:   ActionRetryCorrected,
			Strategy: "backoff",
			Backoff:  backoffFor(ectx.AttemptNumber),
		}

	case models.ErrorTypeTimeout:
		return Resolution{
			Action:   ActionRetryCorrected,
			Strategy: "retry_after_timeout",
			Backoff:  backoffFor(ectx.AttemptNumber),
		}

	case models.ErrorTypeCapability:
		return c.resolveCapability(ectx, spec, err)

	case models.ErrorTypeStructure:
		if ectx.AttemptNumber == 0 {
			return Resolution{Action: ActionRetryCorrected, Strategy: "constrain_output"}
		}

		return c.simplify(spec)

	default:
		if ectx.AttemptNumber == 0 {
			return Resolution{Action: ActionRetryCorrected, Strategy: "plain_retry"}
		}

		return c.simplify(spec)
	}
}

// resolveCapability swaps the unavailable node type for a registered
// substitute when one exists, otherwise falls back to simplification.
func (c *Coordinator) resolveCapability(ectx *models.ErrorContext, spec *models.Specification, err error) Resolution {
	var capErr *CapabilityError
	if errors.As(err, &capErr) && c.registry != nil {
		if substitute, ok := c.registry.Substitute(capErr.NodeType); ok {
			replacement := substituteAction(spec, capErr.NodeType, substitute.Type)

			return Resolution{
				Action:        ActionRetryAlternative,
				Strategy:      "substitute:" + substitute.Type,
				Specification: replacement,
			}
		}
	}

	if ectx.AttemptNumber == 0 {
		return c.simplify(spec)
	}

	return c.terminal(ectx, models.ErrorTypeCapability, err)
}

// simplify trims the specification to its trigger and first action so the
// next attempt generates the smallest workflow that still does something.
func (c *Coordinator) simplify(spec *models.Specification) Resolution {
	if spec == nil || len(spec.Actions) <= 1 {
		return Resolution{Action: ActionRetryAlternative, Strategy: "template_fallback"}
	}

	reduced := spec.Clone()
	reduced.Actions = reduced.Actions[:1]
	reduced.Complexity = models.ComplexitySimple

	return Resolution{
		Action:        ActionRetryAlternative,
		Strategy:      "simplify",
		Specification: reduced,
	}
}

func (c *Coordinator) terminal(ectx *models.ErrorContext, errType models.ErrorType, err error) Resolution {
	return Resolution{
		Action:      ActionTerminal,
		Strategy:    "explain",
		Explanation: explainFailure(ectx, errType, err),
	}
}

// CorrectWorkflow repairs the structural defects the graph check rejects:
// duplicate or missing node identifiers, a missing trigger, an empty action
// set. It mutates the workflow in place and reports whether anything changed.
func (c *Coordinator) CorrectWorkflow(workflow *models.Workflow) bool {
	changed := false

	seen := make(map[string]bool, len(workflow.Nodes))
	duplicated := false
	for _, node := range workflow.Nodes {
		if node.ID == "" || seen[node.ID] {
			duplicated = true

			break
		}

		seen[node.ID] = true
	}

	if duplicated {
		generator.RegenerateNodeIDs(workflow, uuid.NewString)
		changed = true
	}

	if len(workflow.TriggerNodes()) == 0 {
		trigger := &models.WorkflowNode{
			ID:       uuid.NewString(),
			Type:     models.NodeTypeTriggerManual,
			Category: models.CategoryTypeTrigger,
			Name:     "Manual trigger",
		}
		workflow.Nodes = append([]*models.WorkflowNode{trigger}, workflow.Nodes...)

		if first := firstActionNode(workflow); first != nil {
			workflow.Connections = append(workflow.Connections, &models.Connection{
				ID:     uuid.NewString(),
				Source: trigger.ID,
				Target: first.ID,
			})
		}

		changed = true
	}

	if firstActionNode(workflow) == nil {
		noop := &models.WorkflowNode{
			ID:       uuid.NewString(),
			Type:     "noop",
			Category: models.CategoryTypeAction,
			Name:     "Placeholder step",
		}
		workflow.Nodes = append(workflow.Nodes, noop)

		if triggers := workflow.TriggerNodes(); len(triggers) > 0 {
			workflow.Connections = append(workflow.Connections, &models.Connection{
				ID:     uuid.NewString(),
				Source: triggers[0].ID,
				Target: noop.ID,
			})
		}

		changed = true
	}

	return changed
}

func firstActionNode(workflow *models.Workflow) *models.WorkflowNode {
	for _, node := range workflow.Nodes {
		if node.Category == models.CategoryTypeAction {
			return node
		}
	}

	return nil
}

func substituteAction(spec *models.Specification, from, to string) *models.Specification {
	if spec == nil {
		return nil
	}

	replacement := spec.Clone()
	for i := range replacement.Actions {
		if replacement.Actions[i].Type == from {
			replacement.Actions[i].Type = to
		}
	}

	return replacement
}

func backoffFor(attempt int) time.Duration {
	return time.Duration(attempt+1) * 2 * time.Second
}

func explainFailure(ectx *models.ErrorContext, errType models.ErrorType, err error) string {
	switch errType {
	case models.ErrorTypeRateLimit:
		return "The language model provider is rate limiting requests. Please wait a minute and try again."
	case models.ErrorTypeTimeout:
		return "The language model did not respond in time after several attempts. Please try again later."
	case models.ErrorTypeCapability:
		return fmt.Sprintf("This automation needs a capability that is not available yet (%v), and no substitute exists. Try describing the step differently.", err)
	case models.ErrorTypeStructure:
		return fmt.Sprintf("I could not produce a valid workflow for this request after %d attempts. Try breaking the automation into smaller steps.", models.MaxAttempts)
	default:
		return fmt.Sprintf("Something went wrong while working on %q and retrying did not help. Please try again or rephrase the request.", ectx.Operation)
	}
}

func isCapabilityError(err error) bool {
	var capErr *CapabilityError

	return errors.As(err, &capErr)
}
