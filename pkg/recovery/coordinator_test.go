package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelogroup/clixen/pkg/generator"
	"github.com/intelogroup/clixen/pkg/llm"
	"github.com/intelogroup/clixen/pkg/log"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/registry"
)

func newCoordinator() *Coordinator {
	return NewCoordinator(registry.NewBuiltinRegistry(log.WithModule("registry_test")), log.WithModule("recovery_test"))
}

func multiActionSpec() *models.Specification {
	spec := models.NewSpecification()
	spec.Trigger = models.TriggerSpec{Type: "webhook", Description: "on form submit"}
	spec.Actions = []models.ActionSpec{
		{Type: "http_request", Description: "post the payload"},
		{Type: "email", Description: "notify the team"},
	}
	spec.Complexity = models.ComplexityModerate

	return spec
}

func TestClassify(t *testing.T) {
	coordinator := newCoordinator()

	tests := []struct {
		name string
		err  error
		want models.ErrorType
	}{
		{"rate limit", llm.ErrRateLimited, models.ErrorTypeRateLimit},
		{"timeout sentinel", llm.ErrTimeout, models.ErrorTypeTimeout},
		{"context deadline", context.DeadlineExceeded, models.ErrorTypeTimeout},
		{"generation", &generator.GenerationError{Reason: "no entry point"}, models.ErrorTypeStructure},
		{"parse", &llm.ParseError{Raw: "not json", Err: errors.New("bad")}, models.ErrorTypeStructure},
		{"capability", &CapabilityError{NodeType: "telepathy"}, models.ErrorTypeCapability},
		{"unknown", errors.New("boom"), models.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coordinator.Classify(tt.err))
		})
	}
}

func TestResolveEscalation(t *testing.T) {
	coordinator := newCoordinator()
	ectx := models.NewErrorContext("generate")
	spec := multiActionSpec()
	failure := &generator.GenerationError{Reason: "duplicate node identifier"}

	first := coordinator.Resolve(t.Context(), ectx, spec, failure)
	assert.Equal(t, ActionRetryCorrected, first.Action)
	assert.Equal(t, 1, ectx.AttemptNumber)

	second := coordinator.Resolve(t.Context(), ectx, spec, failure)
	assert.Equal(t, ActionRetryAlternative, second.Action)
	assert.Equal(t, "simplify", second.Strategy)

	third := coordinator.Resolve(t.Context(), ectx, spec, failure)
	assert.Equal(t, ActionTerminal, third.Action)
	assert.NotEmpty(t, third.Explanation)
	assert.True(t, ectx.Exhausted())
}

func TestResolveSimplifyTrimsToFirstAction(t *testing.T) {
	coordinator := newCoordinator()
	ectx := models.NewErrorContext("generate")
	ectx.RecordAttempt(models.ErrorTypeStructure, "first failure", "constrain_output")

	spec := multiActionSpec()
	resolution := coordinator.Resolve(t.Context(), ectx, spec, &generator.GenerationError{Reason: "still broken"})

	require.Equal(t, ActionRetryAlternative, resolution.Action)
	require.NotNil(t, resolution.Specification)
	assert.Len(t, resolution.Specification.Actions, 1)
	assert.Equal(t, models.ComplexitySimple, resolution.Specification.Complexity)
	assert.Len(t, spec.Actions, 2, "the original specification must not be mutated")
}

func TestResolveRateLimitBacksOff(t *testing.T) {
	coordinator := newCoordinator()
	ectx := models.NewErrorContext("extract")

	resolution := coordinator.Resolve(t.Context(), ectx, nil, llm.ErrRateLimited)

	assert.Equal(t, ActionRetryCorrected, resolution.Action)
	assert.Equal(t, "backoff", resolution.Strategy)
	assert.Greater(t, resolution.Backoff, time.Duration(0))
}

func TestResolveCapabilitySubstitutes(t *testing.T) {
	coordinator := newCoordinator()
	ectx := models.NewErrorContext("generate")

	spec := models.NewSpecification()
	spec.Trigger = models.TriggerSpec{Type: "webhook", Description: "on alert"}
	spec.Actions = []models.ActionSpec{{Type: "slack", Description: "ping the channel"}}

	resolution := coordinator.Resolve(t.Context(), ectx, spec, &CapabilityError{NodeType: "slack"})

	require.Equal(t, ActionRetryAlternative, resolution.Action)
	assert.Equal(t, "substitute:http_request", resolution.Strategy)
	require.NotNil(t, resolution.Specification)
	assert.Equal(t, "http_request", resolution.Specification.Actions[0].Type)
}

func TestResolveCapabilityWithoutSubstituteTerminatesEventually(t *testing.T) {
	coordinator := newCoordinator()
	ectx := models.NewErrorContext("generate")
	ectx.RecordAttempt(models.ErrorTypeCapability, "first failure", "simplify")

	resolution := coordinator.Resolve(t.Context(), ectx, nil, &CapabilityError{NodeType: "telepathy"})

	assert.Equal(t, ActionTerminal, resolution.Action)
	assert.Contains(t, resolution.Explanation, "telepathy")
}

func TestCorrectWorkflowAddsManualTriggerAndNoop(t *testing.T) {
	coordinator := newCoordinator()
	workflow := &models.Workflow{ID: "wf-1", Name: "Broken"}

	changed := coordinator.CorrectWorkflow(workflow)

	require.True(t, changed)
	require.Len(t, workflow.TriggerNodes(), 1)
	assert.Equal(t, models.NodeTypeTriggerManual, workflow.TriggerNodes()[0].Type)
	require.NotNil(t, firstActionNode(workflow))
	assert.Equal(t, "noop", firstActionNode(workflow).Type)
	require.Len(t, workflow.Connections, 1)
	assert.NoError(t, generator.CheckGraph(workflow))
}

func TestCorrectWorkflowRegeneratesDuplicateIDs(t *testing.T) {
	coordinator := newCoordinator()
	workflow := &models.Workflow{
		ID:   "wf-1",
		Name: "Duplicated",
		Nodes: []*models.WorkflowNode{
			{ID: "n1", Type: models.NodeTypeTriggerManual, Category: models.CategoryTypeTrigger},
			{ID: "n1", Type: "noop", Category: models.CategoryTypeAction},
		},
	}

	changed := coordinator.CorrectWorkflow(workflow)

	require.True(t, changed)
	assert.NotEqual(t, workflow.Nodes[0].ID, workflow.Nodes[1].ID)
}

func TestCorrectWorkflowNoopOnValidGraph(t *testing.T) {
	coordinator := newCoordinator()
	workflow := &models.Workflow{
		ID:   "wf-1",
		Name: "Fine",
		Nodes: []*models.WorkflowNode{
			{ID: "t1", Type: models.NodeTypeTriggerManual, Category: models.CategoryTypeTrigger},
			{ID: "a1", Type: "noop", Category: models.CategoryTypeAction},
		},
		Connections: []*models.Connection{{ID: "c1", Source: "t1", Target: "a1"}},
	}

	assert.False(t, coordinator.CorrectWorkflow(workflow))
}
