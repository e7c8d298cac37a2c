package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelogroup/clixen/pkg/log"
	"github.com/intelogroup/clixen/pkg/models"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()

	aggregator, err := NewAggregator(log.WithModule("validation_test"))
	require.NoError(t, err)

	return aggregator
}

func cleanWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:     "wf-1",
		Name:   "Daily report",
		Status: models.WorkflowStatusDraft,
		Nodes: []*models.WorkflowNode{
			{ID: "trigger-1", Type: models.NodeTypeTriggerSchedule, Category: models.CategoryTypeTrigger, Parameters: map[string]any{"cron": "0 9 * * *"}},
			{ID: "action-1", Type: "google_sheets", Category: models.CategoryTypeAction, Parameters: map[string]any{"spreadsheet_id": "{{sheets.report}}"}},
			{ID: "action-2", Type: "email", Category: models.CategoryTypeAction, Parameters: map[string]any{"to": "team@example.com"}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "trigger-1", Target: "action-1"},
			{ID: "c2", Source: "action-1", Target: "action-2"},
		},
	}
}

func TestValidateCleanWorkflow(t *testing.T) {
	aggregator := newTestAggregator(t)

	verdict := aggregator.Validate(t.Context(), cleanWorkflow())

	assert.True(t, verdict.Valid)
	assert.Equal(t, 100, verdict.Structural)
	assert.Equal(t, 100, verdict.Performance)
	assert.Equal(t, 100, verdict.Security)
	assert.Equal(t, 100, verdict.Score)
	assert.Empty(t, verdict.Issues)
}

func TestValidateOverallScoreIsMinimum(t *testing.T) {
	aggregator := newTestAggregator(t)

	workflow := cleanWorkflow()
	workflow.Nodes[2].Parameters["api_key"] = "sk_live_1234567890abcdef1234"

	verdict := aggregator.Validate(t.Context(), workflow)

	assert.False(t, verdict.Valid)
	assert.Equal(t, 100, verdict.Structural)
	assert.Less(t, verdict.Security, verdict.Structural)
	assert.Equal(t, verdict.Security, verdict.Score, "overall must be the minimum dimension, not an average")
	assert.True(t, verdict.HasBlockingIssues())
}

func TestValidateEmbeddedCredentialBlocks(t *testing.T) {
	aggregator := newTestAggregator(t)

	workflow := cleanWorkflow()
	workflow.Nodes[1].Parameters["password"] = "hunter2"

	verdict := aggregator.Validate(t.Context(), workflow)

	require.False(t, verdict.Valid)
	require.Len(t, verdict.Issues, 1)
	assert.Equal(t, models.SeverityCritical, verdict.Issues[0].Severity)
	assert.Equal(t, "security", verdict.Issues[0].Category)
	assert.True(t, verdict.Issues[0].Blocking)
}

func TestValidateCredentialReferencePasses(t *testing.T) {
	aggregator := newTestAggregator(t)

	workflow := cleanWorkflow()
	workflow.Nodes[1].Parameters["api_key"] = "vault:sheets/report-bot"

	verdict := aggregator.Validate(t.Context(), workflow)

	assert.True(t, verdict.Valid)
	assert.Equal(t, 100, verdict.Security)
}

func TestValidateUnauthenticatedWebhookWarns(t *testing.T) {
	aggregator := newTestAggregator(t)

	workflow := cleanWorkflow()
	workflow.Nodes[0].Type = models.NodeTypeTriggerWebhook
	workflow.Nodes[0].Parameters = map[string]any{"path": "/hooks/report"}

	verdict := aggregator.Validate(t.Context(), workflow)

	assert.True(t, verdict.Valid, "a warning alone must not block")
	assert.Equal(t, 90, verdict.Security)
	require.Len(t, verdict.Warnings, 1)
	assert.Equal(t, "security", verdict.Warnings[0].Category)
}

func TestValidateDanglingConnectionBlocks(t *testing.T) {
	aggregator := newTestAggregator(t)

	workflow := cleanWorkflow()
	workflow.Connections = append(workflow.Connections, &models.Connection{ID: "c3", Source: "action-2", Target: "ghost"})

	verdict := aggregator.Validate(t.Context(), workflow)

	assert.False(t, verdict.Valid)
	assert.Equal(t, 75, verdict.Structural)
	assert.Equal(t, 75, verdict.Score)
}

func TestValidateSchemaViolationBlocks(t *testing.T) {
	aggregator := newTestAggregator(t)

	workflow := cleanWorkflow()
	workflow.Name = ""

	verdict := aggregator.Validate(t.Context(), workflow)

	assert.False(t, verdict.Valid)
	assert.Less(t, verdict.Structural, 100)
}

func TestValidatePerformanceWarningsDegradeOnly(t *testing.T) {
	aggregator := newTestAggregator(t)

	workflow := cleanWorkflow()
	prev := "trigger-1"
	for i := 0; i < 10; i++ {
		id := workflow.Nodes[len(workflow.Nodes)-1].ID + "x"
		workflow.Nodes = append(workflow.Nodes, &models.WorkflowNode{
			ID: id, Type: "http_request", Category: models.CategoryTypeAction,
			Parameters: map[string]any{"url": "https://api.example.com"},
		})
		workflow.Connections = append(workflow.Connections, &models.Connection{
			ID: "cx" + id, Source: prev, Target: id,
		})
		prev = id
	}

	verdict := aggregator.Validate(t.Context(), workflow)

	assert.True(t, verdict.Valid, "performance findings are advisory")
	assert.Less(t, verdict.Performance, 100)
	assert.NotEmpty(t, verdict.Warnings)
	assert.Equal(t, verdict.Performance, verdict.Score)
}

func TestLongestChainHandlesCycles(t *testing.T) {
	workflow := cleanWorkflow()
	workflow.Connections = append(workflow.Connections, &models.Connection{ID: "c3", Source: "action-2", Target: "action-1"})

	depth := longestChain(workflow)

	assert.Equal(t, 3, depth)
}
