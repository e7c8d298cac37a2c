package generator

import (
	"log/slog"
	"testing"

	"github.com/intelogroup/clixen/pkg/llm"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() *models.Specification {
	return &models.Specification{
		Trigger: models.TriggerSpec{
			Type:        "schedule",
			Description: "every morning at 9",
			Parameters:  map[string]any{"cron": "0 9 * * *"},
		},
		Actions: []models.ActionSpec{
			{Type: "slack", Description: "send a message", Parameters: map[string]any{"channel": "#general"}},
		},
		Integrations: []string{"slack"},
		Feasible:     true,
	}
}

func newGenerator(stub *llm.StubClient) *Generator {
	reg := registry.NewRegistry(slog.Default())
	for _, def := range registry.BuiltinCatalog() {
		reg.Register(def)
	}

	return NewGenerator(stub, reg, slog.Default(), "")
}

func TestGenerate(t *testing.T) {
	stub := &llm.StubClient{Responses: []string{`{
		"name": "Morning Slack Digest",
		"description": "Sends a slack message every morning",
		"nodes": [
			{"id": "trigger-1", "type": "trigger:schedule", "category": "trigger", "name": "Every morning", "parameters": {"cron": "0 9 * * *"}},
			{"id": "action-1", "type": "slack", "category": "action", "name": "Send message", "parameters": {"channel": "#general"}}
		],
		"connections": [{"source": "trigger-1", "target": "action-1"}]
	}`}}

	gen := newGenerator(stub)

	workflow, err := gen.Generate(t.Context(), testSpec())
	require.NoError(t, err)
	require.NotNil(t, workflow)

	assert.Equal(t, "Morning Slack Digest", workflow.Name)
	assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
	assert.Len(t, workflow.Nodes, 2)
	assert.Len(t, workflow.Connections, 1)

	// The schedule trigger gets an activation preview.
	trigger := workflow.NodeByID("trigger-1")
	require.NotNil(t, trigger)
	preview, ok := trigger.Parameters["next_activations"].([]string)
	require.True(t, ok)
	assert.Len(t, preview, schedulePreviewCount)
}

func TestGenerate_DuplicateNodeIDsFailBeforeValidation(t *testing.T) {
	stub := &llm.StubClient{Responses: []string{`{
		"name": "Broken",
		"nodes": [
			{"id": "node-1", "type": "trigger:manual", "category": "trigger", "name": "Start"},
			{"id": "node-1", "type": "slack", "category": "action", "name": "Send"}
		],
		"connections": []
	}`}}

	gen := newGenerator(stub)

	_, err := gen.Generate(t.Context(), testSpec())
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.Contains(t, err.Error(), "duplicate node identifier")
}

func TestGenerate_DanglingConnection(t *testing.T) {
	stub := &llm.StubClient{Responses: []string{`{
		"name": "Broken",
		"nodes": [{"id": "node-1", "type": "trigger:manual", "category": "trigger", "name": "Start"}],
		"connections": [{"source": "node-1", "target": "ghost"}]
	}`}}

	gen := newGenerator(stub)

	_, err := gen.Generate(t.Context(), testSpec())
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.Contains(t, err.Error(), "does not resolve")
}

func TestGenerate_NoEntryPoint(t *testing.T) {
	stub := &llm.StubClient{Responses: []string{`{
		"name": "Cycle",
		"nodes": [
			{"id": "a", "type": "transform", "category": "action", "name": "A"},
			{"id": "b", "type": "transform", "category": "action", "name": "B"}
		],
		"connections": [
			{"source": "a", "target": "b"},
			{"source": "b", "target": "a"}
		]
	}`}}

	gen := newGenerator(stub)

	_, err := gen.Generate(t.Context(), testSpec())
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.Contains(t, err.Error(), "entry point")
}

func TestGenerate_UnparseableOutput(t *testing.T) {
	stub := &llm.StubClient{Responses: []string{"here is your workflow!"}}
	gen := newGenerator(stub)

	_, err := gen.Generate(t.Context(), testSpec())
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}

func TestBuildTemplate(t *testing.T) {
	workflow := BuildTemplate(testSpec())

	require.NoError(t, CheckGraph(workflow))
	assert.Len(t, workflow.Nodes, 2)
	assert.Len(t, workflow.Connections, 1)
	assert.Equal(t, models.NodeTypeTriggerSchedule, workflow.Nodes[0].Type)
	assert.Equal(t, true, workflow.Metadata["template"])
}

func TestBuildTemplate_NoActionsGetsNoop(t *testing.T) {
	spec := &models.Specification{
		Trigger: models.TriggerSpec{Type: "manual"},
	}

	workflow := BuildTemplate(spec)

	require.NoError(t, CheckGraph(workflow))
	require.Len(t, workflow.Nodes, 2)
	assert.Equal(t, "noop", workflow.Nodes[1].Type)
}

func TestBuildTemplate_InvalidCronAnnotated(t *testing.T) {
	spec := testSpec()
	spec.Trigger.Parameters = map[string]any{"cron": "not a cron"}

	workflow := BuildTemplate(spec)

	require.NoError(t, CheckGraph(workflow))
	trigger := workflow.Nodes[0]
	assert.NotEmpty(t, trigger.Parameters["cron_error"])
	assert.Nil(t, trigger.Parameters["next_activations"])
}

func TestRegenerateNodeIDs(t *testing.T) {
	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			{ID: "node-1", Type: "trigger:manual", Category: models.CategoryTypeTrigger, Name: "Start"},
			{ID: "node-1", Type: "slack", Category: models.CategoryTypeAction, Name: "Send"},
		},
		Connections: []*models.Connection{
			{ID: "conn-1", Source: "node-1", Target: "node-1"},
		},
	}

	counter := 0
	RegenerateNodeIDs(workflow, func() string {
		counter++

		return "regen-" + string(rune('0'+counter))
	})

	require.NoError(t, CheckGraph(workflow))
	assert.NotEqual(t, workflow.Nodes[0].ID, workflow.Nodes[1].ID)
}
