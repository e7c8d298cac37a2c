package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from    Phase
		to      Phase
		allowed bool
	}{
		{PhaseGathering, PhaseRefining, true},
		{PhaseRefining, PhaseConfirming, true},
		{PhaseConfirming, PhaseGenerating, true},
		{PhaseConfirming, PhaseRefining, true}, // user requested changes
		{PhaseGenerating, PhaseDeploying, true},
		{PhaseDeploying, PhaseCompleted, true},
		{PhaseGathering, PhaseConfirming, false},
		{PhaseRefining, PhaseGenerating, false},
		{PhaseDeploying, PhaseRefining, false},
		{PhaseCompleted, PhaseDeploying, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, ValidTransition(tt.from, tt.to))
		})
	}

	// Holding the current phase and resetting are always allowed.
	for _, phase := range []Phase{PhaseGathering, PhaseRefining, PhaseConfirming, PhaseGenerating, PhaseDeploying, PhaseCompleted} {
		assert.True(t, ValidTransition(phase, phase))
		assert.True(t, ValidTransition(phase, PhaseGathering))
	}
}

func TestConversationSession_Freeze(t *testing.T) {
	session := NewConversationSession("session-1", "user-1")
	spec := NewSpecification()
	session.UpdateSpecification(spec)
	require.Same(t, spec, session.Specification)

	session.Freeze()

	replacement := NewSpecification()
	replacement.Trigger.Type = "webhook"
	session.UpdateSpecification(replacement)

	// Frozen sessions ignore specification updates.
	assert.Same(t, spec, session.Specification)
}

func TestConversationSession_Reset(t *testing.T) {
	phases := []Phase{PhaseGathering, PhaseRefining, PhaseConfirming, PhaseGenerating, PhaseDeploying, PhaseCompleted}

	for _, phase := range phases {
		t.Run(string(phase), func(t *testing.T) {
			session := NewConversationSession("session-1", "user-1")
			session.Phase = phase
			session.UpdateSpecification(NewSpecification())
			session.Freeze()
			session.Workflow = &Workflow{ID: "wf-1"}
			session.Retry = NewErrorContext("generate")
			session.AppendTurn(RoleUser, "build me something")

			session.Reset()

			assert.Equal(t, PhaseGathering, session.Phase)
			assert.Nil(t, session.Specification)
			assert.False(t, session.Frozen)
			assert.Nil(t, session.Workflow)
			assert.Nil(t, session.Retry)
			assert.Len(t, session.Turns, 1, "transcript is kept across resets")
		})
	}
}

func TestConversationSession_RecentTurns(t *testing.T) {
	session := NewConversationSession("session-1", "user-1")
	session.AppendTurn(RoleUser, "one")
	session.AppendTurn(RoleAssistant, "two")
	session.AppendTurn(RoleUser, "three")

	recent := session.RecentTurns(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)

	assert.Len(t, session.RecentTurns(10), 3)
	assert.Len(t, session.RecentTurns(0), 3)
}

func TestErrorContext_Ceiling(t *testing.T) {
	ectx := NewErrorContext("generate")
	assert.False(t, ectx.Exhausted())

	ectx.RecordAttempt(ErrorTypeStructure, "duplicate node id", "regenerate_ids")
	ectx.RecordAttempt(ErrorTypeStructure, "dangling connection", "simplify")
	assert.False(t, ectx.Exhausted())

	ectx.RecordAttempt(ErrorTypeUnknown, "still failing", "")
	assert.True(t, ectx.Exhausted())
	assert.Equal(t, MaxAttempts, ectx.AttemptNumber)
	assert.Len(t, ectx.Previous, 3)
}

func TestWorkflow_EntryPoints(t *testing.T) {
	wf := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "trigger-1", Type: NodeTypeTriggerSchedule, Category: CategoryTypeTrigger, Name: "Schedule"},
			{ID: "action-1", Type: "slack", Category: CategoryTypeAction, Name: "Notify"},
		},
		Connections: []*Connection{
			{ID: "conn-1", Source: "trigger-1", Target: "action-1"},
		},
	}

	entries := wf.EntryPoints()
	require.Len(t, entries, 1)
	assert.Equal(t, "trigger-1", entries[0].ID)

	require.Len(t, wf.TriggerNodes(), 1)
	assert.Nil(t, wf.NodeByID("missing"))
	assert.NotNil(t, wf.NodeByID("action-1"))
}
