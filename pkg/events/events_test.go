package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelogroup/clixen/pkg/models"
)

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(PhaseChangedEvent, "sess-1")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, PhaseChangedEvent, event.Type)
	assert.Equal(t, "sess-1", event.SessionID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPhaseChangedRoundTrip(t *testing.T) {
	event := PhaseChanged{
		BaseEvent: NewBaseEvent(PhaseChangedEvent, "sess-1"),
		From:      models.PhaseGathering,
		To:        models.PhaseRefining,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded PhaseChanged
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, models.PhaseGathering, decoded.From)
	assert.Equal(t, models.PhaseRefining, decoded.To)
	assert.Equal(t, PhaseChangedEvent, decoded.GetType())
}

func TestEventTypesAreDistinct(t *testing.T) {
	types := []EventType{
		ConversationStarted{}.GetType(),
		PhaseChanged{}.GetType(),
		WorkflowGenerated{}.GetType(),
		WorkflowValidated{}.GetType(),
		WorkflowDeployed{}.GetType(),
		GenerationFailed{}.GetType(),
	}

	seen := make(map[EventType]bool)
	for _, eventType := range types {
		assert.False(t, seen[eventType], "duplicate event type %s", eventType)
		seen[eventType] = true
	}
}
