// Package events defines event types for conversation and workflow lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/intelogroup/clixen/pkg/models"
)

type EventType string

// Kafka topic for all lifecycle events.
const Topic = "clixen.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Conversation lifecycle events.
	ConversationStartedEvent EventType = "conversation.started"
	PhaseChangedEvent        EventType = "conversation.phase_changed"

	// Workflow lifecycle events.
	WorkflowGeneratedEvent EventType = "workflow.generated"
	WorkflowValidatedEvent EventType = "workflow.validated"
	WorkflowDeployedEvent  EventType = "workflow.deployed"
	GenerationFailedEvent  EventType = "generation.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent creates the shared envelope for a lifecycle event.
func NewBaseEvent(eventType EventType, sessionID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
	}
}

type ConversationStarted struct {
	BaseEvent

	UserID string `json:"user_id"`
}

func (e ConversationStarted) GetType() EventType {
	return ConversationStartedEvent
}

type PhaseChanged struct {
	BaseEvent

	From models.Phase `json:"from"`
	To   models.Phase `json:"to"`
}

func (e PhaseChanged) GetType() EventType {
	return PhaseChangedEvent
}

type WorkflowGenerated struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	NodeCount  int    `json:"node_count"`
}

func (e WorkflowGenerated) GetType() EventType {
	return WorkflowGeneratedEvent
}

type WorkflowValidated struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	Valid      bool   `json:"valid"`
	Score      int    `json:"score"`
}

func (e WorkflowValidated) GetType() EventType {
	return WorkflowValidatedEvent
}

type WorkflowDeployed struct {
	BaseEvent

	WorkflowID   string `json:"workflow_id"`
	DeploymentID string `json:"deployment_id,omitempty"`
}

func (e WorkflowDeployed) GetType() EventType {
	return WorkflowDeployedEvent
}

type GenerationFailed struct {
	BaseEvent

	Operation string `json:"operation"`
	ErrorType string `json:"error_type"`
	Attempt   int    `json:"attempt"`
	Error     string `json:"error"`
}

func (e GenerationFailed) GetType() EventType {
	return GenerationFailedEvent
}
