package web

import (
	"time"

	"github.com/intelogroup/clixen/pkg/models"
)

// StartConversationRequest opens a new conversation session for a user.
type StartConversationRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// PostMessageRequest carries one user utterance into an existing session.
type PostMessageRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// SessionResponse is the API shape of a conversation session. The raw
// transcript is included so clients can rebuild the chat view.
type SessionResponse struct {
	ID            string                `json:"id"`
	UserID        string                `json:"user_id"`
	Phase         models.Phase          `json:"phase"`
	Frozen        bool                  `json:"frozen"`
	Specification *models.Specification `json:"specification,omitempty"`
	Turns         []models.Turn         `json:"turns"`
	WorkflowID    string                `json:"workflow_id,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func TransformSessionResponse(session *models.ConversationSession) SessionResponse {
	resp := SessionResponse{
		ID:            session.ID,
		UserID:        session.UserID,
		Phase:         session.Phase,
		Frozen:        session.Frozen,
		Specification: session.Specification,
		Turns:         session.Turns,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}

	if session.Workflow != nil {
		resp.WorkflowID = session.Workflow.ID
	}

	return resp
}
