package models

import "time"

// Phase represents where a conversation sits in the generation pipeline.
type Phase string

const (
	PhaseGathering  Phase = "gathering"  // Collecting the first usable requirements
	PhaseRefining   Phase = "refining"   // Filling gaps with clarifying questions
	PhaseConfirming Phase = "confirming" // Feasibility assessed, awaiting user confirmation
	PhaseGenerating Phase = "generating" // Specification frozen, building the artifact
	PhaseDeploying  Phase = "deploying"  // Artifact ready, awaiting deployment confirmation
	PhaseCompleted  Phase = "completed"  // Terminal; further input starts a reset
)

// phaseTransitions is the allowed edge table. Reset to gathering is allowed
// from every phase and is handled separately.
var phaseTransitions = map[Phase][]Phase{
	PhaseGathering:  {PhaseRefining},
	PhaseRefining:   {PhaseConfirming},
	PhaseConfirming: {PhaseGenerating, PhaseRefining}, // backward edge: user requests changes
	PhaseGenerating: {PhaseDeploying},
	PhaseDeploying:  {PhaseCompleted},
	PhaseCompleted:  {},
}

// ValidTransition reports whether moving from one phase to another is allowed.
// Staying in the current phase is always allowed, as is a reset to gathering.
func ValidTransition(from, to Phase) bool {
	if from == to || to == PhaseGathering {
		return true
	}

	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// Turn roles in the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in a session transcript.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ConversationSession is one user's interaction lifecycle with the pipeline.
// A session is owned by exactly one user and processed by one turn handler at
// a time.
type ConversationSession struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"             validate:"required"`
	Phase         Phase          `json:"phase"`
	Specification *Specification `json:"specification,omitempty"`
	Turns         []Turn         `json:"turns"`
	Frozen        bool           `json:"frozen"` // Specification read-only once generating
	Workflow      *Workflow      `json:"workflow,omitempty"`
	Retry         *ErrorContext  `json:"retry,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewConversationSession creates a fresh session in the gathering phase.
func NewConversationSession(id, userID string) *ConversationSession {
	now := time.Now().UTC()

	return &ConversationSession{
		ID:        id,
		UserID:    userID,
		Phase:     PhaseGathering,
		Turns:     []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn records a transcript entry.
func (s *ConversationSession) AppendTurn(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, At: time.Now().UTC()})
	s.UpdatedAt = time.Now().UTC()
}

// RecentTurns returns up to n most recent transcript entries, oldest first.
func (s *ConversationSession) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}

	return s.Turns[len(s.Turns)-n:]
}

// Freeze marks the specification read-only. Subsequent UpdateSpecification
// calls are no-ops.
func (s *ConversationSession) Freeze() {
	s.Frozen = true
}

// UpdateSpecification replaces the session specification unless it is frozen.
func (s *ConversationSession) UpdateSpecification(spec *Specification) {
	if s.Frozen {
		return
	}

	s.Specification = spec
	s.UpdatedAt = time.Now().UTC()
}

// Reset returns the session to the gathering phase with an empty
// specification. The retry ledger and any in-flight artifact are discarded;
// the transcript is kept for context.
func (s *ConversationSession) Reset() {
	s.Phase = PhaseGathering
	s.Specification = nil
	s.Frozen = false
	s.Workflow = nil
	s.Retry = nil
	s.UpdatedAt = time.Now().UTC()
}
