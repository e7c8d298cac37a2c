// Package conversation orchestrates the dialogue that turns free-form user
// requests into validated, deployable workflows. It owns the phase state
// machine and wires the pipeline stages together.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/intelogroup/clixen/pkg/deploy"
	"github.com/intelogroup/clixen/pkg/eventbus"
	"github.com/intelogroup/clixen/pkg/events"
	"github.com/intelogroup/clixen/pkg/feasibility"
	"github.com/intelogroup/clixen/pkg/intent"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/otelhelper"
	"github.com/intelogroup/clixen/pkg/persistence"
	"github.com/intelogroup/clixen/pkg/recovery"
	"github.com/intelogroup/clixen/pkg/registry"
)

// Extractor pulls structured requirements out of an utterance.
type Extractor interface {
	Extract(ctx context.Context, utterance string, turns []models.Turn) (*models.Specification, error)
}

// Assessor judges whether a specification can be built.
type Assessor interface {
	Assess(ctx context.Context, spec *models.Specification) feasibility.Report
}

// Generator produces a workflow artifact from a frozen specification.
type Generator interface {
	Generate(ctx context.Context, spec *models.Specification) (*models.Workflow, error)
}

// Validator scores a generated workflow.
type Validator interface {
	Validate(ctx context.Context, workflow *models.Workflow) models.ValidationVerdict
}

// Reply is what the pipeline says back after processing one message.
type Reply struct {
	SessionID string                    `json:"session_id"`
	Phase     models.Phase              `json:"phase"`
	Message   string                    `json:"message"`
	Questions []string                  `json:"questions,omitempty"`
	Workflow  *models.Workflow          `json:"workflow,omitempty"`
	Verdict   *models.ValidationVerdict `json:"verdict,omitempty"`
	Receipt   *deploy.Receipt           `json:"receipt,omitempty"`
}

// Service is the conversation orchestrator. One instance serves all sessions;
// a per-session lock serializes turns so concurrent messages for the same
// session cannot interleave phase transitions.
type Service struct {
	classifier intent.Classifier
	extractor  Extractor
	assessor   Assessor
	generator  Generator
	validator  Validator
	recovery   *recovery.Coordinator
	deployer   deploy.Deployer
	store      persistence.Persistence
	publisher  eventbus.EventPublisher
	registry   *registry.Registry
	tracer     trace.Tracer
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Config carries the collaborators for NewService.
type Config struct {
	Classifier intent.Classifier
	Extractor  Extractor
	Assessor   Assessor
	Generator  Generator
	Validator  Validator
	Recovery   *recovery.Coordinator
	Deployer   deploy.Deployer
	Store      persistence.Persistence
	Publisher  eventbus.EventPublisher
	Registry   *registry.Registry
	Tracer     trace.Tracer // Optional; nil disables spans
	Logger     *slog.Logger
}

func NewService(cfg Config) *Service {
	return &Service{
		classifier: cfg.Classifier,
		extractor:  cfg.Extractor,
		assessor:   cfg.Assessor,
		generator:  cfg.Generator,
		validator:  cfg.Validator,
		recovery:   cfg.Recovery,
		deployer:   cfg.Deployer,
		store:      cfg.Store,
		publisher:  cfg.Publisher,
		registry:   cfg.Registry,
		tracer:     cfg.Tracer,
		logger:     cfg.Logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// StartConversation creates a fresh session in the gathering phase.
func (s *Service) StartConversation(ctx context.Context, userID string) (*Reply, error) {
	ctx, span := s.startSpan(ctx, "conversation.start",
		attribute.String(otelhelper.UserIDKey, userID))
	defer endSpan(span)

	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	session := models.NewConversationSession(uuid.New().String(), userID)

	greeting := "Tell me what you want to automate. For example: " +
		"\"email me a summary of new signups every morning\"."
	session.AppendTurn(models.RoleAssistant, greeting)

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, session.ID, events.ConversationStarted{
		BaseEvent: events.NewBaseEvent(events.ConversationStartedEvent, session.ID),
		UserID:    userID,
	})

	s.logger.InfoContext(ctx, "Started conversation", "session_id", session.ID, "user_id", userID)

	return &Reply{SessionID: session.ID, Phase: session.Phase, Message: greeting}, nil
}

// ProcessMessage runs one user utterance through the pipeline and advances
// the session's phase machine.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, message string) (*Reply, error) {
	ctx, span := s.startSpan(ctx, "conversation.process_message",
		attribute.String(otelhelper.SessionIDKey, sessionID))
	defer endSpan(span)

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.AppendTurn(models.RoleUser, message)

	classification := s.classifier.Classify(message, session.Phase)

	s.logger.InfoContext(ctx, "Processing message",
		"session_id", sessionID,
		"phase", session.Phase,
		"intent", classification.Intent)

	var reply *Reply

	if classification.Intent == intent.IntentReset {
		reply = s.handleReset(ctx, session)
	} else {
		switch session.Phase {
		case models.PhaseGathering, models.PhaseRefining:
			reply = s.handleSpecTurn(ctx, session, message)
		case models.PhaseConfirming:
			reply = s.handleConfirming(ctx, session, message, classification.Intent)
		case models.PhaseDeploying:
			reply = s.handleDeploying(ctx, session, classification.Intent)
		case models.PhaseCompleted:
			reply = s.handleCompleted(ctx, session, message, classification.Intent)
		default:
			reply = s.replyMessage(session, "I lost track of this conversation. Say \"start over\" to begin again.")
		}
	}

	session.AppendTurn(models.RoleAssistant, reply.Message)

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	return reply, nil
}

// Session returns the current state of a conversation.
func (s *Service) Session(ctx context.Context, sessionID string) (*models.ConversationSession, error) {
	return s.store.SessionByID(ctx, sessionID)
}

// Reset discards the accumulated specification and returns the session to
// gathering, keeping the transcript.
func (s *Service) Reset(ctx context.Context, sessionID string) (*Reply, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply := s.handleReset(ctx, session)
	session.AppendTurn(models.RoleAssistant, reply.Message)

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	return reply, nil
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}

	return lock
}

// advance moves the session to the next phase and publishes the change. An
// illegal edge is a programming error and is logged, not surfaced.
func (s *Service) advance(ctx context.Context, session *models.ConversationSession, to models.Phase) {
	from := session.Phase
	if from == to {
		return
	}

	if !models.ValidTransition(from, to) {
		s.logger.ErrorContext(ctx, "Refusing illegal phase transition",
			"session_id", session.ID, "from", from, "to", to)

		return
	}

	session.Phase = to

	s.publish(ctx, session.ID, events.PhaseChanged{
		BaseEvent: events.NewBaseEvent(events.PhaseChangedEvent, session.ID),
		From:      from,
		To:        to,
	})
}

// startSpan opens a span when tracing is configured; span is nil otherwise.
func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, nil
	}

	return otelhelper.StartSpan(ctx, s.tracer, name, attrs...)
}

func endSpan(span trace.Span) {
	if span != nil {
		span.End()
	}
}

func (s *Service) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}

func (s *Service) replyMessage(session *models.ConversationSession, message string) *Reply {
	return &Reply{SessionID: session.ID, Phase: session.Phase, Message: message}
}
