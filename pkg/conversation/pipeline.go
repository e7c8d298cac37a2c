package conversation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/intelogroup/clixen/pkg/deploy"
	"github.com/intelogroup/clixen/pkg/events"
	"github.com/intelogroup/clixen/pkg/generator"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/otelhelper"
	"github.com/intelogroup/clixen/pkg/recovery"
)

// runGeneration freezes the specification and drives the generate, validate
// and repair loop under the retry budget. On success the session moves to
// deploying with the artifact attached; on a terminal failure it resets to
// gathering with an explanation.
func (s *Service) runGeneration(ctx context.Context, session *models.ConversationSession) *Reply {
	ctx, span := s.startSpan(ctx, "conversation.generate",
		attribute.String(otelhelper.SessionIDKey, session.ID))
	defer endSpan(span)

	s.advance(ctx, session, models.PhaseGenerating)
	session.Freeze()

	session.Retry = models.NewErrorContext("generate")

	spec := session.Specification
	useTemplate := false

	for {
		workflow, verdict, err := s.attemptGeneration(ctx, session, spec, useTemplate)
		if err == nil {
			return s.generationSucceeded(ctx, session, workflow, verdict)
		}

		resolution := s.recovery.Resolve(ctx, session.Retry, spec, err)
		s.publishFailure(ctx, session, err)

		if resolution.Action == recovery.ActionTerminal {
			return s.generationExhausted(ctx, session, resolution.Explanation)
		}

		if resolution.Specification != nil {
			spec = resolution.Specification
		}

		if resolution.Strategy == "template_fallback" {
			useTemplate = true
		}

		if !sleepCtx(ctx, resolution.Backoff) {
			return s.replyMessage(session, "Generation was interrupted. Send another message to try again.")
		}
	}
}

// attemptGeneration produces one candidate and validates it. Structural
// validation failures get one shot at automatic repair before counting as a
// failed attempt.
func (s *Service) attemptGeneration(ctx context.Context, session *models.ConversationSession, spec *models.Specification, useTemplate bool) (*models.Workflow, *models.ValidationVerdict, error) {
	var (
		workflow *models.Workflow
		err      error
	)

	if useTemplate {
		workflow = generator.BuildTemplate(spec)
	} else {
		workflow, err = s.generator.Generate(ctx, spec)
		if err != nil {
			return nil, nil, err
		}
	}

	workflow.SessionID = session.ID
	workflow.Owner = session.UserID

	if err := s.checkCapabilities(workflow); err != nil {
		return nil, nil, err
	}

	verdict := s.validator.Validate(ctx, workflow)
	if !verdict.Valid {
		if s.recovery.CorrectWorkflow(workflow) {
			verdict = s.validator.Validate(ctx, workflow)
		}

		if !verdict.Valid {
			return nil, nil, &generator.GenerationError{Reason: blockingSummary(verdict)}
		}
	}

	return workflow, &verdict, nil
}

// checkCapabilities rejects workflows whose action nodes the catalog cannot
// serve. The generator prompts with the catalog, but the model is free to
// hallucinate node types anyway.
func (s *Service) checkCapabilities(workflow *models.Workflow) error {
	if s.registry == nil {
		return nil
	}

	for _, node := range workflow.Nodes {
		if node.Category != models.CategoryTypeAction {
			continue
		}

		if !s.registry.Available(node.Type) {
			return &recovery.CapabilityError{NodeType: node.Type}
		}
	}

	return nil
}

func (s *Service) generationSucceeded(ctx context.Context, session *models.ConversationSession, workflow *models.Workflow, verdict *models.ValidationVerdict) *Reply {
	workflow.Status = models.WorkflowStatusValid

	if err := s.store.SaveWorkflow(ctx, workflow); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist workflow",
			"session_id", session.ID, "workflow_id", workflow.ID, "error", err)

		return s.replyMessage(session, "The workflow was built but could not be saved. Please try again.")
	}

	session.Workflow = workflow
	session.Retry = nil

	s.publish(ctx, session.ID, events.WorkflowGenerated{
		BaseEvent:  events.NewBaseEvent(events.WorkflowGeneratedEvent, session.ID),
		WorkflowID: workflow.ID,
		NodeCount:  len(workflow.Nodes),
	})

	s.publish(ctx, session.ID, events.WorkflowValidated{
		BaseEvent:  events.NewBaseEvent(events.WorkflowValidatedEvent, session.ID),
		WorkflowID: workflow.ID,
		Valid:      verdict.Valid,
		Score:      verdict.Score,
	})

	s.advance(ctx, session, models.PhaseDeploying)

	message := "The workflow \"" + workflow.Name + "\" is built and validated"
	if len(verdict.Warnings) > 0 {
		notes := make([]string, 0, len(verdict.Warnings))
		for _, warning := range verdict.Warnings {
			notes = append(notes, warning.Message)
		}

		message += " with notes:\n" + bulleted(notes)
	} else {
		message += "."
	}

	message += "\nSay \"deploy\" to activate it."

	reply := s.replyMessage(session, message)
	reply.Workflow = workflow
	reply.Verdict = verdict

	return reply
}

// generationExhausted resets the session after the retry budget ran out.
// The transcript survives so the user can see what was tried.
func (s *Service) generationExhausted(ctx context.Context, session *models.ConversationSession, explanation string) *Reply {
	from := session.Phase
	session.Reset()
	s.publish(ctx, session.ID, phaseChangedEvent(session.ID, from, models.PhaseGathering))

	return s.replyMessage(session, explanation+" I have cleared the draft so you can describe the automation again.")
}

func (s *Service) runDeployment(ctx context.Context, session *models.ConversationSession) *Reply {
	ctx, span := s.startSpan(ctx, "conversation.deploy",
		attribute.String(otelhelper.SessionIDKey, session.ID))
	defer endSpan(span)

	if session.Workflow == nil {
		return s.replyMessage(session, "There is no workflow to deploy. Say \"start over\" to build one.")
	}

	if session.Retry == nil || session.Retry.Operation != "deploy" {
		session.Retry = models.NewErrorContext("deploy")
	}

	for {
		receipt, err := s.deployer.Deploy(ctx, session.Workflow)
		if err == nil {
			return s.deploymentSucceeded(ctx, session, receipt)
		}

		resolution := s.recovery.Resolve(ctx, session.Retry, session.Specification, err)
		s.publishFailure(ctx, session, err)

		if resolution.Action == recovery.ActionTerminal {
			session.Retry = nil

			return s.replyMessage(session,
				"Deployment is failing right now: "+err.Error()+". The workflow is saved, say \"deploy\" later to try again.")
		}

		if !sleepCtx(ctx, resolution.Backoff) {
			return s.replyMessage(session, "Deployment was interrupted. Say \"deploy\" to try again.")
		}
	}
}

func (s *Service) deploymentSucceeded(ctx context.Context, session *models.ConversationSession, receipt *deploy.Receipt) *Reply {
	session.Workflow.Status = models.WorkflowStatusDeployed
	session.Retry = nil

	if err := s.store.SaveWorkflow(ctx, session.Workflow); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist deployed workflow",
			"workflow_id", session.Workflow.ID, "error", err)
	}

	s.publish(ctx, session.ID, events.WorkflowDeployed{
		BaseEvent:    events.NewBaseEvent(events.WorkflowDeployedEvent, session.ID),
		WorkflowID:   session.Workflow.ID,
		DeploymentID: receipt.DeploymentID,
	})

	s.advance(ctx, session, models.PhaseCompleted)

	message := "Deployed. The workflow is live"
	if receipt.Endpoint != "" {
		message += " and reachable at " + receipt.Endpoint
	}

	message += "."

	reply := s.replyMessage(session, message)
	reply.Receipt = receipt

	return reply
}

func (s *Service) publishFailure(ctx context.Context, session *models.ConversationSession, err error) {
	if session.Retry == nil {
		return
	}

	s.publish(ctx, session.ID, events.GenerationFailed{
		BaseEvent: events.NewBaseEvent(events.GenerationFailedEvent, session.ID),
		Operation: session.Retry.Operation,
		ErrorType: string(s.recovery.Classify(err)),
		Attempt:   session.Retry.AttemptNumber,
		Error:     err.Error(),
	})
}

func phaseChangedEvent(sessionID string, from, to models.Phase) events.PhaseChanged {
	return events.PhaseChanged{
		BaseEvent: events.NewBaseEvent(events.PhaseChangedEvent, sessionID),
		From:      from,
		To:        to,
	}
}

func blockingSummary(verdict models.ValidationVerdict) string {
	messages := make([]string, 0, len(verdict.Issues))
	for _, issue := range verdict.Issues {
		if issue.Blocking {
			messages = append(messages, issue.Message)
		}
	}

	return "validation rejected the candidate: " + strings.Join(messages, "; ")
}
