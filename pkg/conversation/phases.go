package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/intelogroup/clixen/pkg/extraction"
	"github.com/intelogroup/clixen/pkg/gaps"
	"github.com/intelogroup/clixen/pkg/intent"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/recovery"
)

func (s *Service) handleReset(ctx context.Context, session *models.ConversationSession) *Reply {
	from := session.Phase
	session.Reset()

	if from != models.PhaseGathering {
		s.publish(ctx, session.ID, phaseChangedEvent(session.ID, from, models.PhaseGathering))
	}

	return s.replyMessage(session, "Okay, starting over. What would you like to automate?")
}

// handleSpecTurn runs extraction and merging for the gathering and refining
// phases, then decides whether to keep asking questions or move to
// confirmation.
func (s *Service) handleSpecTurn(ctx context.Context, session *models.ConversationSession, utterance string) *Reply {
	extracted, err := s.extract(ctx, session, utterance)
	if err != nil {
		return s.specTurnFailure(ctx, session, err)
	}

	if extracted == nil {
		return s.replyMessage(session,
			"I could not find an automation in that. Describe what should happen and when, for example \"post to Slack when a form is submitted\".")
	}

	merged := extraction.Merge(session.Specification, extracted)
	session.UpdateSpecification(merged)
	session.Retry = nil

	if session.Phase == models.PhaseGathering {
		s.advance(ctx, session, models.PhaseRefining)
	}

	gapSet := gaps.Analyze(merged)
	if len(gapSet) > 0 {
		questions := gaps.Questions(gapSet)

		reply := s.replyMessage(session, "I need a bit more detail.\n"+bulleted(questions))
		reply.Questions = questions

		return reply
	}

	report := s.assessor.Assess(ctx, merged)

	merged.Feasible = merged.Feasible && report.Feasible
	for _, issue := range report.Blocking {
		merged.Issues = append(merged.Issues, issue.Message)
	}

	session.UpdateSpecification(merged)

	if !report.Feasible {
		lines := make([]string, 0, len(report.Blocking)+len(report.Recommendations))
		for _, issue := range report.Blocking {
			lines = append(lines, issue.Message)
		}

		lines = append(lines, report.Recommendations...)

		return s.replyMessage(session, "I cannot build this as described.\n"+bulleted(lines))
	}

	s.advance(ctx, session, models.PhaseConfirming)

	message := summarize(merged)
	if len(report.Warnings) > 0 {
		notes := make([]string, 0, len(report.Warnings))
		for _, warning := range report.Warnings {
			notes = append(notes, warning.Message)
		}

		message += "\nNotes:\n" + bulleted(notes)
	}

	message += "\nShall I build it?"

	return s.replyMessage(session, message)
}

// extract calls the extractor, retrying transient transport failures through
// the recovery coordinator. A nil specification with nil error means the
// utterance carried no requirements.
func (s *Service) extract(ctx context.Context, session *models.ConversationSession, utterance string) (*models.Specification, error) {
	for {
		extracted, err := s.extractor.Extract(ctx, utterance, session.RecentTurns(6))
		if err == nil {
			return extracted, nil
		}

		if errors.Is(err, extraction.ErrNoSpecification) {
			return nil, nil
		}

		if extraction.IsExtractionError(err) {
			return nil, err
		}

		if session.Retry == nil || session.Retry.Operation != "extract" {
			session.Retry = models.NewErrorContext("extract")
		}

		resolution := s.recovery.Resolve(ctx, session.Retry, session.Specification, err)
		s.publishFailure(ctx, session, err)

		if resolution.Action == recovery.ActionTerminal {
			return nil, fmt.Errorf("%s", resolution.Explanation)
		}

		if !sleepCtx(ctx, resolution.Backoff) {
			return nil, ctx.Err()
		}
	}
}

func (s *Service) specTurnFailure(ctx context.Context, session *models.ConversationSession, err error) *Reply {
	if extraction.IsExtractionError(err) {
		s.logger.WarnContext(ctx, "Extraction produced unusable output",
			"session_id", session.ID, "error", err)

		return s.replyMessage(session,
			"I had trouble understanding that. Could you rephrase what the automation should do?")
	}

	return s.replyMessage(session, err.Error())
}

// handleConfirming reacts to the user's answer to "shall I build it".
// Confirmation freezes the specification and runs generation; anything that
// changes requirements drops back to refining.
func (s *Service) handleConfirming(ctx context.Context, session *models.ConversationSession, utterance string, label intent.Intent) *Reply {
	switch label {
	case intent.IntentConfirmation, intent.IntentDeployment:
		return s.runGeneration(ctx, session)
	case intent.IntentNewRequest, intent.IntentClarification:
		s.advance(ctx, session, models.PhaseRefining)

		return s.handleSpecTurn(ctx, session, utterance)
	default:
		return s.replyMessage(session,
			"Should I build this workflow? Say yes to continue, describe any changes, or say \"start over\".")
	}
}

func (s *Service) handleDeploying(ctx context.Context, session *models.ConversationSession, label intent.Intent) *Reply {
	switch label {
	case intent.IntentDeployment, intent.IntentConfirmation:
		return s.runDeployment(ctx, session)
	default:
		return s.replyMessage(session,
			"The workflow is ready. Say \"deploy\" to activate it, or \"start over\" to discard it.")
	}
}

// handleCompleted starts a fresh cycle on the same session: further input
// after completion is a new request.
func (s *Service) handleCompleted(ctx context.Context, session *models.ConversationSession, utterance string, label intent.Intent) *Reply {
	if label == intent.IntentOther {
		return s.replyMessage(session,
			"This workflow is live. Describe a new automation to start another one.")
	}

	from := session.Phase
	session.Reset()
	s.publish(ctx, session.ID, phaseChangedEvent(session.ID, from, models.PhaseGathering))

	return s.handleSpecTurn(ctx, session, utterance)
}

func bulleted(lines []string) string {
	var builder strings.Builder
	for _, line := range lines {
		builder.WriteString("- ")
		builder.WriteString(line)
		builder.WriteString("\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}

// summarize renders the specification for user confirmation.
func summarize(spec *models.Specification) string {
	var builder strings.Builder

	builder.WriteString("Here is what I will build:\n")
	builder.WriteString(fmt.Sprintf("- Trigger: %s", spec.Trigger.Type))

	if spec.Trigger.Description != "" {
		builder.WriteString(" (" + spec.Trigger.Description + ")")
	}

	builder.WriteString("\n")

	for _, action := range spec.Actions {
		builder.WriteString(fmt.Sprintf("- Step: %s", action.Type))

		if action.Description != "" {
			builder.WriteString(" (" + action.Description + ")")
		}

		builder.WriteString("\n")
	}

	if len(spec.Integrations) > 0 {
		builder.WriteString("- Integrations: " + strings.Join(spec.Integrations, ", ") + "\n")
	}

	builder.WriteString("- Complexity: " + string(spec.Complexity))

	return builder.String()
}

// sleepCtx waits for the duration unless the context ends first. Returns
// false when the context ended.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
