// Package extraction turns free-form utterances into partial specifications
// and merges them into the accumulating specification without losing
// information gathered in earlier turns.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/intelogroup/clixen/pkg/llm"
	"github.com/intelogroup/clixen/pkg/models"
)

// contextTurns is how many transcript entries accompany the utterance.
const contextTurns = 6

// ErrNoSpecification signals that nothing extractable was found this turn.
// It is not a failure: the orchestrator stays in its phase and re-asks.
var ErrNoSpecification = errors.New("no extractable specification")

// ExtractionError wraps malformed extraction output so it fails as a typed
// error at the boundary instead of propagating silently-wrong data.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsExtractionError reports whether err is a malformed-output failure.
func IsExtractionError(err error) bool {
	var extractionErr *ExtractionError

	return errors.As(err, &extractionErr)
}

// extractionPayload is the shape the model is instructed to produce. It is
// validated before conversion so malformed output fails fast.
type extractionPayload struct {
	Found   bool `json:"found"`
	Trigger struct {
		Type        string         `json:"type"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"trigger"`
	Actions []struct {
		Type        string         `json:"type"        validate:"required"`
		Description string         `json:"description" validate:"required"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"actions" validate:"dive"`
	Integrations []string `json:"integrations"`
	Complexity   string   `json:"complexity" validate:"omitempty,oneof=simple moderate complex"`
}

// Extractor maps one utterance plus recent context into a partial
// specification through a structured-output completion call.
type Extractor struct {
	client   llm.Client
	validate *validator.Validate
	model    string
}

func NewExtractor(client llm.Client, model string) *Extractor {
	return &Extractor{
		client:   client,
		validate: validator.New(),
		model:    model,
	}
}

const extractionSystemPrompt = `You extract automation requirements from user messages.
Respond with a single JSON object, no prose:
{
  "found": true|false,
  "trigger": {"type": "webhook|schedule|manual|unknown", "description": "...", "parameters": {}},
  "actions": [{"type": "slack|email|http_request|google_sheets|transform|filter", "description": "...", "parameters": {}}],
  "integrations": ["slack", ...],
  "complexity": "simple|moderate|complex"
}
Set "found" to false when the message contains no automation requirements.
Use trigger type "unknown" when the user has not said how the automation starts.`

// Extract returns the partial specification found in the utterance, or
// (nil, ErrNoSpecification) when the turn carries nothing extractable.
// Transport failures are returned as-is for the retry coordinator; malformed
// model output is returned as a *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, utterance string, turns []models.Turn) (*models.Specification, error) {
	resp, err := e.client.Complete(ctx, llm.CompletionRequest{
		System:      extractionSystemPrompt,
		Prompt:      buildExtractionPrompt(utterance, turns),
		Model:       e.model,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction completion failed: %w", err)
	}

	var payload extractionPayload
	if err := llm.ExtractJSON(resp.Text, &payload); err != nil {
		return nil, &ExtractionError{Err: err}
	}

	if !payload.Found {
		return nil, ErrNoSpecification
	}

	if err := e.validate.Struct(&payload); err != nil {
		return nil, &ExtractionError{Err: err}
	}

	return payloadToSpecification(&payload), nil
}

func buildExtractionPrompt(utterance string, turns []models.Turn) string {
	var b strings.Builder

	if len(turns) > 0 {
		b.WriteString("Conversation so far:\n")

		start := 0
		if len(turns) > contextTurns {
			start = len(turns) - contextTurns
		}

		for _, turn := range turns[start:] {
			b.WriteString(turn.Role)
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	b.WriteString("Latest user message:\n")
	b.WriteString(utterance)

	return b.String()
}

func payloadToSpecification(payload *extractionPayload) *models.Specification {
	spec := models.NewSpecification()

	if payload.Trigger.Type != "" {
		spec.Trigger = models.TriggerSpec{
			Type:        payload.Trigger.Type,
			Description: payload.Trigger.Description,
			Parameters:  payload.Trigger.Parameters,
		}
	}

	for _, action := range payload.Actions {
		spec.Actions = append(spec.Actions, models.ActionSpec{
			Type:        action.Type,
			Description: action.Description,
			Parameters:  action.Parameters,
		})
	}

	spec.Integrations = payload.Integrations

	if payload.Complexity != "" {
		spec.Complexity = models.Complexity(payload.Complexity)
	} else {
		spec.Complexity = deriveComplexity(spec)
	}

	return spec
}

// deriveComplexity estimates effort when the model omits it.
func deriveComplexity(spec *models.Specification) models.Complexity {
	switch {
	case len(spec.Actions) > 3 || len(spec.Integrations) > 2:
		return models.ComplexityComplex
	case len(spec.Actions) > 1 || len(spec.Integrations) > 1:
		return models.ComplexityModerate
	default:
		return models.ComplexitySimple
	}
}
