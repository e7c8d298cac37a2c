// Package intent labels user utterances with a coarse conversational intent.
package intent

import (
	"strings"

	"github.com/intelogroup/clixen/pkg/models"
)

// Intent is the coarse label for one utterance.
type Intent string

const (
	IntentNewRequest    Intent = "new_request"
	IntentClarification Intent = "clarification"
	IntentConfirmation  Intent = "confirmation"
	IntentDeployment    Intent = "deployment"
	IntentReset         Intent = "reset"
	IntentOther         Intent = "other"
)

// Classification is the result of classifying one utterance.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Classifier labels a single utterance given the phase the conversation is
// in. Implementations must be pure functions of their inputs so the state
// machine can be tested with deterministic fakes.
type Classifier interface {
	Classify(utterance string, phase models.Phase) Classification
}

// KeywordClassifier is the default strategy: phase-keyed keyword scoring.
// It deliberately favors precision on confirmation and reset detection, where
// a wrong label advances or destroys state; everything ambiguous lands on
// clarification or other, which only re-asks.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	resetPhrases = []string{"start over", "start again", "reset", "scrap that", "forget all that", "new workflow"}

	confirmWords = []string{"yes", "yep", "yeah", "correct", "confirm", "sounds good", "looks good", "go ahead", "create it", "build it", "do it", "proceed"}

	deployWords = []string{"deploy", "ship it", "publish", "activate", "go live", "launch"}

	requestWords = []string{"i want", "i need", "every", "when", "whenever", "send", "notify", "create", "automate", "sync", "schedule"}

	negations = []string{"no", "not", "don't", "dont", "wrong", "instead", "change", "actually"}
)

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(utterance string, phase models.Phase) Classification {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return Classification{Intent: IntentOther, Confidence: 1}
	}

	if containsAny(text, resetPhrases) {
		return Classification{Intent: IntentReset, Confidence: 0.9}
	}

	negated := containsAny(text, negations)

	switch phase {
	case models.PhaseConfirming:
		if !negated && containsAny(text, confirmWords) {
			return Classification{Intent: IntentConfirmation, Confidence: 0.85}
		}

		if negated {
			return Classification{Intent: IntentClarification, Confidence: 0.7}
		}
	case models.PhaseDeploying:
		if containsAny(text, deployWords) || (!negated && containsAny(text, confirmWords)) {
			return Classification{Intent: IntentDeployment, Confidence: 0.85}
		}
	case models.PhaseCompleted:
		return Classification{Intent: IntentNewRequest, Confidence: 0.6}
	}

	if containsAny(text, deployWords) {
		return Classification{Intent: IntentDeployment, Confidence: 0.6}
	}

	if containsAny(text, requestWords) {
		if phase == models.PhaseGathering {
			return Classification{Intent: IntentNewRequest, Confidence: 0.75}
		}

		return Classification{Intent: IntentClarification, Confidence: 0.65}
	}

	if phase == models.PhaseRefining || phase == models.PhaseGathering {
		// Short answers in early phases are almost always answers to our
		// clarifying questions.
		return Classification{Intent: IntentClarification, Confidence: 0.5}
	}

	return Classification{Intent: IntentOther, Confidence: 0.4}
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}

	return false
}
