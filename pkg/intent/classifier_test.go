package intent

import (
	"testing"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	classifier := NewKeywordClassifier()

	tests := []struct {
		name      string
		utterance string
		phase     models.Phase
		want      Intent
	}{
		{"first automation request", "send me a slack message every morning", models.PhaseGathering, IntentNewRequest},
		{"confirmation while confirming", "yes create it", models.PhaseConfirming, IntentConfirmation},
		{"negated confirmation", "no, change the channel instead", models.PhaseConfirming, IntentClarification},
		{"deployment request", "deploy it", models.PhaseDeploying, IntentDeployment},
		{"plain yes while deploying", "yes", models.PhaseDeploying, IntentDeployment},
		{"reset wins in any phase", "let's start over", models.PhaseConfirming, IntentReset},
		{"reset while deploying", "scrap that, reset please", models.PhaseDeploying, IntentReset},
		{"answer to clarifying question", "the #ops channel at 9am", models.PhaseRefining, IntentClarification},
		{"input after completion", "now sync my calendar", models.PhaseCompleted, IntentNewRequest},
		{"empty input", "   ", models.PhaseGathering, IntentOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.utterance, tt.phase)
			assert.Equal(t, tt.want, got.Intent)
			assert.Positive(t, got.Confidence)
		})
	}
}
