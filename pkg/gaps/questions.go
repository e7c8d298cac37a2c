package gaps

import (
	"fmt"
	"strings"
)

// MaxQuestions bounds how many clarifying questions a single turn may carry.
// More than three at once overwhelms users and stalls the conversation.
const MaxQuestions = 3

// Questions renders the gap set into at most MaxQuestions user-facing
// questions, one gap cluster per question, most blocking first.
func Questions(gapSet []Gap) []string {
	if len(gapSet) == 0 {
		return nil
	}

	var questions []string
	asked := make(map[Kind]bool)

	for _, gap := range gapSet {
		if len(questions) >= MaxQuestions {
			break
		}

		// Per-action gaps of the same kind are clustered into one question.
		if asked[gap.Kind] && gap.Kind != KindMissingParameters {
			continue
		}

		question := questionFor(gap, collectSubjects(gapSet, gap.Kind))
		if question == "" || asked[gap.Kind] {
			continue
		}

		questions = append(questions, question)
		asked[gap.Kind] = true
	}

	return questions
}

func questionFor(gap Gap, subjects []string) string {
	switch gap.Kind {
	case KindTriggerUnresolved:
		return "How should this automation start? For example on a schedule, when a webhook fires, or manually."
	case KindNoActions:
		return "What should the automation do once it starts?"
	case KindActionIncomplete:
		return fmt.Sprintf("Could you describe what the %s step should do?", subjectList(subjects))
	case KindNoIntegrations:
		return "Which services or tools should this automation connect to?"
	case KindMissingParameters:
		return fmt.Sprintf("Could you share the details for the %s step, such as which account, channel, or address to use?", subjectList(subjects))
	default:
		return ""
	}
}

func collectSubjects(gapSet []Gap, kind Kind) []string {
	var subjects []string

	for _, gap := range gapSet {
		if gap.Kind == kind && gap.Subject != "" {
			subjects = append(subjects, gap.Subject)
		}
	}

	return subjects
}

func subjectList(subjects []string) string {
	switch len(subjects) {
	case 0:
		return "next"
	case 1:
		return subjects[0]
	default:
		return strings.Join(subjects[:len(subjects)-1], ", ") + " and " + subjects[len(subjects)-1]
	}
}
