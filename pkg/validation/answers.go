package validation

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	MessageRequired         = "This field is required."
	MessageInvalidNumber    = "Please enter a valid number."
	MessageInvalidSelection = "Invalid selection."
)

// ValidateAnswer checks value against q and returns the first violated rule's
// message, or "" when the answer is acceptable.
//
// Empty answers (null or "") only fail the required rule; type rules apply to
// non-empty values.
func ValidateAnswer(q model.Question, value model.Value) string {
	if value.IsEmpty() {
		if q.Required {
			return MessageRequired
		}
		return ""
	}

	switch q.Type {
	case model.QuestionTypeNumber:
		n, ok := value.Float()
		if !ok {
			return MessageInvalidNumber
		}
		if q.Min != nil && n < *q.Min {
			return fmt.Sprintf("Value must be at least %s.", model.FormatNumber(*q.Min))
		}
		if q.Max != nil && n > *q.Max {
			return fmt.Sprintf("Value must be at most %s.", model.FormatNumber(*q.Max))
		}
	case model.QuestionTypeSelect:
		if !containsOption(q.Options, value.String()) {
			return MessageInvalidSelection
		}
	}

	return ""
}

// ValidateAnswers validates every question against its answer, keyed by
// question id. Questions without an answer are checked as null. Only failing
// questions appear in the result.
func ValidateAnswers(questions []model.Question, answers []model.Answer) Errors {
	errs := Errors{}
	for _, q := range questions {
		if msg := ValidateAnswer(q, model.FindAnswer(answers, q.ID)); msg != "" {
			errs[q.ID] = msg
		}
	}
	return errs
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
