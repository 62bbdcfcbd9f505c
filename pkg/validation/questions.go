// Package validation holds the pure rules that check question definitions in
// the builder and answers in the fill-out flow. Results are plain maps of
// human-readable messages; they are recomputed on every change and never
// persisted.
package validation

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Field keys used in question-level Errors.
const (
	FieldLabel   = "label"
	FieldMinMax  = "minMax"
	FieldOptions = "options"
)

const (
	MessageLabelRequired   = "Question label is required."
	MessageMinAboveMax     = "Min value cannot be greater than max value."
	MessageOptionsRequired = "At least one option is required for a select question."
)

// Errors maps a field name (question rules) or a question id (answer rules) to
// a message.
type Errors map[string]string

// Empty reports whether there are no errors.
func (e Errors) Empty() bool { return len(e) == 0 }

// ValidateQuestion checks a single question definition.
func ValidateQuestion(q model.Question) Errors {
	errs := Errors{}

	if strings.TrimSpace(q.Label) == "" {
		errs[FieldLabel] = MessageLabelRequired
	}

	if q.Type == model.QuestionTypeNumber && q.Min != nil && q.Max != nil && *q.Min > *q.Max {
		errs[FieldMinMax] = MessageMinAboveMax
	}

	if q.Type == model.QuestionTypeSelect && len(q.Options) == 0 {
		errs[FieldOptions] = MessageOptionsRequired
	}

	return errs
}

// ValidateForm returns one Errors entry per question, in question order.
func ValidateForm(questions []model.Question) []Errors {
	out := make([]Errors, len(questions))
	for i, q := range questions {
		out[i] = ValidateQuestion(q)
	}
	return out
}

// Valid reports whether every entry produced by ValidateForm is empty.
func Valid(errs []Errors) bool {
	for _, e := range errs {
		if !e.Empty() {
			return false
		}
	}
	return true
}
