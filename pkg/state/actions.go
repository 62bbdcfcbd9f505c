// Package state owns the builder's FormState. Changes are expressed as
// actions, applied by the pure Reduce function, and sequenced by a Store that
// also decides when a new state is persisted.
package state

import "github.com/goliatone/go-formbuilder/pkg/model"

// ActionKind names an action.
type ActionKind string

const (
	KindAddQuestion     ActionKind = "ADD_QUESTION"
	KindReplaceQuestion ActionKind = "REPLACE_QUESTION"
	KindUpdateQuestion  ActionKind = "UPDATE_QUESTION"
	KindDeleteQuestion  ActionKind = "DELETE_QUESTION"
	KindSetFormName     ActionKind = "SET_FORM_NAME"
	KindLoadForm        ActionKind = "LOAD_FORM"
	KindResetForm       ActionKind = "RESET_FORM"
	KindStartSaving     ActionKind = "START_SAVING"
	KindFinishSaving    ActionKind = "FINISH_SAVING"
)

// Action is a state transition request. The set of actions is closed.
type Action interface {
	Kind() ActionKind
	action()
}

// AddQuestion appends Question to the end of the form.
type AddQuestion struct{ Question model.Question }

// ReplaceQuestion swaps the question with the same id for Question.
type ReplaceQuestion struct{ Question model.Question }

// UpdateQuestion sets one field of the question with ID. See Field for the
// accepted value types.
type UpdateQuestion struct {
	ID    string
	Field Field
	Value any
}

// DeleteQuestion removes the question with ID.
type DeleteQuestion struct{ ID string }

// SetFormName renames the form.
type SetFormName struct{ Name string }

// LoadForm replaces the whole state.
type LoadForm struct{ State model.FormState }

// ResetForm returns the form to its empty state and clears storage.
type ResetForm struct{}

// StartSaving and FinishSaving toggle the transient IsSaving flag.
type StartSaving struct{ ID string }

type FinishSaving struct{ ID string }

func (AddQuestion) Kind() ActionKind     { return KindAddQuestion }
func (ReplaceQuestion) Kind() ActionKind { return KindReplaceQuestion }
func (UpdateQuestion) Kind() ActionKind  { return KindUpdateQuestion }
func (DeleteQuestion) Kind() ActionKind  { return KindDeleteQuestion }
func (SetFormName) Kind() ActionKind     { return KindSetFormName }
func (LoadForm) Kind() ActionKind        { return KindLoadForm }
func (ResetForm) Kind() ActionKind       { return KindResetForm }
func (StartSaving) Kind() ActionKind     { return KindStartSaving }
func (FinishSaving) Kind() ActionKind    { return KindFinishSaving }

func (AddQuestion) action()     {}
func (ReplaceQuestion) action() {}
func (UpdateQuestion) action()  {}
func (DeleteQuestion) action()  {}
func (SetFormName) action()     {}
func (LoadForm) action()        {}
func (ResetForm) action()       {}
func (StartSaving) action()     {}
func (FinishSaving) action()    {}

// Persists reports whether a successful transition of kind should be saved.
func Persists(kind ActionKind) bool {
	switch kind {
	case KindAddQuestion, KindReplaceQuestion, KindUpdateQuestion, KindDeleteQuestion, KindSetFormName:
		return true
	default:
		return false
	}
}
