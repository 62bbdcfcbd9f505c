package state

import "github.com/goliatone/go-formbuilder/pkg/model"

// Reduce applies action to state and returns the next state. It never mutates
// state; unknown or nil actions return it unchanged.
func Reduce(state model.FormState, action Action) model.FormState {
	switch a := action.(type) {
	case AddQuestion:
		next := state.Clone()
		next.Questions = append(next.Questions, a.Question.Clone())
		return next

	case ReplaceQuestion:
		return mapQuestion(state, a.Question.ID, func(model.Question) model.Question {
			return a.Question.Clone()
		})

	case UpdateQuestion:
		q, ok := state.Question(a.ID)
		if !ok {
			return state
		}
		patched, ok := patch(q.Clone(), a.Field, a.Value)
		if !ok {
			return state
		}
		return mapQuestion(state, a.ID, func(model.Question) model.Question { return patched })

	case DeleteQuestion:
		next := model.FormState{FormName: state.FormName, Questions: []model.Question{}}
		for _, q := range state.Questions {
			if q.ID != a.ID {
				next.Questions = append(next.Questions, q.Clone())
			}
		}
		return next

	case SetFormName:
		next := state.Clone()
		next.FormName = a.Name
		return next

	case LoadForm:
		next := a.State.Clone()
		if next.Questions == nil {
			next.Questions = []model.Question{}
		}
		return next

	case ResetForm:
		return model.Empty()

	case StartSaving:
		return setSaving(state, a.ID, true)

	case FinishSaving:
		return setSaving(state, a.ID, false)
	}
	return state
}

func mapQuestion(state model.FormState, id string, fn func(model.Question) model.Question) model.FormState {
	if state.Index(id) < 0 {
		return state
	}
	next := state.Clone()
	for i, q := range next.Questions {
		if q.ID == id {
			next.Questions[i] = fn(q)
		}
	}
	return next
}

func setSaving(state model.FormState, id string, saving bool) model.FormState {
	return mapQuestion(state, id, func(q model.Question) model.Question {
		q.IsSaving = saving
		return q
	})
}
