package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func numberQuestion(id string) model.Question {
	q := model.NewQuestion(id)
	q.Label = "Age"
	q.Type = model.QuestionTypeNumber
	q.Min = model.FloatPtr(1)
	q.Max = model.FloatPtr(5)
	return q
}

func formWith(questions ...model.Question) model.FormState {
	return model.FormState{FormName: "Survey", Questions: questions}
}

func TestReduceAddAppends(t *testing.T) {
	a := model.NewQuestion("a")
	b := model.NewQuestion("b")

	got := Reduce(Reduce(model.Empty(), AddQuestion{Question: a}), AddQuestion{Question: b})

	want := model.FormState{FormName: "", Questions: []model.Question{a, b}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceReplaceAfterTypeChangeDropsTypeFields(t *testing.T) {
	state := formWith(numberQuestion("q1"))

	replacement := model.WithType(state.Questions[0], model.QuestionTypeSelect)
	got := Reduce(state, ReplaceQuestion{Question: replacement})

	q := got.Questions[0]
	if q.Type != model.QuestionTypeSelect || q.Label != "Age" || q.ID != "q1" {
		t.Fatalf("unexpected question %+v", q)
	}
	if q.Min != nil || q.Max != nil || q.MaxLength != nil {
		t.Fatalf("expected type-specific fields cleared, got %+v", q)
	}
	if diff := cmp.Diff([]string{}, q.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceUpdatePatchesOneField(t *testing.T) {
	state := formWith(numberQuestion("q1"), model.NewQuestion("q2"))

	got := Reduce(state, UpdateQuestion{ID: "q1", Field: FieldMax, Value: 10})

	want := state.Clone()
	want.Questions[0].Max = model.FloatPtr(10)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceUpdateFieldValues(t *testing.T) {
	base := formWith(model.NewQuestion("q1"))

	cases := []struct {
		name  string
		field Field
		value any
		check func(model.Question) bool
	}{
		{"label", FieldLabel, "Name", func(q model.Question) bool { return q.Label == "Name" }},
		{"helper", FieldHelperText, "hint", func(q model.Question) bool { return q.HelperText == "hint" }},
		{"required", FieldRequired, true, func(q model.Question) bool { return q.Required }},
		{"hidden", FieldHidden, true, func(q model.Question) bool { return q.Hidden }},
		{"paragraph", FieldIsParagraph, true, func(q model.Question) bool { return q.IsParagraph }},
		{"text type", FieldTextType, "email", func(q model.Question) bool { return q.TextType == model.TextTypeEmail }},
		{"max length", FieldMaxLength, 12, func(q model.Question) bool { return q.MaxLength != nil && *q.MaxLength == 12 }},
		{"min float", FieldMin, 2.5, func(q model.Question) bool { return q.Min != nil && *q.Min == 2.5 }},
		{"options", FieldOptions, []string{"A", "B"}, func(q model.Question) bool { return len(q.Options) == 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reduce(base, UpdateQuestion{ID: "q1", Field: tc.field, Value: tc.value})
			if !tc.check(got.Questions[0]) {
				t.Fatalf("field %s not applied: %+v", tc.field, got.Questions[0])
			}
		})
	}
}

func TestReduceUpdateClearsOptionalNumbers(t *testing.T) {
	state := formWith(numberQuestion("q1"))
	got := Reduce(state, UpdateQuestion{ID: "q1", Field: FieldMin, Value: nil})
	if got.Questions[0].Min != nil {
		t.Fatalf("expected min cleared")
	}
}

func TestReduceUpdateIgnoresBadInput(t *testing.T) {
	state := formWith(numberQuestion("q1"))

	for _, action := range []UpdateQuestion{
		{ID: "missing", Field: FieldLabel, Value: "x"},
		{ID: "q1", Field: FieldLabel, Value: 42},
		{ID: "q1", Field: FieldRequired, Value: "yes"},
		{ID: "q1", Field: "colour", Value: "red"},
		{ID: "q1", Field: FieldMaxLength, Value: 1.5},
	} {
		if diff := cmp.Diff(state, Reduce(state, action)); diff != "" {
			t.Fatalf("%+v changed state (-want +got):\n%s", action, diff)
		}
	}
}

func TestReduceDelete(t *testing.T) {
	state := formWith(model.NewQuestion("a"), model.NewQuestion("b"))
	got := Reduce(state, DeleteQuestion{ID: "a"})
	if len(got.Questions) != 1 || got.Questions[0].ID != "b" {
		t.Fatalf("unexpected questions %+v", got.Questions)
	}
	if len(state.Questions) != 2 {
		t.Fatalf("input state was mutated")
	}
}

func TestReduceSetFormName(t *testing.T) {
	got := Reduce(model.Empty(), SetFormName{Name: "Signup"})
	if got.FormName != "Signup" {
		t.Fatalf("expected name to change, got %q", got.FormName)
	}
}

func TestReduceLoadFormIsIdempotent(t *testing.T) {
	saved := formWith(numberQuestion("q1"))

	first := Reduce(model.Empty(), LoadForm{State: saved})
	second := Reduce(first, LoadForm{State: saved})

	if diff := cmp.Diff(saved, first); diff != "" {
		t.Fatalf("first load mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(saved, second); diff != "" {
		t.Fatalf("second load mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceResetReturnsEmptyForm(t *testing.T) {
	got := Reduce(formWith(numberQuestion("q1")), ResetForm{})
	if diff := cmp.Diff(model.Empty(), got); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceSavingFlags(t *testing.T) {
	state := formWith(model.NewQuestion("q1"))

	started := Reduce(state, StartSaving{ID: "q1"})
	if !started.Questions[0].IsSaving {
		t.Fatalf("expected IsSaving after START_SAVING")
	}
	finished := Reduce(started, FinishSaving{ID: "q1"})
	if finished.Questions[0].IsSaving {
		t.Fatalf("expected IsSaving cleared after FINISH_SAVING")
	}
}

func TestReduceNilActionIsNoop(t *testing.T) {
	state := formWith(model.NewQuestion("q1"))
	if diff := cmp.Diff(state, Reduce(state, nil)); diff != "" {
		t.Fatalf("nil action changed state:\n%s", diff)
	}
}

func TestPersists(t *testing.T) {
	want := map[ActionKind]bool{
		KindAddQuestion:     true,
		KindReplaceQuestion: true,
		KindUpdateQuestion:  true,
		KindDeleteQuestion:  true,
		KindSetFormName:     true,
		KindLoadForm:        false,
		KindResetForm:       false,
		KindStartSaving:     false,
		KindFinishSaving:    false,
	}
	for kind, expected := range want {
		if Persists(kind) != expected {
			t.Fatalf("Persists(%s) = %v", kind, !expected)
		}
	}
}
