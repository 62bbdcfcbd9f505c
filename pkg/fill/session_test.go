package fill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/notify"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

type staticLoader struct {
	form model.FormState
	ok   bool
}

func (l staticLoader) Load(context.Context) (model.FormState, bool) { return l.form, l.ok }

func sampleForm() model.FormState {
	name := model.NewQuestion("name")
	name.Label = "Name"
	name.Required = true

	age := model.NewQuestion("age")
	age.Label = "Age"
	age.Type = model.QuestionTypeNumber
	age.Min = model.FloatPtr(10)

	colour := model.NewQuestion("colour")
	colour.Label = "Colour"
	colour.Type = model.QuestionTypeSelect
	colour.Options = []string{"A", "B"}

	return model.FormState{FormName: "Profile", Questions: []model.Question{name, age, colour}}
}

func TestNewSessionStartsWithNullAnswers(t *testing.T) {
	s := NewSession(sampleForm())
	for _, a := range s.Answers() {
		if !a.Value.IsNull() {
			t.Fatalf("expected null answer for %s", a.QuestionID)
		}
	}
	if len(s.Answers()) != 3 {
		t.Fatalf("expected one answer per question")
	}
}

func TestSetAnswerRevalidates(t *testing.T) {
	s := NewSession(sampleForm())

	errs, err := s.SetAnswer("age", model.Number(5))
	if err != nil {
		t.Fatalf("set answer: %v", err)
	}
	want := validation.Errors{
		"name": validation.MessageRequired,
		"age":  "Value must be at least 10.",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	errs, _ = s.SetAnswer("colour", model.String("C"))
	if errs["colour"] != validation.MessageInvalidSelection {
		t.Fatalf("expected invalid selection, got %v", errs)
	}

	if _, err := s.SetAnswer("missing", model.String("x")); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestSubmitRejectsInvalidAnswers(t *testing.T) {
	s := NewSession(sampleForm())
	_, err := s.Submit(context.Background())

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("expected SubmitError, got %v", err)
	}
	if diff := cmp.Diff(validation.Errors{"name": validation.MessageRequired}, submitErr.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if s.Submitted() {
		t.Fatalf("session must not be submitted")
	}
}

func TestSubmitSummaryAndFillAgain(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	notes := &notify.Capture{}
	s := NewSession(sampleForm(), WithNotifier(notes), WithClock(func() time.Time { return at }))

	_, _ = s.SetAnswer("name", model.String("Ada"))
	_, _ = s.SetAnswer("age", model.String("36"))

	sub, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := Submission{
		FormName: "Profile",
		Answers: []model.Answer{
			{QuestionID: "name", Value: model.String("Ada")},
			{QuestionID: "age", Value: model.String("36")},
			{QuestionID: "colour", Value: model.Null()},
		},
		SubmittedAt: at,
	}
	if diff := cmp.Diff(want, sub, cmp.AllowUnexported(model.Value{})); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if !s.Submitted() || notes.Len() != 1 {
		t.Fatalf("expected submitted session and one notification")
	}

	summary := []SummaryLine{
		{QuestionID: "name", Label: "Name", Display: "Ada"},
		{QuestionID: "age", Label: "Age", Display: "36"},
		{QuestionID: "colour", Label: "Colour", Display: NoAnswer},
	}
	if diff := cmp.Diff(summary, s.Summary()); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	s.FillAgain()
	if s.Submitted() {
		t.Fatalf("expected submitted flag cleared")
	}
	for _, line := range s.Summary() {
		if line.Display != NoAnswer {
			t.Fatalf("expected answers cleared, got %+v", line)
		}
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	s := Load(ctx, staticLoader{form: sampleForm(), ok: true})
	if s.Form().FormName != "Profile" {
		t.Fatalf("expected saved form")
	}

	empty := Load(ctx, staticLoader{})
	if len(empty.Form().Questions) != 0 || len(empty.Answers()) != 0 {
		t.Fatalf("expected empty session")
	}
}

func TestSubmitErrorMessage(t *testing.T) {
	err := &SubmitError{Errors: validation.Errors{"b": "bad", "a": "worse"}}
	if got := err.Error(); got != "fill: submission rejected: a: worse; b: bad" {
		t.Fatalf("unexpected message %q", got)
	}
}
