// Package fill runs a fill-out of a built form: it holds the respondent's
// answers, validates them on every change, and produces a submission.
package fill

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/notify"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

const (
	// MessageSubmitted is the notification shown after a successful submit.
	MessageSubmitted = "Form submitted successfully!"
	// NoAnswer is displayed in the summary for an empty answer.
	NoAnswer = "No answer"
)

// Loader reads the saved form. *storage.Adapter satisfies it.
type Loader interface {
	Load(ctx context.Context) (model.FormState, bool)
}

// Submission is a validated set of answers.
type Submission struct {
	FormName    string         `json:"formName"`
	Answers     []model.Answer `json:"answers"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// SummaryLine is one row of the post-submit summary.
type SummaryLine struct {
	QuestionID string
	Label      string
	Display    string
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets the sink for the submit confirmation.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now for submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is one respondent filling out a form.
type Session struct {
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	form      model.FormState
	answers   []model.Answer
	errors    validation.Errors
	submitted bool
}

// NewSession starts a fill-out of form with every answer null.
func NewSession(form model.FormState, opts ...Option) *Session {
	s := &Session{
		notifier: notify.Nop,
		logger:   slog.Default(),
		now:      time.Now,
		form:     form.Clone(),
		errors:   validation.Errors{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.answers = model.NewAnswers(s.form.Questions)
	return s
}

// Load starts a session over the saved form. Without a saved form the session
// has no questions.
func Load(ctx context.Context, loader Loader, opts ...Option) *Session {
	form := model.Empty()
	if loader != nil {
		if saved, ok := loader.Load(ctx); ok {
			form = saved
		}
	}
	return NewSession(form, opts...)
}

// Form returns the form being filled.
func (s *Session) Form() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Clone()
}

// Answers returns a copy of the current answers in question order.
func (s *Session) Answers() []model.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Answer(nil), s.answers...)
}

// Errors returns the current answer errors keyed by question id.
func (s *Session) Errors() validation.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyErrors(s.errors)
}

// Submitted reports whether the session was submitted.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// SetAnswer records value for question id and revalidates every answer.
func (s *Session) SetAnswer(id string, value model.Value) (validation.Errors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.answers {
		if a.QuestionID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	s.answers[idx].Value = value
	s.errors = validation.ValidateAnswers(s.form.Questions, s.answers)
	return copyErrors(s.errors), nil
}

// Submit validates the answers. On success the session is marked submitted
// and the user is notified; otherwise a *SubmitError is returned.
func (s *Session) Submit(ctx context.Context) (Submission, error) {
	s.mu.Lock()
	s.errors = validation.ValidateAnswers(s.form.Questions, s.answers)
	if !s.errors.Empty() {
		err := &SubmitError{Errors: copyErrors(s.errors)}
		s.mu.Unlock()
		return Submission{}, err
	}
	s.submitted = true
	sub := Submission{
		FormName:    s.form.FormName,
		Answers:     append([]model.Answer(nil), s.answers...),
		SubmittedAt: s.now(),
	}
	s.mu.Unlock()

	if err := s.notifier.Notify(ctx, notify.Success(MessageSubmitted)); err != nil {
		s.logger.WarnContext(ctx, "Failed to deliver notification", "err", err)
	}
	s.logger.InfoContext(ctx, "Form submitted", "form", sub.FormName, "answers", len(sub.Answers))
	return sub, nil
}

// FillAgain clears every answer and the submitted flag.
func (s *Session) FillAgain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = model.NewAnswers(s.form.Questions)
	s.errors = validation.Errors{}
	s.submitted = false
}

// Summary lists each question with its answer for display.
func (s *Session) Summary() []SummaryLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]SummaryLine, 0, len(s.form.Questions))
	for _, q := range s.form.Questions {
		value := model.FindAnswer(s.answers, q.ID)
		display := value.String()
		if value.IsEmpty() {
			display = NoAnswer
		}
		lines = append(lines, SummaryLine{QuestionID: q.ID, Label: q.Label, Display: display})
	}
	return lines
}

func copyErrors(errs validation.Errors) validation.Errors {
	out := make(validation.Errors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
