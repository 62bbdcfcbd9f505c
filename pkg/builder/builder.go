// Package builder is the view-model behind the form editor: it turns editor
// gestures (add, edit, delete, rename, save, reset) into store actions and
// keeps the per-question error state the editor displays.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/state"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Loader reads the saved form. *storage.Adapter satisfies it.
type Loader interface {
	Load(ctx context.Context) (model.FormState, bool)
}

// Option configures a Builder.
type Option func(*Builder)

// WithIDGenerator overrides the id source for new questions.
func WithIDGenerator(ids IDGenerator) Option {
	return func(b *Builder) {
		if ids != nil {
			b.ids = ids
		}
	}
}

// WithLoader sets where CanReset looks for a saved form.
func WithLoader(loader Loader) Option {
	return func(b *Builder) { b.loader = loader }
}

// WithManualSaver wires the Save button.
func WithManualSaver(m *state.ManualSaver) Option {
	return func(b *Builder) { b.manual = m }
}

// WithQuestionSaver wires the per-question saving indicator.
func WithQuestionSaver(q *state.QuestionSaver) Option {
	return func(b *Builder) { b.saving = q }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder edits the form held by a state.Store.
type Builder struct {
	store  *state.Store
	ids    IDGenerator
	loader Loader
	manual *state.ManualSaver
	saving *state.QuestionSaver
	logger *slog.Logger

	mu     sync.Mutex
	errors map[string]validation.Errors
}

// New returns a Builder over store.
func New(store *state.Store, opts ...Option) (*Builder, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	b := &Builder{
		store:  store,
		ids:    UUIDGenerator{},
		logger: slog.Default(),
		errors: map[string]validation.Errors{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Form returns the current draft.
func (b *Builder) Form() model.FormState {
	return b.store.State()
}

// AddQuestion appends a blank text question.
func (b *Builder) AddQuestion(ctx context.Context) model.Question {
	q := model.NewQuestion(b.ids.NewID())
	b.store.Dispatch(ctx, state.AddQuestion{Question: q})
	b.setErrors(q.ID, validation.ValidateQuestion(q))
	return q
}

// UpdateQuestion changes one field of question id and returns the question's
// errors afterwards. Changing the type replaces the question with a fresh
// record of the new type that keeps only its id and label.
func (b *Builder) UpdateQuestion(ctx context.Context, id string, field state.Field, value any) (validation.Errors, error) {
	current, ok := b.store.State().Question(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}

	var next model.FormState
	if field == state.FieldType {
		t, ok := questionType(value)
		if !ok || !t.Valid() {
			return nil, fmt.Errorf("%w: question type %v", ErrInvalidValue, value)
		}
		next = b.store.Dispatch(ctx, state.ReplaceQuestion{Question: model.WithType(current, t)})
	} else {
		if !state.Accepts(field, value) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidValue, field, value)
		}
		if field == state.FieldTextType {
			if t, _ := textType(value); !validTextType(t) {
				return nil, fmt.Errorf("%w: text type %v", ErrInvalidValue, value)
			}
		}
		next = b.store.Dispatch(ctx, state.UpdateQuestion{ID: id, Field: field, Value: value})
	}

	q, _ := next.Question(id)
	errs := validation.ValidateQuestion(q)
	b.setErrors(id, errs)
	if errs.Empty() && b.saving != nil {
		b.saving.Touch(id)
	}
	return errs, nil
}

// DeleteQuestion removes question id.
func (b *Builder) DeleteQuestion(ctx context.Context, id string) {
	if b.saving != nil {
		b.saving.Forget(id)
	}
	b.store.Dispatch(ctx, state.DeleteQuestion{ID: id})
	b.mu.Lock()
	delete(b.errors, id)
	b.mu.Unlock()
}

// Import replaces the draft with form and requests a manual save when every
// question is valid.
func (b *Builder) Import(ctx context.Context, form model.FormState) []validation.Errors {
	next := b.store.Dispatch(ctx, state.LoadForm{State: form})

	errs := validation.ValidateForm(next.Questions)
	b.mu.Lock()
	b.errors = make(map[string]validation.Errors, len(next.Questions))
	for i, q := range next.Questions {
		b.errors[q.ID] = errs[i]
	}
	b.mu.Unlock()

	if validation.Valid(errs) {
		b.Save(ctx)
	}
	return errs
}

// SetFormName renames the form.
func (b *Builder) SetFormName(ctx context.Context, name string) {
	b.store.Dispatch(ctx, state.SetFormName{Name: name})
}

// Reset empties the form and clears storage. A manual save still waiting
// for its window is dropped with it.
func (b *Builder) Reset(ctx context.Context) {
	if b.manual != nil {
		b.manual.Cancel()
	}
	if b.saving != nil {
		b.saving.Reset()
	}
	b.store.Dispatch(ctx, state.ResetForm{})
	b.mu.Lock()
	b.errors = map[string]validation.Errors{}
	b.mu.Unlock()
}

// CanReset reports whether a saved form with at least one question exists.
func (b *Builder) CanReset(ctx context.Context) bool {
	if b.loader == nil {
		return false
	}
	saved, ok := b.loader.Load(ctx)
	return ok && len(saved.Questions) > 0
}

// Save requests a manual save of the current draft.
func (b *Builder) Save(ctx context.Context) {
	if b.manual == nil {
		b.logger.WarnContext(ctx, "Manual save is not configured")
		return
	}
	b.manual.Save(b.store.State())
}

// SaveStatus returns the manual save status.
func (b *Builder) SaveStatus() state.SaveStatus {
	if b.manual == nil {
		return state.SaveIdle
	}
	return b.manual.Status()
}

// QuestionErrors returns the last recorded errors for question id.
func (b *Builder) QuestionErrors(id string) validation.Errors {
	b.mu.Lock()
	defer b.mu.Unlock()
	errs, ok := b.errors[id]
	if !ok {
		return validation.Errors{}
	}
	out := make(validation.Errors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

func (b *Builder) setErrors(id string, errs validation.Errors) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors[id] = errs
}

func questionType(value any) (model.QuestionType, bool) {
	switch v := value.(type) {
	case model.QuestionType:
		return v, true
	case string:
		return model.QuestionType(v), true
	}
	return "", false
}

func textType(value any) (model.TextType, bool) {
	switch v := value.(type) {
	case model.TextType:
		return v, true
	case string:
		return model.TextType(v), true
	}
	return "", false
}

func validTextType(t model.TextType) bool {
	for _, known := range model.TextTypes {
		if t == known {
			return true
		}
	}
	return false
}
