package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Persister is the storage side of the store. *storage.Adapter satisfies it.
type Persister interface {
	// Persist schedules a write of state and returns immediately.
	Persist(state model.FormState)
	// BeginClear drops pending writes without blocking and returns the
	// removal of the saved draft.
	BeginClear() func(ctx context.Context) error
	Load(ctx context.Context) (model.FormState, bool)
}

type nopPersister struct{}

func (nopPersister) Persist(model.FormState)                      {}
func (nopPersister) Load(context.Context) (model.FormState, bool) { return model.FormState{}, false }

func (nopPersister) BeginClear() func(context.Context) error {
	return func(context.Context) error { return nil }
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister sets where valid states are saved.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) {
		if p != nil {
			s.persister = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInitialState seeds the store.
func WithInitialState(state model.FormState) StoreOption {
	return func(s *Store) {
		s.state = Reduce(s.state, LoadForm{State: state})
	}
}

// Store holds the current FormState. Dispatch calls are applied one at a
// time.
type Store struct {
	mu        sync.Mutex
	state     model.FormState
	persister Persister
	logger    *slog.Logger

	subMu  sync.Mutex
	subs   map[int]func(model.FormState)
	nextID int
}

// NewStore returns a store holding the empty form.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		state:     model.Empty(),
		persister: nopPersister{},
		logger:    slog.Default(),
		subs:      map[int]func(model.FormState){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Dispatch applies action and runs its side effects. Edits that leave every
// question valid are handed to the persister; RESET_FORM clears storage. The
// removal runs after the store is unlocked, so other dispatches never wait on
// storage.
func (s *Store) Dispatch(ctx context.Context, action Action) model.FormState {
	if action == nil {
		return s.State()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var remove func(context.Context) error

	s.mu.Lock()
	next := Reduce(s.state, action)
	s.state = next

	kind := action.Kind()
	switch {
	case kind == KindResetForm:
		remove = s.persister.BeginClear()
	case Persists(kind):
		if validation.Valid(validation.ValidateForm(next.Questions)) {
			s.persister.Persist(next)
		} else {
			s.logger.DebugContext(ctx, "Skipping persist of invalid form", "action", kind)
		}
	}
	s.mu.Unlock()

	if remove != nil {
		if err := remove(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to clear saved form", "err", err)
		}
	}

	s.publish(next)
	return next.Clone()
}

// State returns a copy of the current state.
func (s *Store) State() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Errors validates the current questions.
func (s *Store) Errors() []validation.Errors {
	return validation.ValidateForm(s.State().Questions)
}

// Hydrate loads the saved form, if any, without saving it again.
func (s *Store) Hydrate(ctx context.Context) bool {
	saved, ok := s.persister.Load(ctx)
	if !ok {
		return false
	}
	s.Dispatch(ctx, LoadForm{State: saved})
	return true
}

// Subscribe registers fn to receive every new state. The returned func
// removes it.
func (s *Store) Subscribe(fn func(model.FormState)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(state model.FormState) {
	s.subMu.Lock()
	fns := make([]func(model.FormState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state.Clone())
	}
}
