package state

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

const (
	DefaultQuestionSaveWindow = 800 * time.Millisecond
	DefaultSavingDelay        = time.Second
)

// Dispatcher applies actions. *Store satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, action Action) model.FormState
}

// QuestionSaver drives the per-question "saving..." indicator. It only
// toggles IsSaving and never writes to storage.
type QuestionSaver struct {
	dispatcher Dispatcher
	window     time.Duration
	delay      time.Duration

	mu       sync.Mutex
	pending  map[string]*storage.Debouncer
	finishes map[string]*time.Timer
	closed   bool
}

// NewQuestionSaver returns a saver using the given debounce window and
// simulated save delay. Non-positive durations fall back to the defaults.
func NewQuestionSaver(d Dispatcher, window, delay time.Duration) *QuestionSaver {
	if window <= 0 {
		window = DefaultQuestionSaveWindow
	}
	if delay <= 0 {
		delay = DefaultSavingDelay
	}
	return &QuestionSaver{
		dispatcher: d,
		window:     window,
		delay:      delay,
		pending:    map[string]*storage.Debouncer{},
		finishes:   map[string]*time.Timer{},
	}
}

// Touch records an edit of question id.
func (s *QuestionSaver) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	d, ok := s.pending[id]
	if !ok {
		d = storage.NewDebouncer(s.window)
		s.pending[id] = d
	}
	d.Trigger(func() { s.start(id) })
}

func (s *QuestionSaver) start(id string) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	s.dispatcher.Dispatch(context.Background(), StartSaving{ID: id})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.finishes[id]; ok {
		t.Stop()
	}
	s.finishes[id] = time.AfterFunc(s.delay, func() { s.finish(id) })
}

func (s *QuestionSaver) finish(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.finishes, id)
	if d, ok := s.pending[id]; ok && !d.Pending() {
		d.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	s.dispatcher.Dispatch(context.Background(), FinishSaving{ID: id})
}

// Forget stops the timers of question id, typically after it was deleted.
func (s *QuestionSaver) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.pending[id]; ok {
		d.Stop()
		delete(s.pending, id)
	}
	if t, ok := s.finishes[id]; ok {
		t.Stop()
		delete(s.finishes, id)
	}
}

// Reset stops the timers of every question. The saver stays usable.
func (s *QuestionSaver) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAllLocked()
}

// Close stops every timer.
func (s *QuestionSaver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopAllLocked()
}

func (s *QuestionSaver) stopAllLocked() {
	for _, d := range s.pending {
		d.Stop()
	}
	for _, t := range s.finishes {
		t.Stop()
	}
	s.pending = map[string]*storage.Debouncer{}
	s.finishes = map[string]*time.Timer{}
}
