package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/notify"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// SaveStatus is the state of the last manual save.
type SaveStatus string

const (
	SaveIdle    SaveStatus = "idle"
	SaveSaving  SaveStatus = "saving"
	SaveSuccess SaveStatus = "success"
	SaveFailed  SaveStatus = "failed"
)

const (
	DefaultManualSaveWindow = 1500 * time.Millisecond
	MessageSaveSucceeded    = "Form saved successfully!"
)

// Saver writes a state immediately. *storage.Adapter satisfies it.
type Saver interface {
	Save(ctx context.Context, state model.FormState) error
}

// ManualOption configures a ManualSaver.
type ManualOption func(*ManualSaver)

// WithManualWindow overrides the debounce window of manual saves.
func WithManualWindow(window time.Duration) ManualOption {
	return func(m *ManualSaver) { m.window = window }
}

// WithManualNotifier sets the sink for the success message.
func WithManualNotifier(n notify.Notifier) ManualOption {
	return func(m *ManualSaver) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithManualLogger sets the logger.
func WithManualLogger(logger *slog.Logger) ManualOption {
	return func(m *ManualSaver) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStatusHook is called on every status change.
func WithStatusHook(fn func(SaveStatus)) ManualOption {
	return func(m *ManualSaver) { m.hook = fn }
}

// ManualSaver backs the user's "Save" button. Repeated presses within the
// window collapse into one write of the latest state.
type ManualSaver struct {
	saver    Saver
	window   time.Duration
	notifier notify.Notifier
	logger   *slog.Logger
	hook     func(SaveStatus)
	debounce *storage.Debouncer

	mu     sync.Mutex
	status SaveStatus
	err    error
	// gen advances on Cancel so a save that already fired skips its write.
	gen uint64
}

// NewManualSaver wraps saver.
func NewManualSaver(saver Saver, opts ...ManualOption) *ManualSaver {
	m := &ManualSaver{
		saver:    saver,
		window:   DefaultManualSaveWindow,
		notifier: notify.Nop,
		logger:   slog.Default(),
		status:   SaveIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.debounce = storage.NewDebouncer(m.window)
	return m
}

// Save marks the saver busy and schedules a write of state.
func (m *ManualSaver) Save(state model.FormState) {
	snapshot := state.Clone()
	m.setStatus(SaveSaving, nil)
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()
	m.debounce.Trigger(func() { m.run(context.Background(), snapshot, gen) })
}

func (m *ManualSaver) run(ctx context.Context, state model.FormState, gen uint64) {
	m.mu.Lock()
	stale := gen != m.gen
	m.mu.Unlock()
	if stale {
		return
	}
	if err := m.saver.Save(ctx, state); err != nil {
		m.logger.ErrorContext(ctx, "Manual save failed", "err", err)
		m.setStatus(SaveFailed, err)
		return
	}
	m.setStatus(SaveSuccess, nil)
	if err := m.notifier.Notify(ctx, notify.Success(MessageSaveSucceeded)); err != nil {
		m.logger.WarnContext(ctx, "Failed to deliver notification", "err", err)
	}
}

// Status returns the current status.
func (m *ManualSaver) Status() SaveStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err returns the error of the last failed save.
func (m *ManualSaver) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Flush runs a pending save now.
func (m *ManualSaver) Flush() bool {
	return m.debounce.Flush()
}

// Cancel drops a save that has not been written yet. A saver that was busy
// goes back to idle.
func (m *ManualSaver) Cancel() {
	m.debounce.Cancel()
	m.mu.Lock()
	m.gen++
	busy := m.status == SaveSaving
	m.mu.Unlock()
	if busy {
		m.setStatus(SaveIdle, nil)
	}
}

// Close flushes and stops the saver.
func (m *ManualSaver) Close() {
	m.debounce.Flush()
	m.debounce.Stop()
}

func (m *ManualSaver) setStatus(status SaveStatus, err error) {
	m.mu.Lock()
	m.status = status
	m.err = err
	hook := m.hook
	m.mu.Unlock()
	if hook != nil {
		hook(status)
	}
}
