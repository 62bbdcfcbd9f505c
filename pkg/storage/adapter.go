package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/notify"
)

const (
	// DefaultKey is the single key the form draft lives under.
	DefaultKey = "saved_form"
	// DefaultPersistWindow is the trailing window used by Persist.
	DefaultPersistWindow = time.Second
	// MessageSaveFailed is shown to the user once a save exhausted its retries.
	MessageSaveFailed = "Failed to save form data, Please try saving manually again"
)

// Option configures an Adapter.
type Option func(*adapterConfig)

type adapterConfig struct {
	key      string
	retry    RetryPolicy
	window   time.Duration
	logger   *slog.Logger
	notifier notify.Notifier
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(cfg *adapterConfig) {
		if key != "" {
			cfg.key = key
		}
	}
}

// WithRetryPolicy overrides the retry policy applied to every provider call.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(cfg *adapterConfig) {
		cfg.retry = policy
	}
}

// WithDebounce sets the Persist window.
func WithDebounce(window time.Duration) Option {
	return func(cfg *adapterConfig) {
		cfg.window = window
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *adapterConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithNotifier sets the sink used to tell the user about failed saves.
func WithNotifier(notifier notify.Notifier) Option {
	return func(cfg *adapterConfig) {
		if notifier != nil {
			cfg.notifier = notifier
		}
	}
}

// Adapter saves, loads, and clears the form draft.
type Adapter struct {
	provider Provider
	key      string
	retry    RetryPolicy
	logger   *slog.Logger
	notifier notify.Notifier
	debounce *Debouncer

	// epoch advances on every BeginClear. A persist scheduled in an older
	// epoch is dropped; a removal is skipped once a newer epoch has written.
	epoch atomic.Uint64

	// writeMu keeps two saves from interleaving on the provider and guards
	// written, the epoch of the last successful write.
	writeMu sync.Mutex
	written uint64
}

// NewAdapter wraps provider.
func NewAdapter(provider Provider, opts ...Option) (*Adapter, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	cfg := adapterConfig{
		key:      DefaultKey,
		retry:    DefaultRetryPolicy(),
		window:   DefaultPersistWindow,
		logger:   slog.Default(),
		notifier: notify.Nop,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Adapter{
		provider: provider,
		key:      cfg.key,
		retry:    cfg.retry,
		logger:   cfg.logger,
		notifier: cfg.notifier,
		debounce: NewDebouncer(cfg.window),
	}, nil
}

// Key returns the storage key.
func (a *Adapter) Key() string { return a.key }

// Save writes state now. When every attempt fails the user is notified, the
// previously stored draft is left as it was, and the error is returned.
func (a *Adapter) Save(ctx context.Context, state model.FormState) error {
	return a.save(ctx, state, a.epoch.Load())
}

func (a *Adapter) save(ctx context.Context, state model.FormState, epoch uint64) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: encode form: %w", err)
	}

	a.writeMu.Lock()
	if epoch != a.epoch.Load() {
		a.writeMu.Unlock()
		a.logger.DebugContext(ctx, "Dropping save scheduled before clear", "key", a.key)
		return nil
	}
	err = Retry(ctx, a.retry, func(ctx context.Context) error {
		return a.provider.Set(ctx, a.key, payload)
	})
	if err == nil {
		a.written = epoch
	}
	a.writeMu.Unlock()

	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to save form", "err", err, "key", a.key)
		if nerr := a.notifier.Notify(ctx, notify.Error(MessageSaveFailed)); nerr != nil {
			a.logger.WarnContext(ctx, "Failed to deliver notification", "err", nerr)
		}
		return fmt.Errorf("storage: save %q: %w", a.key, err)
	}

	a.logger.DebugContext(ctx, "Form saved", "key", a.key, "questions", len(state.Questions))
	return nil
}

// Persist schedules a Save of state. Calls made within the debounce window
// replace each other; only the last state is written.
func (a *Adapter) Persist(state model.FormState) {
	snapshot := state.Clone()
	epoch := a.epoch.Load()
	a.debounce.Trigger(func() {
		_ = a.save(context.Background(), snapshot, epoch)
	})
}

// Flush writes a pending Persist immediately.
func (a *Adapter) Flush() bool {
	return a.debounce.Flush()
}

// Pending reports whether a Persist is waiting for its window.
func (a *Adapter) Pending() bool {
	return a.debounce.Pending()
}

// Load returns the saved draft. Any failure is logged and reported as "no
// saved form" so callers fall back to an empty form.
func (a *Adapter) Load(ctx context.Context) (model.FormState, bool) {
	var (
		raw   []byte
		found bool
	)
	err := Retry(ctx, a.retry, func(ctx context.Context) error {
		value, ok, err := a.provider.Get(ctx, a.key)
		if err != nil {
			return err
		}
		raw, found = value, ok
		return nil
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to load form", "err", err, "key", a.key)
		return model.FormState{}, false
	}
	if !found {
		return model.FormState{}, false
	}

	var state model.FormState
	if err := json.Unmarshal(raw, &state); err != nil {
		a.logger.ErrorContext(ctx, "Failed to decode saved form", "err", err, "key", a.key)
		return model.FormState{}, false
	}
	return state, true
}

// Clear drops any pending Persist and removes the saved draft.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.BeginClear()(ctx)
}

// BeginClear drops any pending Persist, including one already firing, and
// returns the function that removes the saved draft. It does no I/O, so it
// can be called while holding a lock and the removal run after releasing it.
// Saves started after BeginClear are kept: if one lands before the removal
// runs, the removal is skipped.
func (a *Adapter) BeginClear() func(context.Context) error {
	a.debounce.Cancel()
	epoch := a.epoch.Add(1)
	return func(ctx context.Context) error {
		a.writeMu.Lock()
		defer a.writeMu.Unlock()
		if a.written >= epoch {
			return nil
		}
		err := Retry(ctx, a.retry, func(ctx context.Context) error {
			return a.provider.Remove(ctx, a.key)
		})
		if err != nil {
			a.logger.ErrorContext(ctx, "Failed to clear saved form", "err", err, "key", a.key)
			return fmt.Errorf("storage: clear %q: %w", a.key, err)
		}
		return nil
	}
}

// Close writes any pending Persist and stops the debouncer.
func (a *Adapter) Close() error {
	a.debounce.Flush()
	a.debounce.Stop()
	return nil
}
