// Package formbuilder wires the form builder together: configuration, the
// storage backend, the state store, the editor view-model, fill-out sessions,
// and the HTML and OpenAPI views.
package formbuilder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/fill"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/notify"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/schema/openapi"
	"github.com/goliatone/go-formbuilder/pkg/state"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Config aliases the YAML configuration so callers outside the module can
// build one.
type Config = config.Config

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Option configures New.
type Option func(*settings)

type settings struct {
	cfg      Config
	logger   *slog.Logger
	notifier notify.Notifier
	provider storage.Provider
	ids      builder.IDGenerator
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier adds a sink for user-facing notifications. Notifications are
// always logged as well.
func WithNotifier(n notify.Notifier) Option {
	return func(s *settings) { s.notifier = n }
}

// WithProvider bypasses storage.backend and uses p.
func WithProvider(p storage.Provider) Option {
	return func(s *settings) { s.provider = p }
}

// WithIDGenerator overrides the id source for new questions.
func WithIDGenerator(ids builder.IDGenerator) Option {
	return func(s *settings) { s.ids = ids }
}

// App is a wired form builder.
type App struct {
	Config   Config
	Logger   *slog.Logger
	Notifier notify.Notifier
	Adapter  *storage.Adapter
	Store    *state.Store
	Builder  *builder.Builder

	// Renderers holds the views of the draft: "html", "openapi-json", and
	// "openapi-yaml".
	Renderers *render.Registry

	manual  *state.ManualSaver
	saving  *state.QuestionSaver
	closers []io.Closer
}

// New opens storage, restores the saved draft, and returns the wired App.
func New(ctx context.Context, opts ...Option) (*App, error) {
	s := settings{cfg: config.Default(), logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	sinks := notify.Notifiers{notify.LogNotifier{Logger: s.logger}}
	if s.notifier != nil {
		sinks = append(sinks, s.notifier)
	}

	app := &App{Config: s.cfg, Logger: s.logger, Notifier: sinks}

	provider := s.provider
	if provider == nil {
		p, closer, err := OpenProvider(ctx, s.cfg.Storage)
		if err != nil {
			return nil, err
		}
		provider = p
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}

	adapter, err := storage.NewAdapter(provider,
		storage.WithKey(s.cfg.Storage.Key),
		storage.WithRetryPolicy(s.cfg.RetryPolicy()),
		storage.WithDebounce(s.cfg.Debounce.Persist),
		storage.WithLogger(s.logger.With("component", "storage")),
		storage.WithNotifier(sinks),
	)
	if err != nil {
		app.closeResources()
		return nil, err
	}
	app.Adapter = adapter

	app.Store = state.NewStore(
		state.WithPersister(adapter),
		state.WithLogger(s.logger.With("component", "state")),
	)
	if app.Store.Hydrate(ctx) {
		s.logger.InfoContext(ctx, "Restored saved form", "questions", len(app.Store.State().Questions))
	}

	app.manual = state.NewManualSaver(adapter,
		state.WithManualWindow(s.cfg.Debounce.ManualSave),
		state.WithManualNotifier(sinks),
		state.WithManualLogger(s.logger),
	)
	app.saving = state.NewQuestionSaver(app.Store, s.cfg.Debounce.QuestionSave, s.cfg.Debounce.SavingDelay)

	builderOpts := []builder.Option{
		builder.WithLoader(adapter),
		builder.WithManualSaver(app.manual),
		builder.WithQuestionSaver(app.saving),
		builder.WithLogger(s.logger),
	}
	if s.ids != nil {
		builderOpts = append(builderOpts, builder.WithIDGenerator(s.ids))
	}
	app.Builder, err = builder.New(app.Store, builderOpts...)
	if err != nil {
		app.closeResources()
		return nil, err
	}

	if app.Renderers, err = defaultRenderers(); err != nil {
		app.closeResources()
		return nil, err
	}
	return app, nil
}

func defaultRenderers() (*render.Registry, error) {
	reg := render.NewRegistry()
	page, err := html.New()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(page); err != nil {
		return nil, err
	}
	for _, format := range []openapi.Format{openapi.FormatJSON, openapi.FormatYAML} {
		r, err := openapi.NewRenderer(format, openapi.Options{})
		if err != nil {
			return nil, err
		}
		if err := reg.Register(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// OpenProvider builds the provider selected by cfg. The returned closer is
// nil when the provider holds no resources.
func OpenProvider(ctx context.Context, cfg config.StorageConfig) (storage.Provider, io.Closer, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendMemory:
		return storage.NewMemoryProvider(), nil, nil
	case config.BackendFile, "":
		p, err := storage.NewFileProvider(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	case config.BackendSQLite:
		path := cfg.Path
		if path != ":memory:" && filepath.Ext(path) == "" {
			path = filepath.Join(path, "formbuilder.db")
		}
		p, err := storage.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("formbuilder: unknown storage backend %q", cfg.Backend)
	}
}

// Fill starts a fill-out session over the saved form.
func (a *App) Fill(ctx context.Context) *fill.Session {
	return fill.Load(ctx, a.Adapter, fill.WithNotifier(a.Notifier), fill.WithLogger(a.Logger))
}

// Render renders the current draft with the named renderer. When session is
// non-nil its form, answers, and errors are shown instead.
func (a *App) Render(ctx context.Context, name string, session *fill.Session) ([]byte, string, error) {
	view := render.View{Form: a.Store.State()}
	if session != nil {
		view.Form = session.Form()
		view.Answers = session.Answers()
		view.Errors = session.Errors()
		view.Submitted = session.Submitted()
	}
	return a.Renderers.Render(ctx, name, view)
}

// Preview renders the HTML page.
func (a *App) Preview(ctx context.Context, session *fill.Session) ([]byte, error) {
	out, _, err := a.Render(ctx, "html", session)
	return out, err
}

// ExportSchema describes the draft's submission payload as OpenAPI.
func (a *App) ExportSchema(ctx context.Context, opts openapi.Options) (*openapi3.T, error) {
	return openapi.Export(ctx, a.Store.State(), opts)
}

// Errors validates the current draft.
func (a *App) Errors() []validation.Errors {
	return a.Store.Errors()
}

// Form returns the current draft.
func (a *App) Form() model.FormState {
	return a.Store.State()
}

// Close writes pending saves and releases storage.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.saving != nil {
		a.saving.Close()
	}
	if a.manual != nil {
		a.manual.Close()
	}
	var errs []error
	if a.Adapter != nil {
		errs = append(errs, a.Adapter.Close())
	}
	errs = append(errs, a.closeResources())
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
