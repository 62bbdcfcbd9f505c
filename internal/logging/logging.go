// Package logging builds the process logger: a colourised terminal handler
// and, when configured, a rotating JSON file.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/goliatone/go-formbuilder/internal/config"
)

// Option configures New.
type Option func(*options)

type options struct {
	stderr *os.File
	writer io.Writer
}

// WithWriter sends terminal output to w instead of stderr. Colour is then
// only used when the config asks for it explicitly.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// Logger is a configured *slog.Logger plus the resources behind it.
type Logger struct {
	*slog.Logger
	Level *slog.LevelVar

	file *lumberjack.Logger
}

// New builds a logger from cfg.
func New(cfg config.LogConfig, opts ...Option) (*Logger, error) {
	o := options{stderr: os.Stderr}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	lv := &slog.LevelVar{}
	lv.Set(level)

	var (
		out     io.Writer
		noColor bool
	)
	if o.writer != nil {
		out = o.writer
		noColor = cfg.Color != config.ColorAlways
	} else {
		out = colorable.NewColorable(o.stderr)
		switch cfg.Color {
		case config.ColorAlways:
			noColor = false
		case config.ColorNever:
			noColor = true
		default:
			noColor = !isatty.IsTerminal(o.stderr.Fd())
		}
	}

	handlers := []slog.Handler{tint.NewHandler(out, &tint.Options{
		Level:      lv,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})}

	l := &Logger{Level: lv}
	if cfg.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(l.file, &slog.HandlerOptions{Level: lv}))
	}

	if len(handlers) == 1 {
		l.Logger = slog.New(handlers[0])
	} else {
		l.Logger = slog.New(fanout(handlers))
	}
	return l, nil
}

// SetLevel changes the level of every handler.
func (l *Logger) SetLevel(level slog.Level) {
	l.Level.Set(level)
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// fanout sends each record to every handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
