// Package config loads the YAML settings of a formbuilder installation:
// where drafts are stored, how storage calls are retried, the debounce
// windows, and logging.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Colour modes for terminal logging.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Retry    RetryConfig    `yaml:"retry"`
	Debounce DebounceConfig `yaml:"debounce"`
	Log      LogConfig      `yaml:"log"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path is a directory for the file backend and a database file for sqlite.
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
}

type RetryConfig struct {
	Attempts           int           `yaml:"attempts"`
	Delay              time.Duration `yaml:"delay"`
	Multiplier         float64       `yaml:"multiplier"`
	FailureProbability float64       `yaml:"failure_probability"`
}

type DebounceConfig struct {
	Persist      time.Duration `yaml:"persist"`
	ManualSave   time.Duration `yaml:"manual_save"`
	QuestionSave time.Duration `yaml:"question_save"`
	SavingDelay  time.Duration `yaml:"saving_delay"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File enables a rotating JSON log at this path.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Color      string `yaml:"color"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    "./data",
			Key:     storage.DefaultKey,
		},
		Retry: RetryConfig{
			Attempts:   3,
			Delay:      time.Second,
			Multiplier: 1,
		},
		Debounce: DebounceConfig{
			Persist:      time.Second,
			ManualSave:   1500 * time.Millisecond,
			QuestionSave: 800 * time.Millisecond,
			SavingDelay:  time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Color:      ColorAuto,
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Storage.Backend) {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of memory, file, sqlite", c.Storage.Backend))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage.key is required"))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, errors.New("retry.attempts must be at least 1"))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, errors.New("retry.delay must not be negative"))
	}
	if c.Retry.FailureProbability < 0 || c.Retry.FailureProbability > 1 {
		errs = append(errs, errors.New("retry.failure_probability must be within [0,1]"))
	}
	for name, d := range map[string]time.Duration{
		"debounce.persist":       c.Debounce.Persist,
		"debounce.manual_save":   c.Debounce.ManualSave,
		"debounce.question_save": c.Debounce.QuestionSave,
		"debounce.saving_delay":  c.Debounce.SavingDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	switch c.Log.Color {
	case ColorAuto, ColorAlways, ColorNever, "":
	default:
		errs = append(errs, fmt.Errorf("log.color %q is not one of auto, always, never", c.Log.Color))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

// RetryPolicy converts the retry settings.
func (c Config) RetryPolicy() storage.RetryPolicy {
	return storage.RetryPolicy{
		Attempts:           c.Retry.Attempts,
		Delay:              c.Retry.Delay,
		Multiplier:         c.Retry.Multiplier,
		FailureProbability: c.Retry.FailureProbability,
	}
}
