// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FixturePath resolves name inside this package's testdata directory so any
// package test can share the same fixtures.
func FixturePath(name string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("testdata", name)
	}
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// LoadForm reads a saved-form JSON fixture.
func LoadForm(path string) (model.FormState, error) {
	if path == "" {
		return model.FormState{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormState{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	var out model.FormState
	if err := json.Unmarshal(data, &out); err != nil {
		return model.FormState{}, fmt.Errorf("testsupport: unmarshal form: %w", err)
	}
	return out, nil
}

// MustLoadForm loads a fixture from testdata by name.
func MustLoadForm(t *testing.T, name string) model.FormState {
	t.Helper()

	form, err := LoadForm(FixturePath(name))
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// CompareForms returns a diff between two forms, empty when equal.
func CompareForms(want, got model.FormState) string {
	return cmp.Diff(want, got)
}

// CompareAnswers returns a diff between two answer lists, empty when equal.
func CompareAnswers(want, got []model.Answer) string {
	return cmp.Diff(want, got, cmp.AllowUnexported(model.Value{}))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
