package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func exerciseProvider(t *testing.T, p Provider) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := p.Get(ctx, "saved_form"); err != nil || ok {
		t.Fatalf("expected empty provider, got ok=%v err=%v", ok, err)
	}
	if err := p.Set(ctx, "saved_form", []byte(`{"formName":"a"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := p.Set(ctx, "saved_form", []byte(`{"formName":"b"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := p.Get(ctx, "saved_form")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(`{"formName":"b"}`, string(got)); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	if err := p.Remove(ctx, "saved_form"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := p.Remove(ctx, "saved_form"); err != nil {
		t.Fatalf("removing a missing key should succeed: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "saved_form"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestMemoryProvider(t *testing.T) {
	exerciseProvider(t, NewMemoryProvider())
}

func TestMemoryProviderCopiesValues(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()
	value := []byte("abc")
	_ = p.Set(ctx, "k", value)
	value[0] = 'z'
	got, _, _ := p.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
}

func TestMemoryProviderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryProvider().Set(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFileProvider(t *testing.T) {
	p, err := NewFileProvider(filepath.Join(t.TempDir(), "forms"))
	if err != nil {
		t.Fatalf("new file provider: %v", err)
	}
	exerciseProvider(t, p)
}

func TestFileProviderLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFileProvider(dir)
	if err != nil {
		t.Fatalf("new file provider: %v", err)
	}
	if err := p.Set(context.Background(), "saved_form", []byte("{}")); err != nil {
		t.Fatalf("set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"saved_form.json"}, names); diff != "" {
		t.Fatalf("directory contents mismatch (-want +got):\n%s", diff)
	}
}

func TestFileProviderRejectsInvalidKeys(t *testing.T) {
	p, err := NewFileProvider(t.TempDir())
	if err != nil {
		t.Fatalf("new file provider: %v", err)
	}
	for _, key := range []string{"", "..", "../escape", "a/b"} {
		if err := p.Set(context.Background(), key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestSQLiteProvider(t *testing.T) {
	p, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "forms.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	exerciseProvider(t, p)
}

func TestSQLiteProviderPersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := first.Set(ctx, "saved_form", []byte("{}")); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = first.Close()

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer second.Close()
	if _, ok, err := second.Get(ctx, "saved_form"); err != nil || !ok {
		t.Fatalf("expected record after reopen: ok=%v err=%v", ok, err)
	}
}
