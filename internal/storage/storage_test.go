package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, KeyTheme); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}
	if err := kv.Set(ctx, KeyTheme, []byte("dark")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get(ctx, KeyTheme)
	if err != nil || string(got) != "dark" {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}
	// overwrite
	if err := kv.Set(ctx, KeyTheme, []byte("light")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = kv.Get(ctx, KeyTheme)
	if string(got) != "light" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKVCopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	buf := []byte("light")
	_ = kv.Set(context.Background(), KeyTheme, buf)
	buf[0] = 'X'
	got, _ := kv.Get(context.Background(), KeyTheme)
	if string(got) != "light" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}
}

func TestSQLiteKV(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "nested", "tracker.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestSQLiteKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	ctx := context.Background()

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	payload := `[{"id":"1","type":"income","amount":1000,"category":"salary","date":"2024-01-15","notes":""}]`
	if err := kv.Set(ctx, KeyTransactions, []byte(payload)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening runs migrations again, which must be a no-op.
	kv, err = NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()
	got, err := kv.Get(ctx, KeyTransactions)
	if err != nil || string(got) != payload {
		t.Fatalf("unexpected value after reopen: %q err=%v", got, err)
	}
}
