package kv

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemory_GetMissingKey(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, ok, err := mem.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing key")
	}
}

func TestMemory_SetThenGet(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if err := mem.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := mem.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(value) != "v1" {
		t.Errorf("value = %q", value)
	}

	if err := mem.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, _, _ = mem.Get(ctx, "k")
	if string(value) != "v2" {
		t.Errorf("overwrite failed: %q", value)
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if err := mem.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, _, _ := mem.Get(ctx, "k")
	value[0] = 'x'

	again, _, _ := mem.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	_, ok, err := db.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing key")
	}

	if err := db.Set(ctx, "k", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := db.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(value) != `[{"id":"1"}]` {
		t.Errorf("value = %q", value)
	}

	// Upsert path.
	if err := db.Set(ctx, "k", []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, _, _ = db.Get(ctx, "k")
	if string(value) != `[]` {
		t.Errorf("overwrite failed: %q", value)
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := db.Set(ctx, "k", []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if string(value) != "persisted" {
		t.Errorf("value = %q", value)
	}
}
