package audiocache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"reelcast/internal/captions"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache", "narrations.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.wav")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := Key("voice.onnx", "", "large-v3", "Hello world")
	tokens := []captions.RawToken{{Text: "Hello", StartMs: 0, EndMs: 300}, {Text: "world", StartMs: 300, EndMs: 700}}

	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss before put, ok=%v err=%v", ok, err)
	}
	rec := Record{
		Key:             key,
		Slug:            "why-go",
		SceneIndex:      2,
		Narration:       "Hello world",
		AudioPath:       writeAudio(t, "RIFF1"),
		DurationSeconds: 1.25,
		RawTokens:       tokens,
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.DurationSeconds != 1.25 || !slices.Equal(got.RawTokens, tokens) {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Slug != "why-go" || got.SceneIndex != 2 || got.Narration != "Hello world" {
		t.Fatalf("metadata not stored: %+v", got)
	}
	if got.AudioPath == rec.AudioPath {
		t.Fatal("expected audio to be copied into the blob directory")
	}
	data, err := os.ReadFile(got.AudioPath)
	if err != nil || string(data) != "RIFF1" {
		t.Fatalf("blob content = %q, err %v", data, err)
	}

	stats, err := store.Stats(ctx)
	if err != nil || stats.Entries != 1 || stats.TotalSeconds != 1.25 {
		t.Fatalf("stats = %+v, err %v", stats, err)
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := Key("again")

	if err := store.Put(ctx, Record{Key: key, AudioPath: writeAudio(t, "one"), DurationSeconds: 1}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, Record{Key: key, AudioPath: writeAudio(t, "two"), DurationSeconds: 2}); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok || got.DurationSeconds != 2 {
		t.Fatalf("unexpected record %+v ok=%v err=%v", got, ok, err)
	}
	if got.RawTokens == nil || len(got.RawTokens) != 0 {
		t.Fatalf("expected empty token list, got %#v", got.RawTokens)
	}
}

func TestGetDropsEntryWithMissingBlob(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := Key("gone")
	if err := store.Put(ctx, Record{Key: key, AudioPath: writeAudio(t, "x"), DurationSeconds: 1}); err != nil {
		t.Fatal(err)
	}
	rec, _, _ := store.Get(ctx, key)
	if err := os.Remove(rec.AudioPath); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	stats, _ := store.Stats(ctx)
	if stats.Entries != 0 {
		t.Fatalf("stale row kept: %+v", stats)
	}
}

func TestPruneRemovesUnusedEntries(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	oldKey := Key("old")
	if err := store.Put(ctx, Record{Key: oldKey, AudioPath: writeAudio(t, "old"), DurationSeconds: 1}); err != nil {
		t.Fatal(err)
	}
	store.now = func() time.Time { return base.Add(48 * time.Hour) }
	newKey := Key("new")
	if err := store.Put(ctx, Record{Key: newKey, AudioPath: writeAudio(t, "new"), DurationSeconds: 1}); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Prune(ctx, base.Add(24*time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("Prune removed %d, err %v", removed, err)
	}
	if _, ok, _ := store.Get(ctx, oldKey); ok {
		t.Fatal("old entry survived prune")
	}
	if _, ok, _ := store.Get(ctx, newKey); !ok {
		t.Fatal("recent entry was pruned")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "narrations.db")
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.ExecContext(ctx, "PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestKeyDependsOnEveryPart(t *testing.T) {
	base := Key("voice.onnx", "", "large-v3", "Hi")
	if base == Key("voice.onnx", "2", "large-v3", "Hi") {
		t.Fatal("speaker change should change key")
	}
	if base != Key("voice.onnx", "", "large-v3", "Hi") {
		t.Fatal("key not deterministic")
	}
}
