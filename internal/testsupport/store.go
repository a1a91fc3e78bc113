package testsupport

import (
	"context"
	"testing"

	"reelcast/internal/audiocache"
	"reelcast/internal/config"
)

// MustOpenCache opens the narration cache for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *audiocache.Store {
	t.Helper()

	store, err := audiocache.Open(context.Background(), cfg.CacheDBPath())
	if err != nil {
		t.Fatalf("audiocache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
