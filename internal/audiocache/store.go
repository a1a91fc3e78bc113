package audiocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reelcast/internal/captions"
	"reelcast/internal/fileutil"
)

// timeLayout is fixed width so stored timestamps compare lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one cached narration. AudioPath names the source file on Put and
// the cached blob on Get.
type Record struct {
	Key             string
	Slug            string
	SceneIndex      int
	Narration       string
	AudioPath       string
	DurationSeconds float64
	RawTokens       []captions.RawToken
	CreatedAt       time.Time
	LastUsedAt      time.Time
}

// Key derives a cache key from parts.
func Key(parts ...string) string {
	return fileutil.HashStrings(parts...)
}

// Store manages cache persistence backed by SQLite.
type Store struct {
	db      *sql.DB
	path    string
	blobDir string
	now     func() time.Time
}

// Open initializes or connects to the cache database at dbPath. Audio blobs
// are kept in an "audio" directory beside it.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	blobDir := filepath.Join(filepath.Dir(dbPath), "audio")
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, blobDir: blobDir, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the record for key. A row whose blob disappeared is removed and
// reported as a miss.
func (s *Store) Get(ctx context.Context, key string) (Record, bool, error) {
	var (
		blobName   string
		tokensJSON string
		createdAt  string
		rec        = Record{Key: key}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT slug, scene_index, narration, blob_name, duration_seconds, raw_tokens_json, created_at
         FROM narrations WHERE cache_key = ?`, key,
	).Scan(&rec.Slug, &rec.SceneIndex, &rec.Narration, &blobName, &rec.DurationSeconds, &tokensJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("query narration: %w", err)
	}

	rec.AudioPath = filepath.Join(s.blobDir, blobName)
	if _, statErr := os.Stat(rec.AudioPath); statErr != nil {
		if _, delErr := s.db.ExecContext(ctx, "DELETE FROM narrations WHERE cache_key = ?", key); delErr != nil {
			return Record{}, false, fmt.Errorf("drop stale narration: %w", delErr)
		}
		return Record{}, false, nil
	}
	if err := json.Unmarshal([]byte(tokensJSON), &rec.RawTokens); err != nil {
		return Record{}, false, fmt.Errorf("decode raw tokens: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)

	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE narrations SET last_used_at = ? WHERE cache_key = ?",
		now.Format(timeLayout), key,
	); err != nil {
		return Record{}, false, fmt.Errorf("touch narration: %w", err)
	}
	rec.LastUsedAt = now
	return rec, true, nil
}

// Put copies rec.AudioPath into the blob directory and records rec,
// replacing any previous record with the same key.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.Key == "" {
		return errors.New("cache key required")
	}
	blobName := rec.Key + filepath.Ext(rec.AudioPath)
	if err := fileutil.CopyFileVerified(rec.AudioPath, filepath.Join(s.blobDir, blobName)); err != nil {
		return fmt.Errorf("store audio blob: %w", err)
	}
	tokens := rec.RawTokens
	if tokens == nil {
		tokens = []captions.RawToken{}
	}
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode raw tokens: %w", err)
	}
	timestamp := s.now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO narrations (
            cache_key, slug, scene_index, narration, blob_name,
            duration_seconds, raw_tokens_json, created_at, last_used_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(cache_key) DO UPDATE SET
            slug = excluded.slug,
            scene_index = excluded.scene_index,
            blob_name = excluded.blob_name,
            duration_seconds = excluded.duration_seconds,
            raw_tokens_json = excluded.raw_tokens_json,
            last_used_at = excluded.last_used_at`,
		rec.Key, rec.Slug, rec.SceneIndex, rec.Narration, blobName,
		rec.DurationSeconds, string(tokensJSON), timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert narration: %w", err)
	}
	return nil
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries      int
	TotalSeconds float64
}

// Stats reports entry count and total narration length.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(duration_seconds), 0) FROM narrations",
	).Scan(&stats.Entries, &stats.TotalSeconds)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// Prune removes records unused since before cutoff along with their blobs.
// It returns the number of records removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT cache_key, blob_name FROM narrations WHERE last_used_at < ?",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("list stale narrations: %w", err)
	}
	type stale struct{ key, blob string }
	var victims []stale
	for rows.Next() {
		var v stale
		if err := rows.Scan(&v.key, &v.blob); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan stale narration: %w", err)
		}
		victims = append(victims, v)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, v := range victims {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM narrations WHERE cache_key = ?", v.key); err != nil {
			return 0, fmt.Errorf("delete narration: %w", err)
		}
		if err := os.Remove(filepath.Join(s.blobDir, v.blob)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("remove blob: %w", err)
		}
	}
	return len(victims), nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
