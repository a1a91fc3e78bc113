package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"reelcast/internal/audiocache"
	"reelcast/internal/captions"
	"reelcast/internal/config"
	"reelcast/internal/fileutil"
	"reelcast/internal/logging"
	"reelcast/internal/services"
	"reelcast/internal/timeline"
)

// Synthesizer renders narration text to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dest string) error
}

// Transcriber returns timed tokens recognized in an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]captions.RawToken, error)
}

// DurationProbe measures the playback length of an audio file.
type DurationProbe interface {
	DurationSeconds(ctx context.Context, path string) (float64, error)
}

// Cache stores finished narrations keyed by text and engine identity.
type Cache interface {
	Get(ctx context.Context, key string) (audiocache.Record, bool, error)
	Put(ctx context.Context, rec audiocache.Record) error
}

// Paths resolves where article audio is written and how it is referenced.
// *config.Config satisfies it.
type Paths interface {
	ArticleAudioDir(slug string) string
	AudioURL(slug, fileName string) string
}

// Settings tunes a Narrator.
type Settings struct {
	Paths                Paths
	TTSTimeout           time.Duration
	ProbeTimeout         time.Duration
	TranscriptionTimeout time.Duration
	MaxConcurrent        int
	Retries              int
	RateLimitPerMin      int
	// EngineIdentity names the voice and models; it prefixes every cache key.
	EngineIdentity []string
}

// SettingsFromConfig derives narrator settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Paths:                cfg,
		TTSTimeout:           time.Duration(cfg.TTS.TimeoutSeconds) * time.Second,
		ProbeTimeout:         30 * time.Second,
		TranscriptionTimeout: time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
		MaxConcurrent:        cfg.Pipeline.MaxConcurrent,
		Retries:              cfg.Pipeline.Retries,
		RateLimitPerMin:      cfg.Pipeline.RateLimitPerMin,
		EngineIdentity: []string{
			cfg.TTS.Model,
			cfg.TTS.Speaker,
			cfg.Transcription.Model,
			cfg.Transcription.Language,
		},
	}
}

// Option customizes a Narrator.
type Option func(*Narrator)

// WithAligner replaces the default caption aligner.
func WithAligner(aligner *captions.Aligner) Option {
	return func(n *Narrator) {
		if aligner != nil {
			n.aligner = aligner
		}
	}
}

// WithCache enables narration reuse.
func WithCache(cache Cache) Option {
	return func(n *Narrator) { n.cache = cache }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Narrator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithBackoff overrides the delay before retry attempt+1.
func WithBackoff(backoff func(attempt int) time.Duration) Option {
	return func(n *Narrator) {
		if backoff != nil {
			n.backoff = backoff
		}
	}
}

// Narrator produces scene audio and captions through external engines.
type Narrator struct {
	settings    Settings
	synth       Synthesizer
	transcriber Transcriber
	probe       DurationProbe
	aligner     *captions.Aligner
	cache       Cache
	limiter     *rate.Limiter
	logger      *slog.Logger
	backoff     func(attempt int) time.Duration
	newID       func() string
}

// NewNarrator wires the engines into a Narrator.
func NewNarrator(settings Settings, synth Synthesizer, transcriber Transcriber, probe DurationProbe, opts ...Option) *Narrator {
	if settings.MaxConcurrent < 1 {
		settings.MaxConcurrent = 1
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}
	n := &Narrator{
		settings:    settings,
		synth:       synth,
		transcriber: transcriber,
		probe:       probe,
		aligner:     captions.NewAligner(),
		logger:      logging.NewNop(),
		backoff:     exponentialBackoff,
		newID:       uuid.NewString,
	}
	if settings.RateLimitPerMin > 0 {
		n.limiter = rate.NewLimiter(rate.Limit(float64(settings.RateLimitPerMin)/60.0), 1)
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = logging.NewComponentLogger(n.logger, "narrator")
	return n
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s...
}

// ProduceCaptions aligns narration against raw tokens with the narrator's
// aligner settings.
func (n *Narrator) ProduceCaptions(narration string, raw []captions.RawToken) []captions.Entry {
	return n.aligner.Align(narration, captions.Merge(raw))
}

// SceneFileName is the audio file name of the scene at zero-based index.
func SceneFileName(index int) string {
	return fmt.Sprintf("scene-%02d.wav", index+1)
}

// NarrateScene synthesizes, measures, transcribes, and aligns one scene's
// narration. The file lands in the article audio directory.
func (n *Narrator) NarrateScene(ctx context.Context, slug string, index int, narration string) (*timeline.Audio, error) {
	audio, _, err := n.narrateScene(ctx, slug, index, narration)
	return audio, err
}

func (n *Narrator) narrateScene(ctx context.Context, slug string, index int, narration string) (*timeline.Audio, bool, error) {
	narration = strings.TrimSpace(narration)
	if narration == "" {
		return nil, false, services.Wrap(services.ErrValidation, "pipeline", "narrate", "scene has no narration", nil)
	}
	if n.settings.Paths == nil {
		return nil, false, services.Wrap(services.ErrConfiguration, "pipeline", "narrate", "audio paths not configured", nil)
	}
	ctx = services.WithSceneIndex(services.WithArticle(ctx, slug), index)
	logger := logging.WithContext(ctx, n.logger)

	fileName := SceneFileName(index)
	dest := filepath.Join(n.settings.Paths.ArticleAudioDir(slug), fileName)
	key := audiocache.Key(append(append([]string{}, n.settings.EngineIdentity...), narration)...)

	if rec, ok := n.lookup(ctx, logger, key); ok {
		err := fileutil.CopyFileVerified(rec.AudioPath, dest)
		if err == nil {
			entries := n.ProduceCaptions(narration, rec.RawTokens)
			logger.Debug("scene narration reused from cache", logging.String("audio", dest))
			return PackageAudio(n.settings.Paths.AudioURL(slug, fileName), rec.DurationSeconds, entries), true, nil
		}
		logging.WarnWithContext(logger, "cached narration unusable", "cache_restore_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "scene is synthesized again"))
	}

	if err := n.call(ctx, logger, "synthesize", n.settings.TTSTimeout, func(callCtx context.Context) error {
		return n.synth.Synthesize(callCtx, narration, dest)
	}); err != nil {
		return nil, false, err
	}

	var duration float64
	if err := n.call(ctx, logger, "probe", n.settings.ProbeTimeout, func(callCtx context.Context) error {
		var probeErr error
		duration, probeErr = n.probe.DurationSeconds(callCtx, dest)
		return probeErr
	}); err != nil {
		return nil, false, err
	}

	var raw []captions.RawToken
	if err := n.call(ctx, logger, "transcribe", n.settings.TranscriptionTimeout, func(callCtx context.Context) error {
		var transcribeErr error
		raw, transcribeErr = n.transcriber.Transcribe(callCtx, dest)
		return transcribeErr
	}); err != nil {
		return nil, false, err
	}

	entries := n.ProduceCaptions(narration, raw)
	n.store(ctx, logger, audiocache.Record{
		Key:             key,
		Slug:            slug,
		SceneIndex:      index,
		Narration:       narration,
		AudioPath:       dest,
		DurationSeconds: duration,
		RawTokens:       raw,
	})
	logger.Info("scene narrated",
		logging.String("audio", dest),
		logging.Float64("duration_seconds", duration),
		logging.Int("captions", len(entries)),
	)
	return PackageAudio(n.settings.Paths.AudioURL(slug, fileName), duration, entries), false, nil
}

func (n *Narrator) lookup(ctx context.Context, logger *slog.Logger, key string) (audiocache.Record, bool) {
	if n.cache == nil {
		return audiocache.Record{}, false
	}
	rec, ok, err := n.cache.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "narration cache lookup failed", "cache_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "scene is synthesized without cache"))
		return audiocache.Record{}, false
	}
	return rec, ok
}

func (n *Narrator) store(ctx context.Context, logger *slog.Logger, rec audiocache.Record) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Put(ctx, rec); err != nil {
		logging.WarnWithContext(logger, "narration cache write failed", "cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run synthesizes this scene again"))
	}
}

// call runs fn under its own timeout, retrying retryable failures with
// backoff. Cancellation of ctx ends retries immediately.
func (n *Narrator) call(ctx context.Context, logger *slog.Logger, stage string, timeout time.Duration, fn func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if n.limiter != nil {
			if err := n.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}
		err := n.attempt(ctx, stage, timeout, fn)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if attempt >= n.settings.Retries || !services.Retryable(err) {
			return err
		}

		backoff := n.backoff(attempt)
		logger.Warn("engine call failed, retrying",
			logging.String("stage", stage),
			logging.Int("attempt", attempt+1),
			logging.Duration("backoff", backoff),
			logging.Error(err),
			logging.String(logging.FieldEventType, "engine_retry"),
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (n *Narrator) attempt(ctx context.Context, stage string, timeout time.Duration, fn func(context.Context) error) error {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	err := fn(callCtx)
	if err == nil {
		return nil
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && !errors.Is(err, services.ErrTimeout) {
		return services.Wrap(services.ErrTimeout, "pipeline", stage, fmt.Sprintf("exceeded %s", timeout), err)
	}
	return err
}
