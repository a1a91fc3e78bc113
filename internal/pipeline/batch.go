package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"reelcast/internal/fileutil"
	"reelcast/internal/logging"
	"reelcast/internal/services"
	"reelcast/internal/timeline"
)

// Status is the outcome of one scene in a batch.
type Status string

const (
	StatusNarrated Status = "narrated"
	StatusCached   Status = "cached"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// SceneOutcome reports what happened to one scene.
type SceneOutcome struct {
	Index     int           `json:"index"`
	Kind      timeline.Kind `json:"kind"`
	Status    Status        `json:"status"`
	ErrorKind string        `json:"errorKind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Report summarizes a storyboard batch.
type Report struct {
	Slug          string         `json:"slug"`
	CorrelationID string         `json:"correlationId"`
	Scenes        []SceneOutcome `json:"scenes"`
	// Err is set when the batch could not start or was canceled.
	Err error `json:"-"`
}

// Count returns how many scenes ended with status.
func (r Report) Count(status Status) int {
	count := 0
	for _, scene := range r.Scenes {
		if scene.Status == status {
			count++
		}
	}
	return count
}

// NarrateStoryboard returns a copy of sb whose narrated scenes carry audio.
// Scenes without narration are skipped. A scene whose engines fail keeps no
// audio and the remaining scenes still run; only cancellation of ctx stops the
// batch early.
func (n *Narrator) NarrateStoryboard(ctx context.Context, sb timeline.Storyboard) (timeline.Storyboard, Report) {
	out := sb.Clone()
	report := Report{
		Slug:          sb.Slug,
		CorrelationID: n.newID(),
		Scenes:        make([]SceneOutcome, len(out.Scenes)),
	}
	ctx = services.WithArticle(services.WithRequestID(ctx, report.CorrelationID), sb.Slug)
	logger := logging.WithContext(ctx, n.logger)

	if n.settings.Paths == nil {
		report.Err = services.Wrap(services.ErrConfiguration, "pipeline", "narrate", "audio paths not configured", nil)
		return out, report
	}
	unlock, err := fileutil.TryLockDir(n.settings.Paths.ArticleAudioDir(sb.Slug))
	if err != nil {
		report.Err = services.Wrap(services.ErrConfiguration, "pipeline", "lock", "article audio directory busy", err)
		logging.ErrorWithContext(logger, "narration batch not started", "article_locked",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "wait for the other reelcast run to finish"))
		return out, report
	}
	defer func() {
		if unlockErr := unlock(); unlockErr != nil {
			logger.Warn("failed to release article lock", logging.Error(unlockErr))
		}
	}()

	logger.Info("narration batch started",
		logging.Int("scenes", len(out.Scenes)),
		logging.Int("max_concurrent", n.settings.MaxConcurrent))

	var g errgroup.Group
	g.SetLimit(n.settings.MaxConcurrent)
	var mu sync.Mutex

	for i, scene := range out.Scenes {
		outcome := SceneOutcome{Index: i}
		if !timeline.IsNil(scene) {
			outcome.Kind = scene.Kind()
		}
		text := ""
		if !timeline.IsNil(scene) {
			text = strings.TrimSpace(scene.NarrationText())
		}
		if text == "" {
			outcome.Status = StatusSkipped
			report.Scenes[i] = outcome
			continue
		}
		if ctx.Err() != nil {
			outcome.Status = StatusCanceled
			report.Scenes[i] = outcome
			continue
		}

		g.Go(func() error {
			started := time.Now()
			audio, cached, err := n.narrateScene(ctx, sb.Slug, i, text)
			outcome.Elapsed = time.Since(started)
			switch {
			case err == nil && cached:
				outcome.Status = StatusCached
			case err == nil:
				outcome.Status = StatusNarrated
			case errors.Is(err, context.Canceled) && ctx.Err() != nil:
				outcome.Status = StatusCanceled
			default:
				outcome.Status = StatusFailed
				outcome.ErrorKind = services.Kind(err)
				outcome.Error = err.Error()
				logging.WarnWithContext(logging.WithContext(services.WithSceneIndex(ctx, i), n.logger),
					"scene narration failed", "scene_narration_failed",
					logging.Error(err),
					logging.String("error_kind", outcome.ErrorKind),
					logging.String(logging.FieldErrorHint, "check the tts and transcription engines"),
					logging.String(logging.FieldImpact, "scene renders without narration"),
				)
			}

			mu.Lock()
			out.Scenes[i] = timeline.WithAudio(scene, audio)
			report.Scenes[i] = outcome
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		report.Err = ctxErr
	}
	logger.Info("narration batch finished",
		logging.Int("narrated", report.Count(StatusNarrated)),
		logging.Int("cached", report.Count(StatusCached)),
		logging.Int("skipped", report.Count(StatusSkipped)),
		logging.Int("failed", report.Count(StatusFailed)),
		logging.Int("canceled", report.Count(StatusCanceled)),
	)
	return out, report
}
