package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"reelcast/internal/audiocache"
	"reelcast/internal/captions"
	"reelcast/internal/fileutil"
	"reelcast/internal/services"
	"reelcast/internal/timeline"
)

type testPaths struct{ root string }

func (p testPaths) ArticleAudioDir(slug string) string { return filepath.Join(p.root, slug) }

func (p testPaths) AudioURL(slug, fileName string) string { return "/audio/" + slug + "/" + fileName }

// fakeEngines writes the narration text as the "audio" so transcription can
// echo it back word by word, 300 ms per word.
type fakeEngines struct {
	mu              sync.Mutex
	synthCalls      int
	transcribeCalls int
	failText        string
	transcribeErrs  []error
	blockSynth      bool
}

func (f *fakeEngines) Synthesize(ctx context.Context, text, dest string) error {
	f.mu.Lock()
	f.synthCalls++
	block := f.blockSynth
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.failText != "" && strings.Contains(text, f.failText) {
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize", "engine crashed", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(text), 0o644)
}

func (f *fakeEngines) DurationSeconds(_ context.Context, path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return float64(len(strings.Fields(string(data)))) * 0.3, nil
}

func (f *fakeEngines) Transcribe(_ context.Context, path string) ([]captions.RawToken, error) {
	f.mu.Lock()
	f.transcribeCalls++
	var injected error
	if len(f.transcribeErrs) > 0 {
		injected = f.transcribeErrs[0]
		f.transcribeErrs = f.transcribeErrs[1:]
	}
	f.mu.Unlock()
	if injected != nil {
		return nil, injected
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words := strings.Fields(string(data))
	tokens := make([]captions.RawToken, 0, len(words))
	for i, word := range words {
		tokens = append(tokens, captions.RawToken{Text: word, StartMs: int64(i) * 300, EndMs: int64(i+1) * 300})
	}
	return tokens, nil
}

func newTestNarrator(t *testing.T, engines *fakeEngines, settings Settings, opts ...Option) *Narrator {
	t.Helper()
	if settings.Paths == nil {
		settings.Paths = testPaths{root: t.TempDir()}
	}
	opts = append([]Option{WithBackoff(func(int) time.Duration { return 0 })}, opts...)
	n := NewNarrator(settings, engines, engines, engines, opts...)
	n.newID = func() string { return "batch-1" }
	return n
}

func TestProduceCaptionsAndPackageAudio(t *testing.T) {
	raw := []captions.RawToken{
		{Text: "Hello", StartMs: 0, EndMs: 300},
		{Text: ",", StartMs: 300, EndMs: 320},
		{Text: "world", StartMs: 400, EndMs: 800},
	}
	entries := ProduceCaptions("Hello, world", raw)
	if len(entries) != 2 || entries[0].Text != "Hello," || entries[0].EndMs != 320 || entries[1].StartMs != 400 {
		t.Fatalf("unexpected captions %+v", entries)
	}

	audio := PackageAudio("/audio/a/scene-01.wav", 1.5, nil)
	if audio.AudioURL != "/audio/a/scene-01.wav" || audio.DurationInSeconds != 1.5 {
		t.Fatalf("unexpected audio %+v", audio)
	}
	if audio.Captions == nil {
		t.Fatal("expected empty, non-nil captions")
	}
}

func TestNarrateScene(t *testing.T) {
	engines := &fakeEngines{}
	root := t.TempDir()
	n := newTestNarrator(t, engines, Settings{Paths: testPaths{root: root}})

	audio, err := n.NarrateScene(context.Background(), "why-go", 0, "  Go builds fast  ")
	if err != nil {
		t.Fatalf("NarrateScene: %v", err)
	}
	if audio.AudioURL != "/audio/why-go/scene-01.wav" {
		t.Fatalf("audio url = %q", audio.AudioURL)
	}
	if len(audio.Captions) != 3 || audio.Captions[2].Text != "fast" || audio.Captions[2].StartMs != 600 {
		t.Fatalf("unexpected captions %+v", audio.Captions)
	}
	if audio.DurationInSeconds < 0.89 || audio.DurationInSeconds > 0.91 {
		t.Fatalf("duration = %v", audio.DurationInSeconds)
	}
	if _, err := os.Stat(filepath.Join(root, "why-go", "scene-01.wav")); err != nil {
		t.Fatalf("expected audio file: %v", err)
	}

	if _, err := n.NarrateScene(context.Background(), "why-go", 1, "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank narration, got %v", err)
	}
}

func sampleStoryboard() timeline.Storyboard {
	return timeline.Storyboard{
		Slug:   "why-go",
		Format: timeline.FormatVertical,
		Scenes: []timeline.Scene{
			&timeline.TitleScene{Title: "Why Go", Narration: "Why Go matters"},
			&timeline.ContentScene{Body: "Speed", Narration: "It goes boom"},
			&timeline.ContentScene{Body: "Tooling", Narration: "Great tooling"},
			&timeline.CTAScene{Headline: "Try it"},
		},
	}
}

func TestNarrateStoryboardDegradesFailingScene(t *testing.T) {
	engines := &fakeEngines{failText: "boom"}
	n := newTestNarrator(t, engines, Settings{MaxConcurrent: 2})
	sb := sampleStoryboard()

	out, report := n.NarrateStoryboard(context.Background(), sb)
	if report.Err != nil {
		t.Fatalf("unexpected batch error: %v", report.Err)
	}
	if report.CorrelationID != "batch-1" || report.Slug != "why-go" {
		t.Fatalf("unexpected report header %+v", report)
	}
	want := []Status{StatusNarrated, StatusFailed, StatusNarrated, StatusSkipped}
	for i, status := range want {
		if report.Scenes[i].Status != status {
			t.Errorf("scene %d status = %s, want %s", i, report.Scenes[i].Status, status)
		}
	}
	if report.Scenes[1].ErrorKind != "external_tool" || report.Scenes[1].Error == "" {
		t.Errorf("failed scene lacks error detail: %+v", report.Scenes[1])
	}
	if out.Scenes[1].AudioTrack() != nil || out.Scenes[3].AudioTrack() != nil {
		t.Error("failed and skipped scenes must have no audio")
	}
	if out.Scenes[0].AudioTrack() == nil || out.Scenes[2].AudioTrack() == nil {
		t.Error("successful scenes lost their audio")
	}
	if out.Scenes[2].AudioTrack().AudioURL != "/audio/why-go/scene-03.wav" {
		t.Errorf("unexpected url %q", out.Scenes[2].AudioTrack().AudioURL)
	}
	for i, scene := range sb.Scenes {
		if scene.AudioTrack() != nil {
			t.Fatalf("input scene %d was modified", i)
		}
	}
}

func TestNarrateStoryboardUsesCache(t *testing.T) {
	ctx := context.Background()
	store, err := audiocache.Open(ctx, filepath.Join(t.TempDir(), "cache", "narrations.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	engines := &fakeEngines{}
	settings := Settings{EngineIdentity: []string{"voice.onnx", "", "large-v3", "en"}}
	n := newTestNarrator(t, engines, settings, WithCache(store))
	sb := timeline.Storyboard{Slug: "a", Scenes: []timeline.Scene{
		&timeline.TitleScene{Title: "t", Narration: "Hello cached world"},
	}}

	first, report := n.NarrateStoryboard(ctx, sb)
	if report.Scenes[0].Status != StatusNarrated {
		t.Fatalf("first run status = %s", report.Scenes[0].Status)
	}

	// A different output directory proves the audio is restored from the cache.
	n.settings.Paths = testPaths{root: t.TempDir()}
	second, report := n.NarrateStoryboard(ctx, sb)
	if report.Scenes[0].Status != StatusCached {
		t.Fatalf("second run status = %s", report.Scenes[0].Status)
	}
	if engines.synthCalls != 1 || engines.transcribeCalls != 1 {
		t.Fatalf("engines called again on cache hit: synth=%d transcribe=%d", engines.synthCalls, engines.transcribeCalls)
	}
	a, b := first.Scenes[0].AudioTrack(), second.Scenes[0].AudioTrack()
	if a.DurationInSeconds != b.DurationInSeconds || len(a.Captions) != len(b.Captions) {
		t.Fatalf("cached audio differs: %+v vs %+v", a, b)
	}
	if _, err := os.Stat(filepath.Join(n.settings.Paths.ArticleAudioDir("a"), "scene-01.wav")); err != nil {
		t.Fatalf("cached audio not restored: %v", err)
	}
}

func TestNarrateSceneRetries(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		errs      []error
		wantErr   error
		wantCalls int
	}{
		{
			name:      "transient failure recovers",
			retries:   1,
			errs:      []error{services.Wrap(services.ErrTransient, "whisperx", "transcribe", "flaky", nil)},
			wantCalls: 2,
		},
		{
			name:      "retries exhausted",
			retries:   1,
			errs:      []error{services.ErrExternalTool, services.ErrExternalTool},
			wantErr:   services.ErrExternalTool,
			wantCalls: 2,
		},
		{
			name:      "configuration errors are not retried",
			retries:   3,
			errs:      []error{services.Wrap(services.ErrConfiguration, "whisperx", "prepare", "uvx missing", nil)},
			wantErr:   services.ErrConfiguration,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engines := &fakeEngines{transcribeErrs: tt.errs}
			n := newTestNarrator(t, engines, Settings{Retries: tt.retries})
			_, err := n.NarrateScene(context.Background(), "a", 0, "hello there")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if engines.transcribeCalls != tt.wantCalls {
				t.Fatalf("transcribe calls = %d, want %d", engines.transcribeCalls, tt.wantCalls)
			}
		})
	}
}

func TestNarrateSceneTimeout(t *testing.T) {
	engines := &fakeEngines{blockSynth: true}
	n := newTestNarrator(t, engines, Settings{TTSTimeout: 20 * time.Millisecond})

	_, err := n.NarrateScene(context.Background(), "a", 0, "hello")
	if !services.IsTimeout(err) || !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if services.Kind(err) != "timeout" {
		t.Fatalf("kind = %q", services.Kind(err))
	}
}

func TestNarrateStoryboardCanceled(t *testing.T) {
	engines := &fakeEngines{}
	n := newTestNarrator(t, engines, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, report := n.NarrateStoryboard(ctx, sampleStoryboard())
	if !errors.Is(report.Err, context.Canceled) {
		t.Fatalf("report error = %v", report.Err)
	}
	if report.Count(StatusCanceled) != 3 || report.Count(StatusSkipped) != 1 {
		t.Fatalf("unexpected outcomes %+v", report.Scenes)
	}
	if engines.synthCalls != 0 {
		t.Fatalf("engines ran after cancellation: %d", engines.synthCalls)
	}
	if len(out.Scenes) != 4 {
		t.Fatalf("scenes dropped: %d", len(out.Scenes))
	}
}

func TestNarrateStoryboardLockedArticle(t *testing.T) {
	paths := testPaths{root: t.TempDir()}
	unlock, err := fileutil.TryLockDir(paths.ArticleAudioDir("why-go"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = unlock() }()

	engines := &fakeEngines{}
	n := newTestNarrator(t, engines, Settings{Paths: paths})
	_, report := n.NarrateStoryboard(context.Background(), sampleStoryboard())
	if !errors.Is(report.Err, fileutil.ErrLocked) {
		t.Fatalf("expected lock error, got %v", report.Err)
	}
	if engines.synthCalls != 0 {
		t.Fatal("engines ran despite held lock")
	}
}
