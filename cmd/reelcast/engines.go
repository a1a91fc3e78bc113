package main

import (
	"context"
	"log/slog"

	"reelcast/internal/audiocache"
	"reelcast/internal/config"
	"reelcast/internal/media/ffprobe"
	"reelcast/internal/pipeline"
	"reelcast/internal/services/tts"
	"reelcast/internal/services/whisperx"
)

// engines bundles the prepared external collaborators of a narration run.
type engines struct {
	narrator *pipeline.Narrator
	cache    *audiocache.Store
}

func (e *engines) Close() error {
	if e == nil || e.cache == nil {
		return nil
	}
	return e.cache.Close()
}

func newSynthesizer(cfg *config.Config) *tts.CommandSynthesizer {
	return tts.NewCommandSynthesizer(tts.Config{
		Binary:  cfg.TTSBinary(),
		Model:   cfg.TTS.Model,
		Speaker: cfg.TTS.Speaker,
	})
}

func newTranscriber(cfg *config.Config) *whisperx.Service {
	return whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		Language:    cfg.Transcription.Language,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HFToken,
	}, "")
}

// prepareEngines checks the engines once at startup and wires the narrator.
func prepareEngines(ctx context.Context, cfg *config.Config, logger *slog.Logger, maxConcurrent int) (*engines, error) {
	if err := cfg.RequireTTSModel(); err != nil {
		return nil, err
	}
	synth := newSynthesizer(cfg)
	if err := synth.Prepare(ctx); err != nil {
		return nil, err
	}
	transcriber := newTranscriber(cfg)
	if err := transcriber.Prepare(ctx); err != nil {
		return nil, err
	}

	settings := pipeline.SettingsFromConfig(cfg)
	if maxConcurrent > 0 {
		settings.MaxConcurrent = maxConcurrent
	}
	opts := []pipeline.Option{
		pipeline.WithAligner(cfg.Aligner()),
		pipeline.WithLogger(logger),
	}

	result := &engines{}
	if cfg.Pipeline.CacheEnabled {
		store, err := audiocache.Open(ctx, cfg.CacheDBPath())
		if err != nil {
			return nil, err
		}
		result.cache = store
		opts = append(opts, pipeline.WithCache(store))
	}

	result.narrator = pipeline.NewNarrator(settings, synth, transcriber, ffprobe.NewProber(cfg.FFprobeBinary()), opts...)
	return result, nil
}
