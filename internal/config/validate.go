package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"reelcast/internal/timeline"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateEngines(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	if !slices.Contains(timeline.Formats(), timeline.Format(c.Video.Format)) {
		return fmt.Errorf("video.format must be one of vertical, square, landscape (got %q)", c.Video.Format)
	}
	if c.Video.AudioPaddingSeconds < 0 {
		return errors.New("video.audio_padding_seconds must be >= 0")
	}
	for _, kind := range sortedKeys(c.Video.DefaultDurations) {
		if !slices.Contains(timeline.Kinds(), timeline.Kind(kind)) {
			return fmt.Errorf("video.default_durations: unknown scene type %q", kind)
		}
		if c.Video.DefaultDurations[kind] <= 0 {
			return fmt.Errorf("video.default_durations.%s must be positive", kind)
		}
	}
	for _, format := range sortedKeys(c.Video.TransitionFrames) {
		if !slices.Contains(timeline.Formats(), timeline.Format(format)) {
			return fmt.Errorf("video.transition_frames: unknown format %q", format)
		}
		if c.Video.TransitionFrames[format] < 0 {
			return fmt.Errorf("video.transition_frames.%s must be >= 0", format)
		}
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.Lookahead <= 0 {
		return errors.New("captions.lookahead must be positive")
	}
	if c.Captions.ExtrapolateMs <= 0 {
		return errors.New("captions.extrapolate_ms must be positive")
	}
	if c.Captions.PageCombineMs < 0 {
		return errors.New("captions.page_combine_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateEngines() error {
	if err := ensurePositiveMap(map[string]int{
		"tts.timeout_seconds":           c.TTS.TimeoutSeconds,
		"transcription.timeout_seconds": c.Transcription.TimeoutSeconds,
	}); err != nil {
		return err
	}
	switch c.Transcription.VADMethod {
	case "silero":
	case "pyannote":
		if c.Transcription.HFToken == "" {
			return errors.New("transcription.hf_token (or HF_TOKEN) is required when vad_method is pyannote")
		}
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote (got %q)", c.Transcription.VADMethod)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxConcurrent < 1 {
		return errors.New("pipeline.max_concurrent must be >= 1")
	}
	if c.Pipeline.Retries < 0 {
		return errors.New("pipeline.retries must be >= 0")
	}
	if c.Pipeline.RateLimitPerMin < 0 {
		return errors.New("pipeline.rate_limit_per_min must be >= 0")
	}
	return nil
}

// RequireTTSModel reports a configuration error when no voice model is set.
func (c *Config) RequireTTSModel() error {
	if strings.TrimSpace(c.TTS.Model) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("tts.model is required. Set REELCAST_TTS_MODEL env var or edit %s (create with 'reelcast config init')", defaultPath)
}

func ensurePositiveMap(values map[string]int) error {
	for _, key := range sortedKeys(values) {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func sortedKeys[V any](values map[string]V) []string {
	return slices.Sorted(maps.Keys(values))
}
