package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeTTS()
	c.normalizeTranscription()
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.AudioBaseURL = strings.TrimSpace(c.Paths.AudioBaseURL)
	if c.Paths.AudioBaseURL == "" {
		c.Paths.AudioBaseURL = defaultAudioBaseURL
	}
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeVideo() {
	c.Video.Format = strings.ToLower(strings.TrimSpace(c.Video.Format))
	if c.Video.Format == "" {
		c.Video.Format = defaultFormat
	}

	durations := defaultDurations()
	for kind, seconds := range c.Video.DefaultDurations {
		durations[strings.ToLower(strings.TrimSpace(kind))] = seconds
	}
	c.Video.DefaultDurations = durations

	transitions := defaultTransitionFrames()
	for format, frames := range c.Video.TransitionFrames {
		transitions[strings.ToLower(strings.TrimSpace(format))] = frames
	}
	c.Video.TransitionFrames = transitions
}

func (c *Config) normalizeTTS() {
	c.TTS.Binary = strings.TrimSpace(c.TTS.Binary)
	if c.TTS.Binary == "" {
		c.TTS.Binary = defaultTTSBinary
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	if c.TTS.Model == "" {
		if value, ok := os.LookupEnv("REELCAST_TTS_MODEL"); ok {
			c.TTS.Model = strings.TrimSpace(value)
		}
	}
	c.TTS.Speaker = strings.TrimSpace(c.TTS.Speaker)
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultTranscriptionLanguage
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultTranscriptionVADMethod
	}
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	if c.Transcription.HFToken == "" {
		for _, key := range []string{"HF_TOKEN", "HUGGING_FACE_HUB_TOKEN"} {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				c.Transcription.HFToken = value
				break
			}
		}
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.MaxConcurrent == 0 {
		c.Pipeline.MaxConcurrent = defaultPipelineMaxConcurrent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
