package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"reelcast/internal/captions"
	"reelcast/internal/timeline"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and URL configuration for generated narration.
type Paths struct {
	AudioDir     string `toml:"audio_dir"`
	AudioBaseURL string `toml:"audio_base_url"`
	CacheDir     string `toml:"cache_dir"`
	LogDir       string `toml:"log_dir"`
}

// Video contains rendering parameters consumed by the scene timing calculator.
type Video struct {
	FPS                 int                `toml:"fps"`
	Format              string             `toml:"format"`
	AudioPaddingSeconds float64            `toml:"audio_padding_seconds"`
	DefaultDurations    map[string]float64 `toml:"default_durations"`
	TransitionFrames    map[string]int     `toml:"transition_frames"`
}

// Captions contains caption alignment tunables.
type Captions struct {
	Lookahead     int   `toml:"lookahead"`
	ExtrapolateMs int64 `toml:"extrapolate_ms"`
	PageCombineMs int64 `toml:"page_combine_ms"`
}

// TTS contains configuration for the text-to-speech engine.
type TTS struct {
	Binary         string `toml:"binary"`
	Model          string `toml:"model"`
	Speaker        string `toml:"speaker"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcription contains configuration for WhisperX word timestamps.
type Transcription struct {
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	CUDAEnabled    bool   `toml:"cuda_enabled"`
	VADMethod      string `toml:"vad_method"`
	HFToken        string `toml:"hf_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Pipeline contains scheduling settings for narration batches.
type Pipeline struct {
	MaxConcurrent   int  `toml:"max_concurrent"`
	Retries         int  `toml:"retries"`
	RateLimitPerMin int  `toml:"rate_limit_per_min"`
	CacheEnabled    bool `toml:"cache_enabled"`
}

// API contains configuration for the HTTP service.
type API struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Reelcast.
//
// Configuration sections by subsystem:
//   - Paths: audio output, cache, and log directories
//   - Video: frame rate, output format, durations, and transitions
//   - Captions: alignment window and caption paging
//   - TTS: speech synthesis binary and voice
//   - Transcription: WhisperX model and runtime flags
//   - Pipeline: concurrency, retries, and the audio cache
//   - API: HTTP bind address
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Video         Video         `toml:"video"`
	Captions      Captions      `toml:"captions"`
	TTS           TTS           `toml:"tts"`
	Transcription Transcription `toml:"transcription"`
	Pipeline      Pipeline      `toml:"pipeline"`
	API           API           `toml:"api"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelcast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the audio, cache, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AudioDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable name used for duration probes.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// TTSBinary returns the speech synthesis executable name.
func (c *Config) TTSBinary() string {
	return c.TTS.Binary
}

// CacheDBPath returns the location of the narration cache database.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Paths.CacheDir, "narrations.db")
}

// ArticleAudioDir returns the directory holding generated audio for one article.
func (c *Config) ArticleAudioDir(slug string) string {
	return filepath.Join(c.Paths.AudioDir, slug)
}

// AudioURL returns the public reference for an audio file of an article.
func (c *Config) AudioURL(slug, fileName string) string {
	base := strings.TrimRight(c.Paths.AudioBaseURL, "/")
	return base + "/" + slug + "/" + fileName
}

// Timeline builds the scene timing calculator for the configured video settings.
func (c *Config) Timeline() timeline.Calculator {
	calc := timeline.Calculator{
		FPS:            c.Video.FPS,
		PaddingSeconds: c.Video.AudioPaddingSeconds,
		Defaults:       make(map[timeline.Kind]float64, len(c.Video.DefaultDurations)),
		Transitions:    make(map[timeline.Format]int, len(c.Video.TransitionFrames)),
	}
	for kind, seconds := range c.Video.DefaultDurations {
		calc.Defaults[timeline.Kind(kind)] = seconds
	}
	for format, frames := range c.Video.TransitionFrames {
		calc.Transitions[timeline.Format(format)] = frames
	}
	return calc
}

// VideoFormat returns the configured default output format.
func (c *Config) VideoFormat() timeline.Format {
	return timeline.Format(c.Video.Format)
}

// Aligner builds a caption aligner with the configured window and extrapolation span.
func (c *Config) Aligner() *captions.Aligner {
	return captions.NewAligner(
		captions.WithLookahead(c.Captions.Lookahead),
		captions.WithExtrapolateMs(c.Captions.ExtrapolateMs),
	)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "reelcast")
	}
	return "~/.cache/reelcast"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
