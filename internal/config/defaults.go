package config

import (
	"reelcast/internal/captions"
	"reelcast/internal/timeline"
)

const (
	defaultConfigPath              = "~/.config/reelcast/config.toml"
	defaultAudioDir                = "~/.local/share/reelcast/audio"
	defaultAudioBaseURL            = "/audio"
	defaultLogDir                  = "~/.local/share/reelcast/logs"
	defaultFormat                  = string(timeline.FormatLandscape)
	defaultPageCombineMs           = 1200
	defaultTTSBinary               = "piper"
	defaultTTSTimeoutSeconds       = 120
	defaultTranscriptionModel      = "large-v3-turbo"
	defaultTranscriptionLanguage   = "en"
	defaultTranscriptionVADMethod  = "silero"
	defaultTranscriptionTimeout    = 600
	defaultPipelineMaxConcurrent   = 1
	defaultPipelineRetries         = 1
	defaultPipelineRateLimitPerMin = 0
	defaultAPIBind                 = "127.0.0.1:7488"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AudioDir:     defaultAudioDir,
			AudioBaseURL: defaultAudioBaseURL,
			CacheDir:     defaultCacheDir(),
			LogDir:       defaultLogDir,
		},
		Video: Video{
			FPS:                 timeline.DefaultFPS,
			Format:              defaultFormat,
			AudioPaddingSeconds: timeline.AudioPaddingSeconds,
			DefaultDurations:    defaultDurations(),
			TransitionFrames:    defaultTransitionFrames(),
		},
		Captions: Captions{
			Lookahead:     captions.DefaultLookahead,
			ExtrapolateMs: captions.DefaultExtrapolateMs,
			PageCombineMs: defaultPageCombineMs,
		},
		TTS: TTS{
			Binary:         defaultTTSBinary,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Transcription: Transcription{
			Model:          defaultTranscriptionModel,
			Language:       defaultTranscriptionLanguage,
			VADMethod:      defaultTranscriptionVADMethod,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		Pipeline: Pipeline{
			MaxConcurrent:   defaultPipelineMaxConcurrent,
			Retries:         defaultPipelineRetries,
			RateLimitPerMin: defaultPipelineRateLimitPerMin,
			CacheEnabled:    true,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultDurations() map[string]float64 {
	out := make(map[string]float64)
	for kind, seconds := range timeline.DefaultDurations() {
		out[string(kind)] = seconds
	}
	return out
}

func defaultTransitionFrames() map[string]int {
	out := make(map[string]int)
	for format, frames := range timeline.DefaultTransitions() {
		out[string(format)] = frames
	}
	return out
}
