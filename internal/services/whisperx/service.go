package whisperx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"reelcast/internal/captions"
	"reelcast/internal/deps"
	"reelcast/internal/services"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) error
	requireFn     func([]deps.Requirement) error

	prepareOnce sync.Once
	prepareErr  error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, ffmpegBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
		requireFn:    deps.RequireBinaries,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.model()
}

// Requirements lists the binaries a transcription invokes.
func (s *Service) Requirements() []deps.Requirement {
	return []deps.Requirement{
		{Name: "uvx", Command: UVXCommand, Description: "Runs WhisperX for word timestamps"},
		{Name: "FFmpeg", Command: s.ffmpegBinary, Description: "Normalizes narration audio for WhisperX"},
	}
}

// Prepare verifies the external binaries. The check runs once; later calls
// return the first result.
func (s *Service) Prepare(context.Context) error {
	s.prepareOnce.Do(func() {
		if s.requireFn == nil {
			return
		}
		if err := s.requireFn(s.Requirements()); err != nil {
			s.prepareErr = services.Wrap(services.ErrConfiguration, "whisperx", "prepare", "WhisperX prerequisites unavailable", err)
		}
	})
	return s.prepareErr
}

// Transcribe returns the timed tokens WhisperX recognizes in audioPath.
func (s *Service) Transcribe(ctx context.Context, audioPath string) ([]captions.RawToken, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "whisperx", "transcribe", "audio path required", nil)
	}
	if err := s.Prepare(ctx); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "reelcast-whisperx-*")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "whisperx", "transcribe", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "narration.wav")
	if err := s.ExtractMono(ctx, audioPath, wavPath); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisperx", "extract", "ffmpeg conversion failed", err)
	}
	if err := s.run(ctx, UVXCommand, s.buildArgs(wavPath, workDir)...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisperx", "transcribe", "whisperx run failed", err)
	}

	words, err := LoadWords(filepath.Join(workDir, "narration.json"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisperx", "parse", "read word timestamps", err)
	}
	return RawTokens(words), nil
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := append([]string{}, s.cfg.indexArgs()...)
	args = append(args, "whisperx", source, "--model", s.Model(), "--output_dir", outputDir)
	args = append(args, decodeFlags...)

	vad := s.cfg.vadMethod()
	args = append(args, "--vad_method", vad)
	if vad == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if lang := canonicalLanguage(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return append(args, s.cfg.deviceArgs()...)
}

// canonicalLanguage reduces a BCP 47 tag or ISO 639 code to the base language
// WhisperX expects ("en-US" and "eng" both become "en"). Unparsable values
// yield "" so WhisperX falls back to detection.
func canonicalLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}
