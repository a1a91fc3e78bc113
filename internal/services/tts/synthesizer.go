package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"reelcast/internal/deps"
	"reelcast/internal/services"
)

// DefaultBinary is the Piper executable name.
const DefaultBinary = "piper"

// Config captures Piper settings.
type Config struct {
	Binary  string
	Model   string
	Speaker string
}

// Runner executes name with args, feeding stdin to the process.
type Runner func(ctx context.Context, stdin string, name string, args ...string) error

// CommandSynthesizer synthesizes speech by piping text into the piper binary.
type CommandSynthesizer struct {
	cfg       Config
	run       Runner
	requireFn func([]deps.Requirement) error

	prepareOnce sync.Once
	prepareErr  error
}

// NewCommandSynthesizer creates a Piper-compatible synthesizer.
func NewCommandSynthesizer(cfg Config) *CommandSynthesizer {
	cfg.Binary = strings.TrimSpace(cfg.Binary)
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	return &CommandSynthesizer{cfg: cfg, run: execRunner, requireFn: deps.RequireBinaries}
}

// WithRunner replaces command execution (for testing).
func (p *CommandSynthesizer) WithRunner(run Runner) *CommandSynthesizer {
	if run != nil {
		p.run = run
	}
	return p
}

// Requirements lists the binaries synthesis invokes.
func (p *CommandSynthesizer) Requirements() []deps.Requirement {
	return []deps.Requirement{{Name: "Piper", Command: p.cfg.Binary, Description: "Synthesizes narration audio"}}
}

// Prepare verifies the binary and voice model once.
func (p *CommandSynthesizer) Prepare(context.Context) error {
	p.prepareOnce.Do(func() {
		if strings.TrimSpace(p.cfg.Model) == "" {
			p.prepareErr = services.Wrap(services.ErrConfiguration, "tts", "prepare", "voice model not configured", nil)
			return
		}
		if p.requireFn != nil {
			if err := p.requireFn(p.Requirements()); err != nil {
				p.prepareErr = services.Wrap(services.ErrConfiguration, "tts", "prepare", "piper unavailable", err)
			}
		}
	})
	return p.prepareErr
}

// Synthesize writes text as speech to dest, creating parent directories.
func (p *CommandSynthesizer) Synthesize(ctx context.Context, text, dest string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "tts", "synthesize", "narration text is empty", nil)
	}
	if dest == "" {
		return services.Wrap(services.ErrValidation, "tts", "synthesize", "destination required", nil)
	}
	if err := p.Prepare(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "tts", "synthesize", "create audio dir", err)
	}
	if err := p.run(ctx, text, p.cfg.Binary, p.buildArgs(dest)...); err != nil {
		_ = os.Remove(dest)
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize", "piper run failed", err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize", "piper produced no audio", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(dest)
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize", "piper produced empty audio", errors.New(dest))
	}
	return nil
}

func (p *CommandSynthesizer) buildArgs(dest string) []string {
	args := []string{"--model", p.cfg.Model, "--output_file", dest}
	if speaker := strings.TrimSpace(p.cfg.Speaker); speaker != "" {
		args = append(args, "--speaker", speaker)
	}
	return args
}

func execRunner(ctx context.Context, stdin string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(stdin)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
