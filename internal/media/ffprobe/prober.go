package ffprobe

import (
	"context"
	"fmt"
	"math"
)

// Prober measures audio durations with a configured ffprobe binary.
type Prober struct {
	binary string
	run    Runner
}

// ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithRunner replaces command execution, mainly for tests.
func WithRunner(run Runner) ProberOption {
	return func(p *Prober) {
		if run != nil {
			p.run = run
		}
	}
}

// NewProber returns a Prober invoking binary. A blank binary means "ffprobe".
func NewProber(binary string, opts ...ProberOption) *Prober {
	p := &Prober{binary: binary, run: execRunner}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DurationSeconds returns the playback length of the audio file at path.
func (p *Prober) DurationSeconds(ctx context.Context, path string) (float64, error) {
	result, err := inspect(ctx, p.run, p.binary, path)
	if err != nil {
		return 0, err
	}
	if result.AudioStreamCount() == 0 {
		return 0, fmt.Errorf("ffprobe: %s has no audio stream", path)
	}
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		return 0, fmt.Errorf("ffprobe: %s reports no usable duration", path)
	}
	return duration, nil
}
