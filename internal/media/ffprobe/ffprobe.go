package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultBinary is used when no ffprobe path is configured.
const DefaultBinary = "ffprobe"

// Result is the subset of ffprobe's JSON report reelcast reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Runner executes a binary and returns its combined output.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput()
}

// probeArgs limits the report to the fields Result decodes.
var probeArgs = []string{
	"-v", "error",
	"-hide_banner",
	"-show_entries", "format=filename,duration,format_name:stream=index,codec_name,codec_type,duration,sample_rate,channels",
	"-of", "json",
}

// Inspect runs ffprobe against path and decodes its report.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	return inspect(ctx, execRunner, binary, path)
}

func inspect(ctx context.Context, run Runner, binary, path string) (Result, error) {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = DefaultBinary
	}
	if path = strings.TrimSpace(path); path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := append(append([]string{}, probeArgs...), "--", path)
	output, err := run(ctx, binary, args...)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// AudioStreams returns the audio streams in report order.
func (r Result) AudioStreams() []Stream {
	var audio []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			audio = append(audio, stream)
		}
	}
	return audio
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return len(r.AudioStreams())
}

// DurationSeconds prefers the container duration and falls back to the
// longest audio stream. It returns 0 when neither is reported and NaN when
// the reported value is not a number.
func (r Result) DurationSeconds() float64 {
	if strings.TrimSpace(r.Format.Duration) != "" {
		return parseSeconds(r.Format.Duration)
	}
	longest := decimal.Zero
	for _, stream := range r.AudioStreams() {
		if d, err := decimal.NewFromString(strings.TrimSpace(stream.Duration)); err == nil && d.GreaterThan(longest) {
			longest = d
		}
	}
	return longest.InexactFloat64()
}

func parseSeconds(value string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return math.NaN()
	}
	return d.InexactFloat64()
}
