package whisperx

import (
	"context"
	"errors"
)

// ExtractMono converts the first audio stream of source into a mono 16kHz WAV
// file suitable for WhisperX.
func (s *Service) ExtractMono(ctx context.Context, source, dest string) error {
	if source == "" || dest == "" {
		return errors.New("extract audio: source and destination required")
	}
	return s.run(ctx, s.ffmpegBinary, buildExtractArgs(source, dest)...)
}

func buildExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}
