package pipeline

import (
	"reelcast/internal/captions"
	"reelcast/internal/timeline"
)

// ProduceCaptions aligns narration against raw engine tokens using the default
// aligner settings.
func ProduceCaptions(narration string, raw []captions.RawToken) []captions.Entry {
	return captions.Align(narration, captions.Merge(raw))
}

// PackageAudio bundles a narration file reference with its captions.
func PackageAudio(audioURL string, durationSeconds float64, caps []captions.Entry) *timeline.Audio {
	if caps == nil {
		caps = []captions.Entry{}
	}
	return &timeline.Audio{
		AudioURL:          audioURL,
		Captions:          caps,
		DurationInSeconds: durationSeconds,
	}
}
