package timeline

import "github.com/shopspring/decimal"

const (
	// DefaultFPS is the composition frame rate.
	DefaultFPS = 30
	// AudioPaddingSeconds keeps a scene on screen after its narration ends so
	// trailing animation can finish.
	AudioPaddingSeconds = 1.0
)

// DefaultDurations returns the per-kind length, in seconds, of a scene that has
// no narration audio.
func DefaultDurations() map[Kind]float64 {
	return map[Kind]float64{
		KindTitle:   5,
		KindContent: 8,
		KindCTA:     4,
	}
}

// DefaultTransitions returns the cross-fade length in frames per format.
func DefaultTransitions() map[Format]int {
	return map[Format]int{
		FormatVertical:  10,
		FormatSquare:    15,
		FormatLandscape: 15,
	}
}

// SceneDurationFrames returns the length of scene in frames. With audio the
// scene lasts ceil((duration + 1s) * fps); without audio it lasts the kind's
// default, rounded up to a whole frame. Kinds missing from defaults use
// DefaultDurations.
func SceneDurationFrames(scene Scene, fps int, defaults map[Kind]float64) int {
	return sceneFrames(scene, fps, defaults, AudioPaddingSeconds)
}

// TotalDurationFrames sums scene lengths and removes one transition for every
// boundary between adjacent scenes.
func TotalDurationFrames(sceneFrames []int, transitionFrames int) int {
	total := 0
	for _, frames := range sceneFrames {
		total += frames
	}
	if len(sceneFrames) <= 1 {
		return total
	}
	return total - (len(sceneFrames)-1)*transitionFrames
}

func sceneFrames(scene Scene, fps int, defaults map[Kind]float64, paddingSeconds float64) int {
	if IsNil(scene) {
		return 0
	}
	if audio := scene.AudioTrack(); audio != nil {
		seconds := decimal.NewFromFloat(audio.DurationInSeconds).Add(decimal.NewFromFloat(paddingSeconds))
		return secondsToFrames(seconds, fps)
	}
	seconds, ok := defaults[scene.Kind()]
	if !ok {
		seconds = DefaultDurations()[scene.Kind()]
	}
	return secondsToFrames(decimal.NewFromFloat(seconds), fps)
}

func secondsToFrames(seconds decimal.Decimal, fps int) int {
	return int(seconds.Mul(decimal.NewFromInt(int64(fps))).Ceil().IntPart())
}
