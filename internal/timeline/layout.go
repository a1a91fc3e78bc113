package timeline

// Calculator computes scene and composition lengths for one rendering
// configuration.
type Calculator struct {
	FPS            int
	Defaults       map[Kind]float64
	PaddingSeconds float64
	Transitions    map[Format]int
}

// NewCalculator returns a calculator with the stock frame rate, durations, and
// transitions.
func NewCalculator() Calculator {
	return Calculator{
		FPS:            DefaultFPS,
		Defaults:       DefaultDurations(),
		PaddingSeconds: AudioPaddingSeconds,
		Transitions:    DefaultTransitions(),
	}
}

// Placement positions one scene on the composition timeline.
type Placement struct {
	Index            int  `json:"index"`
	Kind             Kind `json:"kind"`
	From             int  `json:"from"`
	DurationInFrames int  `json:"durationInFrames"`
	HasAudio         bool `json:"hasAudio"`
}

// Layout is the frame schedule a transition-series renderer consumes.
type Layout struct {
	FPS                   int         `json:"fps"`
	Format                Format      `json:"format"`
	TransitionFrames      int         `json:"transitionFrames"`
	Scenes                []Placement `json:"scenes"`
	TotalDurationInFrames int         `json:"totalDurationInFrames"`
}

func (c Calculator) fps() int {
	if c.FPS <= 0 {
		return DefaultFPS
	}
	return c.FPS
}

// TransitionFrames resolves the cross-fade length for format. Unknown or blank
// formats use the landscape value.
func (c Calculator) TransitionFrames(format Format) int {
	if frames, ok := c.Transitions[format]; ok {
		return frames
	}
	if frames, ok := c.Transitions[FormatLandscape]; ok {
		return frames
	}
	return DefaultTransitions()[FormatLandscape]
}

// SceneFrames returns the length of one scene in frames.
func (c Calculator) SceneFrames(scene Scene) int {
	return sceneFrames(scene, c.fps(), c.Defaults, c.PaddingSeconds)
}

// Total returns the composition length of scenes rendered in format.
func (c Calculator) Total(scenes []Scene, format Format) int {
	frames := make([]int, len(scenes))
	for i, scene := range scenes {
		frames[i] = c.SceneFrames(scene)
	}
	return TotalDurationFrames(frames, c.TransitionFrames(format))
}

// Layout schedules scenes back to back, each starting one transition before
// the previous scene ends. The last placement always ends at the value Total
// reports.
func (c Calculator) Layout(scenes []Scene, format Format) Layout {
	transition := c.TransitionFrames(format)
	layout := Layout{
		FPS:              c.fps(),
		Format:           format,
		TransitionFrames: transition,
		Scenes:           make([]Placement, 0, len(scenes)),
	}
	from := 0
	for i, scene := range scenes {
		duration := c.SceneFrames(scene)
		if i > 0 {
			from -= transition
		}
		placement := Placement{
			Index:            i,
			From:             from,
			DurationInFrames: duration,
		}
		if !IsNil(scene) {
			placement.Kind = scene.Kind()
			placement.HasAudio = scene.AudioTrack() != nil
		}
		layout.Scenes = append(layout.Scenes, placement)
		from += duration
	}
	layout.TotalDurationInFrames = from
	return layout
}
