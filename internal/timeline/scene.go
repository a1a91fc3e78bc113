package timeline

import (
	"reflect"

	"reelcast/internal/captions"
)

// Kind identifies a scene variant.
type Kind string

const (
	KindTitle   Kind = "title"
	KindContent Kind = "content"
	KindCTA     Kind = "cta"
)

// Kinds lists every scene variant in presentation order.
func Kinds() []Kind {
	return []Kind{KindTitle, KindContent, KindCTA}
}

// Format is the output aspect of a rendered video.
type Format string

const (
	FormatVertical  Format = "vertical"
	FormatSquare    Format = "square"
	FormatLandscape Format = "landscape"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatVertical, FormatSquare, FormatLandscape}
}

// Audio is the narration packaged onto a scene for the renderer.
type Audio struct {
	AudioURL          string           `json:"audioUrl"`
	Captions          []captions.Entry `json:"captions"`
	DurationInSeconds float64          `json:"durationInSeconds"`
}

// Scene is one storyboard scene. The set of implementations is closed:
// *TitleScene, *ContentScene and *CTAScene.
type Scene interface {
	Kind() Kind
	NarrationText() string
	AudioTrack() *Audio
	withAudio(audio *Audio) Scene
}

// TitleScene opens a video.
type TitleScene struct {
	Title     string `json:"title" validate:"required"`
	Subtitle  string `json:"subtitle,omitempty"`
	Narration string `json:"narration,omitempty"`
	Audio     *Audio `json:"audio,omitempty"`
}

// ContentScene carries the body of an article.
type ContentScene struct {
	Heading   string   `json:"heading,omitempty"`
	Body      string   `json:"body" validate:"required"`
	Bullets   []string `json:"bullets,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Narration string   `json:"narration,omitempty"`
	Audio     *Audio   `json:"audio,omitempty"`
}

// CTAScene closes a video with a call to action.
type CTAScene struct {
	Headline    string `json:"headline" validate:"required"`
	ButtonLabel string `json:"buttonLabel,omitempty"`
	URL         string `json:"url,omitempty" validate:"omitempty,url"`
	Narration   string `json:"narration,omitempty"`
	Audio       *Audio `json:"audio,omitempty"`
}

func (*TitleScene) Kind() Kind              { return KindTitle }
func (s *TitleScene) NarrationText() string { return s.Narration }
func (s *TitleScene) AudioTrack() *Audio    { return s.Audio }
func (s *TitleScene) withAudio(audio *Audio) Scene {
	clone := *s
	clone.Audio = audio
	return &clone
}

func (*ContentScene) Kind() Kind              { return KindContent }
func (s *ContentScene) NarrationText() string { return s.Narration }
func (s *ContentScene) AudioTrack() *Audio    { return s.Audio }
func (s *ContentScene) withAudio(audio *Audio) Scene {
	clone := *s
	clone.Bullets = append([]string(nil), s.Bullets...)
	clone.Audio = audio
	return &clone
}

func (*CTAScene) Kind() Kind              { return KindCTA }
func (s *CTAScene) NarrationText() string { return s.Narration }
func (s *CTAScene) AudioTrack() *Audio    { return s.Audio }
func (s *CTAScene) withAudio(audio *Audio) Scene {
	clone := *s
	clone.Audio = audio
	return &clone
}

// IsNil reports whether scene is nil, including a typed nil pointer held in
// the interface.
func IsNil(scene Scene) bool {
	return scene == nil || reflect.ValueOf(scene).IsNil()
}

// WithAudio returns a copy of scene carrying audio. The original is not
// modified. A nil audio yields a silent copy.
func WithAudio(scene Scene, audio *Audio) Scene {
	if IsNil(scene) {
		return nil
	}
	return scene.withAudio(audio)
}

// Clone returns an independent copy of scene, keeping its current audio.
func Clone(scene Scene) Scene {
	if IsNil(scene) {
		return nil
	}
	return scene.withAudio(scene.AudioTrack())
}
