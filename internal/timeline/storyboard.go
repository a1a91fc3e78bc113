package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Storyboard is the ordered scene list of one article video.
type Storyboard struct {
	Slug   string  `json:"slug" validate:"required"`
	Title  string  `json:"title,omitempty"`
	Format Format  `json:"format,omitempty" validate:"omitempty,oneof=vertical square landscape"`
	Scenes []Scene `json:"-" validate:"min=1"`
}

// EffectiveFormat returns the storyboard format, defaulting to landscape.
func (s Storyboard) EffectiveFormat() Format {
	if s.Format == "" {
		return FormatLandscape
	}
	return s.Format
}

// Clone returns a copy whose scenes can be modified independently.
func (s Storyboard) Clone() Storyboard {
	clone := s
	clone.Scenes = make([]Scene, len(s.Scenes))
	for i, scene := range s.Scenes {
		clone.Scenes[i] = Clone(scene)
	}
	return clone
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the storyboard and every scene.
func (s Storyboard) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid storyboard: %s", describeValidation(err))
	}
	for i, scene := range s.Scenes {
		if IsNil(scene) {
			return fmt.Errorf("invalid storyboard: scene %d is empty", i)
		}
		if err := validate.Struct(scene); err != nil {
			return fmt.Errorf("invalid storyboard: scene %d (%s): %s", i, scene.Kind(), describeValidation(err))
		}
	}
	return nil
}

func describeValidation(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		part := fmt.Sprintf("field %q failed on %q", fieldErr.Field(), fieldErr.Tag())
		if fieldErr.Param() != "" {
			part += fmt.Sprintf(" (%s)", fieldErr.Param())
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// DecodeStoryboard reads and validates a storyboard JSON document.
func DecodeStoryboard(r io.Reader) (Storyboard, error) {
	var sb Storyboard
	if err := json.NewDecoder(r).Decode(&sb); err != nil {
		return Storyboard{}, fmt.Errorf("decode storyboard: %w", err)
	}
	if err := sb.Validate(); err != nil {
		return Storyboard{}, err
	}
	return sb, nil
}

type storyboardDocument struct {
	Slug   string            `json:"slug"`
	Title  string            `json:"title,omitempty"`
	Format Format            `json:"format,omitempty"`
	Scenes []json.RawMessage `json:"scenes"`
}

// MarshalJSON encodes scenes with a "type" discriminator.
func (s Storyboard) MarshalJSON() ([]byte, error) {
	doc := storyboardDocument{
		Slug:   s.Slug,
		Title:  s.Title,
		Format: s.Format,
		Scenes: make([]json.RawMessage, 0, len(s.Scenes)),
	}
	for i, scene := range s.Scenes {
		raw, err := MarshalScene(scene)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		doc.Scenes = append(doc.Scenes, raw)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes scenes by their "type" discriminator.
func (s *Storyboard) UnmarshalJSON(data []byte) error {
	var doc storyboardDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	scenes := make([]Scene, 0, len(doc.Scenes))
	for i, raw := range doc.Scenes {
		scene, err := UnmarshalScene(raw)
		if err != nil {
			return fmt.Errorf("scene %d: %w", i, err)
		}
		scenes = append(scenes, scene)
	}
	*s = Storyboard{
		Slug:   doc.Slug,
		Title:  doc.Title,
		Format: doc.Format,
		Scenes: scenes,
	}
	return nil
}

// MarshalScene encodes one scene with its "type" discriminator.
func MarshalScene(scene Scene) ([]byte, error) {
	switch v := scene.(type) {
	case *TitleScene:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*TitleScene
		}{KindTitle, v})
	case *ContentScene:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*ContentScene
		}{KindContent, v})
	case *CTAScene:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*CTAScene
		}{KindCTA, v})
	default:
		return nil, fmt.Errorf("unsupported scene %T", scene)
	}
}

// UnmarshalScene decodes one scene, picking the variant from its "type" field.
func UnmarshalScene(data []byte) (Scene, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var scene Scene
	switch head.Type {
	case KindTitle:
		scene = &TitleScene{}
	case KindContent:
		scene = &ContentScene{}
	case KindCTA:
		scene = &CTAScene{}
	case "":
		return nil, errors.New("missing scene type")
	default:
		return nil, fmt.Errorf("unknown scene type %q", head.Type)
	}
	if err := json.Unmarshal(data, scene); err != nil {
		return nil, err
	}
	return scene, nil
}
