package story

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/logging"
)

// Encode writes s as an indented JSON document.
func Encode(w io.Writer, s domain.Story) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode story: %w", err)
	}
	return nil
}

// Decode reads a JSON story document. Objects decoded with an empty frame
// list get one empty frame and out of range active indices are clamped, so
// the result always satisfies the object invariants.
func Decode(r io.Reader) (domain.Story, error) {
	var s domain.Story
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return domain.Story{}, fmt.Errorf("decode story: %w", err)
	}
	Sanitize(&s)
	return s, nil
}

// Marshal returns the compact JSON document of s.
func Marshal(s domain.Story) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal story: %w", err)
	}
	return data, nil
}

// Unmarshal parses a JSON document produced by Marshal or Encode.
func Unmarshal(data []byte) (domain.Story, error) {
	var s domain.Story
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Story{}, fmt.Errorf("unmarshal story: %w", err)
	}
	Sanitize(&s)
	return s, nil
}

// Load decodes a story and falls back to an empty one titled fallbackTitle
// when the document cannot be read. The decode error is logged and returned
// so the caller can surface it once.
func Load(r io.Reader, fallbackTitle string) (domain.Story, error) {
	s, err := Decode(r)
	if err != nil {
		logging.Logger().Error("story load failed, starting empty", "err", err)
		return domain.NewStory(fallbackTitle), err
	}
	return s, nil
}

// Sanitize restores the object invariants of a decoded story in place.
func Sanitize(s *domain.Story) {
	if s.Objects == nil {
		s.Objects = []domain.Object{}
	}
	for i := range s.Objects {
		o := &s.Objects[i]
		if len(o.Frames) == 0 {
			o.Frames = []domain.Frame{domain.NewFrame()}
		}
		o.ActiveFrameIndex = max(0, min(o.ActiveFrameIndex, len(o.Frames)-1))
		if o.PlaybackSetting == "" {
			o.PlaybackSetting = domain.PlaybackLoop
		}
		if o.Direction != -1 {
			o.Direction = 1
		}
		for j := range o.Frames {
			if o.Frames[j].Strokes == nil {
				o.Frames[j].Strokes = []domain.Stroke{}
			}
		}
	}
}
