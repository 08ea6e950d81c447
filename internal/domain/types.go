package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/geom"
)

// Point is a sampled stroke coordinate. Strokes drawn on a plane have Z == 0.
type Point = geom.Vec3

// Color is an RGBA color with channels in [0,1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

// Black is the default stroke color.
var Black = Color{Alpha: 1}

// Stroke is one continuous gesture: its points in draw order plus styling.
type Stroke struct {
	ID        uuid.UUID `json:"id"`
	Points    []Point   `json:"points"`
	Color     Color     `json:"color"`
	Thickness float64   `json:"thickness"`
}

// Frame is one animation pose of an Object.
type Frame struct {
	ID      uuid.UUID `json:"id"`
	Strokes []Stroke  `json:"strokes"`
}

// PlaybackSetting selects how an Object advances through its frames.
type PlaybackSetting string

const (
	PlaybackLoop   PlaybackSetting = "loop"
	PlaybackBounce PlaybackSetting = "bounce"
	PlaybackRandom PlaybackSetting = "random"
)

// Valid reports whether s is one of the known settings.
func (s PlaybackSetting) Valid() bool {
	switch s {
	case PlaybackLoop, PlaybackBounce, PlaybackRandom:
		return true
	}
	return false
}

// ParsePlaybackSetting parses the persisted form of a setting.
func ParsePlaybackSetting(s string) (PlaybackSetting, error) {
	p := PlaybackSetting(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown playback setting %q", s)
	}
	return p, nil
}

// UnmarshalJSON rejects unknown settings.
func (s *PlaybackSetting) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := ParsePlaybackSetting(raw)
	if err != nil {
		return err
	}
	*s = p
	return nil
}

// Object is a placed, animated entity made of frames.
type Object struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Frames           []Frame         `json:"frames"`
	ActiveFrameIndex int             `json:"activeFrameIndex"`
	PlaybackSetting  PlaybackSetting `json:"playbackSetting"`
	Direction        int             `json:"direction"`
	Position         geom.Vec3       `json:"position"`
	Orientation      geom.Quat       `json:"orientation"`
}

// Story is the top-level document.
type Story struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Objects []Object  `json:"objects"`
}

// StorySummary is a listing row for stored stories.
type StorySummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	ObjectCount int       `json:"objectCount"`
}
