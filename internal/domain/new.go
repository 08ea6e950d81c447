package domain

import (
	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/geom"
)

// NewStroke returns an empty stroke with a fresh identity.
func NewStroke(color Color, thickness float64) Stroke {
	return Stroke{ID: uuid.New(), Color: color, Thickness: thickness}
}

// NewFrame returns a frame holding strokes under a fresh identity.
func NewFrame(strokes ...Stroke) Frame {
	if strokes == nil {
		strokes = []Stroke{}
	}
	return Frame{ID: uuid.New(), Strokes: strokes}
}

// NewObject returns an object with one empty frame, looping playback and the
// default placement 0.3 in front of the origin.
func NewObject(name string) Object {
	return Object{
		ID:              uuid.New(),
		Name:            name,
		Frames:          []Frame{NewFrame()},
		PlaybackSetting: PlaybackLoop,
		Direction:       1,
		Position:        geom.V3(0, 0, -0.3),
		Orientation:     geom.IdentityQuat(),
	}
}

// NewStory returns an empty story.
func NewStory(title string) Story {
	return Story{ID: uuid.New(), Title: title, Objects: []Object{}}
}

// Clone returns a deep copy of s with the same identity.
func (s Stroke) Clone() Stroke {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

// Clone returns a deep copy of f with the same identities.
func (f Frame) Clone() Frame {
	strokes := make([]Stroke, len(f.Strokes))
	for i, s := range f.Strokes {
		strokes[i] = s.Clone()
	}
	f.Strokes = strokes
	return f
}

// Duplicate returns a deep copy of f where the frame and every stroke get
// fresh identities, so the copy can live beside the original.
func (f Frame) Duplicate() Frame {
	d := f.Clone()
	d.ID = uuid.New()
	for i := range d.Strokes {
		d.Strokes[i].ID = uuid.New()
	}
	return d
}

// Clone returns a deep copy of o with the same identities.
func (o Object) Clone() Object {
	frames := make([]Frame, len(o.Frames))
	for i, f := range o.Frames {
		frames[i] = f.Clone()
	}
	o.Frames = frames
	return o
}

// Duplicate returns a deep copy of o with fresh identities throughout.
func (o Object) Duplicate() Object {
	d := o.Clone()
	d.ID = uuid.New()
	for i := range d.Frames {
		d.Frames[i] = d.Frames[i].Duplicate()
	}
	return d
}

// Clone returns a deep copy of s.
func (s Story) Clone() Story {
	objects := make([]Object, len(s.Objects))
	for i, o := range s.Objects {
		objects[i] = o.Clone()
	}
	s.Objects = objects
	return s
}

// ActiveFrame returns the frame selected by ActiveFrameIndex, or nil when the
// index is out of range.
func (o *Object) ActiveFrame() *Frame {
	if o.ActiveFrameIndex < 0 || o.ActiveFrameIndex >= len(o.Frames) {
		return nil
	}
	return &o.Frames[o.ActiveFrameIndex]
}

// PointCount returns the total number of points across all strokes of f.
func (f Frame) PointCount() int {
	n := 0
	for _, s := range f.Strokes {
		n += len(s.Points)
	}
	return n
}

// Bounds returns the box around every point of every frame of o.
func (o Object) Bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for _, f := range o.Frames {
		for _, s := range f.Strokes {
			for _, p := range s.Points {
				b = b.Extend(p)
			}
		}
	}
	return b
}
