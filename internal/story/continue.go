package story

import (
	"errors"

	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
)

// ErrEmptyDrawing is returned when a drawing without points is continued
// into a story.
var ErrEmptyDrawing = errors.New("drawing has no points")

// PlaneScale converts canvas units of a plane drawing to scene metres.
const PlaneScale = 0.0005

// DefaultPlacement is where a freshly continued object appears.
var DefaultPlacement = geom.V3(0, 0, -0.3)

// Continue2D turns a plane drawing into a story object named name. Points
// are centred on the bounding box of every frame, scaled to scene units and
// flipped vertically, since canvas y grows downward.
func Continue2D(drawing domain.Object, name string) (domain.Object, error) {
	b := drawing.Bounds()
	if b.IsEmpty() {
		return domain.Object{}, ErrEmptyDrawing
	}
	c := b.Center()
	return place(drawing, name, func(p geom.Vec3) geom.Vec3 {
		return geom.V3((p.X-c.X)*PlaneScale, -(p.Y-c.Y)*PlaneScale, 0)
	}), nil
}

// Continue3D turns an in-space drawing into a story object named name,
// centring every frame on the bounding box of all of them.
func Continue3D(drawing domain.Object, name string) (domain.Object, error) {
	b := drawing.Bounds()
	if b.IsEmpty() {
		return domain.Object{}, ErrEmptyDrawing
	}
	c := b.Center()
	return place(drawing, name, func(p geom.Vec3) geom.Vec3 {
		return p.Sub(c)
	}), nil
}

func place(drawing domain.Object, name string, fn func(geom.Vec3) geom.Vec3) domain.Object {
	o := drawing.Clone()
	o.Name = name
	for fi := range o.Frames {
		for si := range o.Frames[fi].Strokes {
			pts := o.Frames[fi].Strokes[si].Points
			for pi, p := range pts {
				pts[pi] = fn(p)
			}
		}
	}
	o.ActiveFrameIndex = 0
	if !o.PlaybackSetting.Valid() {
		o.PlaybackSetting = domain.PlaybackLoop
	}
	o.Direction = 1
	o.Position = DefaultPlacement
	o.Orientation = geom.IdentityQuat()
	return o
}
