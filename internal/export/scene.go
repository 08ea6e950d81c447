// Package export writes stories to external formats: baked tube meshes as
// Wavefront OBJ and stroke sheets as PDF.
package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/mesh"
)

// ActiveFrame selects each object's active frame instead of a fixed index.
const ActiveFrame = -1

// Options selects what gets baked.
type Options struct {
	// Frame is the frame index baked for every object, or ActiveFrame.
	// Objects without that frame fall back to their first one.
	Frame int
	Mesh  mesh.Options
}

// DefaultOptions bakes the first frame of each object with the default
// story rendering resolution.
func DefaultOptions() Options {
	return Options{Frame: 0, Mesh: mesh.DefaultOptions()}
}

// ObjectMesh is the baked geometry of one object in scene coordinates.
type ObjectMesh struct {
	ObjectID uuid.UUID
	Name     string
	Strokes  []mesh.StrokeMesh
}

// Scene is a story baked into world space and recentred so the scene's x/z
// centre sits on the origin. If any geometry is below y=0 the scene is
// lifted to rest on y=0, otherwise it is centred on y too.
type Scene struct {
	Title   string
	Objects []ObjectMesh
	Offset  geom.Vec3
}

// Bake builds the meshes of every object of s, applies each object's
// placement and recentres the whole scene.
func Bake(ctx context.Context, s domain.Story, opt Options) (Scene, error) {
	sc := Scene{Title: s.Title, Objects: make([]ObjectMesh, 0, len(s.Objects))}
	bounds := geom.EmptyBounds()

	for _, o := range s.Objects {
		f := pickFrame(&o, opt.Frame)
		if f == nil {
			continue
		}
		strokes, err := mesh.BakeFrame(ctx, *f, opt.Mesh)
		if err != nil {
			return Scene{}, fmt.Errorf("bake object %s: %w", o.ID, err)
		}
		for i := range strokes {
			place(&strokes[i].Mesh, o.Position, o.Orientation)
			for _, v := range strokes[i].Mesh.Vertices {
				bounds = bounds.Extend(v)
			}
		}
		sc.Objects = append(sc.Objects, ObjectMesh{ObjectID: o.ID, Name: o.Name, Strokes: strokes})
	}

	if bounds.IsEmpty() {
		return sc, nil
	}
	sc.Offset = sceneOffset(bounds)
	for _, om := range sc.Objects {
		for _, sm := range om.Strokes {
			for i, v := range sm.Mesh.Vertices {
				sm.Mesh.Vertices[i] = v.Add(sc.Offset)
			}
		}
	}
	return sc, nil
}

func pickFrame(o *domain.Object, idx int) *domain.Frame {
	if len(o.Frames) == 0 {
		return nil
	}
	if idx == ActiveFrame {
		idx = o.ActiveFrameIndex
	}
	if idx < 0 || idx >= len(o.Frames) {
		idx = 0
	}
	return &o.Frames[idx]
}

func place(m *mesh.Mesh, pos geom.Vec3, orient geom.Quat) {
	for i, v := range m.Vertices {
		m.Vertices[i] = orient.Rotate(v).Add(pos)
	}
	for i, n := range m.Normals {
		m.Normals[i] = orient.Rotate(n)
	}
}

func sceneOffset(b geom.Bounds) geom.Vec3 {
	c := b.Center()
	y := -c.Y
	if b.Min.Y < 0 {
		y = -b.Min.Y
	}
	return geom.V3(-c.X, y, -c.Z)
}
