package mesh

import (
	"math"

	"github.com/pbaille/scribble/internal/geom"
)

// MinRadialSegments is the smallest ring resolution that encloses area.
const MinRadialSegments = 3

// BuildTube returns the tube of the given radius swept along points.
//
// Fewer than two points, a non-positive or non-finite radius, fewer than
// MinRadialSegments segments, or a polyline whose points all coincide yield
// an empty mesh. A zero-length step between two points reuses the direction
// of the nearest non-degenerate neighbour so the vertex count stays P·N.
func BuildTube(points []geom.Vec3, radius float64, segments int) Mesh {
	if len(points) < 2 || segments < MinRadialSegments || !(radius > 0) || math.IsInf(radius, 0) {
		return Mesh{}
	}
	tans, ok := tangents(points)
	if !ok {
		return Mesh{}
	}

	n := len(points)
	m := Mesh{
		Vertices: make([]geom.Vec3, 0, n*segments),
		Normals:  make([]geom.Vec3, 0, n*segments),
		Indices:  make([]uint32, 0, (n-1)*segments*6),
	}
	cos, sin := ringTable(segments)
	for i, p := range points {
		right, up := frameAxes(tans[i])
		appendRing(&m, p, right, up, radius, cos, sin)
	}
	for i := range n - 1 {
		appendBand(&m, uint32(i*segments), uint32((i+1)*segments), segments)
	}
	return m
}

// tangents returns the unit forward direction at each point: one-sided at
// the ends and a centred difference inside. Degenerate directions are
// filled from the previous valid one, or the next one at the start.
// ok is false when every direction is degenerate.
func tangents(points []geom.Vec3) (out []geom.Vec3, ok bool) {
	n := len(points)
	out = make([]geom.Vec3, n)
	for i := range points {
		var d geom.Vec3
		switch i {
		case 0:
			d = points[1].Sub(points[0])
		case n - 1:
			d = points[i].Sub(points[i-1])
		default:
			d = points[i+1].Sub(points[i-1])
		}
		out[i] = d.Normalize()
	}

	first := -1
	for i, t := range out {
		if !t.IsZero() {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, false
	}
	for i := range first {
		out[i] = out[first]
	}
	for i := first + 1; i < n; i++ {
		if out[i].IsZero() {
			out[i] = out[i-1]
		}
	}
	return out, true
}
