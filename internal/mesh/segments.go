package mesh

import (
	"math"

	"github.com/pbaille/scribble/internal/geom"
)

// BuildSegments returns one open cylinder per consecutive pair of points.
// Rings are not shared between segments and joints are not mitred, which is
// fine for live feedback while a stroke is being drawn. Zero-length pairs
// are skipped; invalid radius or segment count yields an empty mesh.
func BuildSegments(points []geom.Vec3, radius float64, segments int) Mesh {
	if len(points) < 2 || segments < MinRadialSegments || !(radius > 0) || math.IsInf(radius, 0) {
		return Mesh{}
	}
	cos, sin := ringTable(segments)
	var m Mesh
	for i := 1; i < len(points); i++ {
		start, end := points[i-1], points[i]
		forward := end.Sub(start).Normalize()
		if forward.IsZero() {
			continue
		}
		right, up := frameAxes(forward)
		base := uint32(len(m.Vertices))
		appendRing(&m, start, right, up, radius, cos, sin)
		appendRing(&m, end, right, up, radius, cos, sin)
		appendBand(&m, base, base+uint32(segments), segments)
	}
	return m
}
