package capture

import (
	"math"

	"github.com/pbaille/scribble/internal/geom"
)

// Simplify picks nodeCount evenly spaced points from points, always keeping
// the first and last. Fewer than two nodes keeps just the endpoints; strokes
// already shorter than nodeCount are returned as they are.
func Simplify(points []geom.Vec3, nodeCount int) []geom.Vec3 {
	if len(points) < 2 || nodeCount >= len(points) {
		return points
	}
	if nodeCount < 2 {
		return []geom.Vec3{points[0], points[len(points)-1]}
	}
	step := float64(len(points)-1) / float64(nodeCount-1)
	out := make([]geom.Vec3, nodeCount)
	for i := range out {
		out[i] = points[int(math.Round(float64(i)*step))]
	}
	return out
}
