package mesh

import (
	"math"

	"github.com/pbaille/scribble/internal/geom"
)

// Mesh is an indexed triangle list. Normals[i] belongs to Vertices[i].
type Mesh struct {
	Vertices []geom.Vec3 `json:"vertices"`
	Normals  []geom.Vec3 `json:"normals"`
	Indices  []uint32    `json:"indices"`
}

// IsEmpty reports whether the mesh has no triangles.
func (m Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// TriangleCount returns len(Indices)/3.
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the box around all vertices.
func (m Mesh) Bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for _, v := range m.Vertices {
		b = b.Extend(v)
	}
	return b
}

var (
	worldUp       = geom.V3(0, 1, 0)
	fallbackRight = geom.V3(1, 0, 0)
)

// frameAxes returns the right and up axes of the ring plane for a unit
// forward direction.
func frameAxes(forward geom.Vec3) (right, up geom.Vec3) {
	right = forward.Cross(worldUp).Normalize()
	if right.IsZero() {
		right = fallbackRight
	}
	up = forward.Cross(right).Normalize()
	return right, up
}

// ringTable precomputes cos θ and sin θ for n segments.
func ringTable(n int) (cos, sin []float64) {
	cos = make([]float64, n)
	sin = make([]float64, n)
	for j := range n {
		theta := float64(j) / float64(n) * 2 * math.Pi
		sin[j], cos[j] = math.Sincos(theta)
	}
	return cos, sin
}

// appendRing emits one ring of vertices and outward normals around center.
func appendRing(m *Mesh, center, right, up geom.Vec3, radius float64, cos, sin []float64) {
	for j := range cos {
		offset := right.Mul(radius * cos[j]).Add(up.Mul(radius * sin[j]))
		m.Vertices = append(m.Vertices, center.Add(offset))
		m.Normals = append(m.Normals, offset.Normalize())
	}
}

// appendBand joins ring a to ring b (base vertex indices) with n quads.
func appendBand(m *Mesh, a, b uint32, n int) {
	for j := range n {
		k := uint32((j + 1) % n)
		cur := a + uint32(j)
		nextInRing := a + k
		next := b + uint32(j)
		nextBoth := b + k
		m.Indices = append(m.Indices,
			cur, nextInRing, next,
			nextInRing, nextBoth, next,
		)
	}
}
