// Package mesh turns stroke polylines into renderable triangle meshes.
//
// # Tube meshes
//
// BuildTube sweeps a circle of radius r along the polyline. At every point a
// local frame is derived from the curve tangent and a fixed world-up vector:
//
//	forward = normalize(next - prev)        (one-sided at the ends)
//	right   = normalize(forward × worldUp)  (fallback +X when parallel)
//	up      = normalize(forward × right)
//
// and a ring of N vertices is emitted at offsets r·cos θ·right + r·sin θ·up.
// Adjacent rings are joined by quads split into two triangles. Ends are open.
//
// For P points and N radial segments the mesh has P·N vertices and
// (P−1)·N·6 indices. Triangles are wound counter-clockwise when viewed from
// outside the tube, so back-face culling removes the inside.
//
// # Preview meshes
//
// BuildSegments is the cheaper variant used while a stroke is still being
// drawn: one independent open cylinder per consecutive point pair.
//
// Both builders are pure functions of their inputs and safe to call from any
// goroutine; BakeFrame uses that to build the strokes of a frame in parallel.
package mesh
