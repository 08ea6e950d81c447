package geom

import (
	"math"

	"github.com/pbaille/scribble/internal/logging"
)

// MaxInterpolatedPoints bounds how many points one Interpolate call returns.
const MaxInterpolatedPoints = 1 << 16

// Interpolate subdivides the segment start→end into steps of roughly step
// length. The returned points exclude start and finish exactly at end, so
// appending them after start reproduces the segment. A segment shorter than
// step yields just [end].
//
// A non-finite or non-positive step, a non-finite segment, or a segment that
// would need more than MaxInterpolatedPoints points is logged and yields nil.
func Interpolate(start, end Vec3, step float64) []Vec3 {
	d := Distance(start, end)
	if !finite(d) || !finite(step) || step <= 0 {
		logging.Logger().Warn("invalid interpolation parameters",
			"distance", d, "step", step)
		return nil
	}
	q := d / step
	if q > MaxInterpolatedPoints {
		logging.Logger().Warn("interpolation gap too large",
			"distance", d, "step", step)
		return nil
	}
	n := max(1, int(q))
	out := make([]Vec3, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, Lerp(start, end, float64(i)/float64(n)))
	}
	return out
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max Vec3
}

// EmptyBounds returns a box that any Extend call will replace.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{Min: V3(inf, inf, inf), Max: V3(-inf, -inf, -inf)}
}

// Extend grows b to include p.
func (b Bounds) Extend(p Vec3) Bounds {
	b.Min = V3(math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z))
	b.Max = V3(math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z))
	return b
}

// IsEmpty reports whether no point was ever added.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return Lerp(b.Min, b.Max, 0.5)
}

// Size returns the extent on each axis.
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}
