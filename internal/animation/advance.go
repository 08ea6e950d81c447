// Package animation holds the frame state machine of an Object: playback
// advancement and frame management. Every operation keeps the object's
// frame count at least 1 and its active index in range.
package animation

import (
	"math/rand/v2"

	"github.com/pbaille/scribble/internal/domain"
)

// Advance moves o to its next frame under its playback setting and returns
// the new active index. A direction other than ±1 is treated as +1 and an
// out of range active index is clamped before advancing. Random playback
// draws from r, or from the global source when r is nil.
func Advance(o *domain.Object, r *rand.Rand) int {
	n := len(o.Frames)
	if n == 0 {
		o.ActiveFrameIndex = 0
		return 0
	}
	o.ActiveFrameIndex = clamp(o.ActiveFrameIndex, n)
	if o.Direction != -1 {
		o.Direction = 1
	}
	if n == 1 {
		return o.ActiveFrameIndex
	}

	cur := o.ActiveFrameIndex
	switch o.PlaybackSetting {
	case domain.PlaybackBounce:
		if cur == 0 && o.Direction == -1 {
			o.Direction = 1
		} else if cur == n-1 && o.Direction == 1 {
			o.Direction = -1
		}
		o.ActiveFrameIndex = cur + o.Direction
	case domain.PlaybackRandom:
		k := intN(r, n-1)
		if k >= cur {
			k++
		}
		o.ActiveFrameIndex = k
	default:
		o.ActiveFrameIndex = (cur + 1) % n
	}
	return o.ActiveFrameIndex
}

func intN(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}

func clamp(i, n int) int {
	return max(0, min(i, n-1))
}
