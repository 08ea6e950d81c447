package animation

import (
	"slices"

	"github.com/pbaille/scribble/internal/domain"
)

// Select makes frame i active. An out of range index is ignored.
func Select(o *domain.Object, i int) bool {
	if i < 0 || i >= len(o.Frames) {
		return false
	}
	o.ActiveFrameIndex = i
	return true
}

// MoveLeft swaps the active frame with the one before it and follows it.
func MoveLeft(o *domain.Object) bool {
	i := o.ActiveFrameIndex
	if i <= 0 || i >= len(o.Frames) {
		return false
	}
	o.Frames[i], o.Frames[i-1] = o.Frames[i-1], o.Frames[i]
	o.ActiveFrameIndex = i - 1
	return true
}

// MoveRight swaps the active frame with the one after it and follows it.
func MoveRight(o *domain.Object) bool {
	i := o.ActiveFrameIndex
	if i < 0 || i >= len(o.Frames)-1 {
		return false
	}
	o.Frames[i], o.Frames[i+1] = o.Frames[i+1], o.Frames[i]
	o.ActiveFrameIndex = i + 1
	return true
}

// Duplicate appends a copy of the active frame at the end of the list and
// selects it. The copy and its strokes get fresh identities.
func Duplicate(o *domain.Object) bool {
	f := o.ActiveFrame()
	if f == nil {
		return false
	}
	o.Frames = append(o.Frames, f.Duplicate())
	o.ActiveFrameIndex = len(o.Frames) - 1
	return true
}

// Delete removes the active frame. The last remaining frame cannot be
// deleted. When the removed frame was the last one the selection moves back.
func Delete(o *domain.Object) bool {
	i := o.ActiveFrameIndex
	if len(o.Frames) <= 1 || i < 0 || i >= len(o.Frames) {
		return false
	}
	o.Frames = slices.Delete(o.Frames, i, i+1)
	if i >= len(o.Frames) {
		o.ActiveFrameIndex = max(0, i-1)
	}
	return true
}

// AddFrame appends an empty frame, selects it and returns its index.
func AddFrame(o *domain.Object) int {
	o.Frames = append(o.Frames, domain.NewFrame())
	o.ActiveFrameIndex = len(o.Frames) - 1
	return o.ActiveFrameIndex
}

// Save replaces the strokes of frame i wholesale. i == len(o.Frames)
// appends a new frame instead. Other indices are ignored.
func Save(o *domain.Object, i int, strokes []domain.Stroke) bool {
	cp := make([]domain.Stroke, len(strokes))
	for k, s := range strokes {
		cp[k] = s.Clone()
	}
	switch {
	case i >= 0 && i < len(o.Frames):
		o.Frames[i].Strokes = cp
	case i == len(o.Frames):
		o.Frames = append(o.Frames, domain.NewFrame(cp...))
	default:
		return false
	}
	return true
}
