package animation

import (
	"fmt"

	"github.com/pbaille/scribble/internal/domain"
)

// FrameOp names a frame management action on an object.
type FrameOp string

const (
	OpSelect    FrameOp = "select"
	OpLeft      FrameOp = "left"
	OpRight     FrameOp = "right"
	OpDuplicate FrameOp = "dup"
	OpDelete    FrameOp = "delete"
	OpAdd       FrameOp = "add"
)

// ParseFrameOp checks that s names a known FrameOp.
func ParseFrameOp(s string) (FrameOp, error) {
	switch op := FrameOp(s); op {
	case OpSelect, OpLeft, OpRight, OpDuplicate, OpDelete, OpAdd:
		return op, nil
	}
	return "", fmt.Errorf("unknown frame operation %q", s)
}

// Apply runs op on o. index is only read by OpSelect. It reports whether o
// changed.
func Apply(o *domain.Object, op FrameOp, index int) bool {
	switch op {
	case OpSelect:
		return Select(o, index)
	case OpLeft:
		return MoveLeft(o)
	case OpRight:
		return MoveRight(o)
	case OpDuplicate:
		return Duplicate(o)
	case OpDelete:
		return Delete(o)
	case OpAdd:
		AddFrame(o)
		return true
	}
	return false
}
