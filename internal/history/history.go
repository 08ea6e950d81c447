// Package history keeps the linear undo/redo timeline of drawing actions
// for the frame currently being edited.
package history

import (
	"slices"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/notify"
)

// Kind tags an Action.
type Kind int

const (
	// Draw records one stroke added to the frame.
	Draw Kind = iota
	// Erase records the strokes one eraser gesture removed together.
	Erase
)

func (k Kind) String() string {
	if k == Erase {
		return "erase"
	}
	return "draw"
}

// Action is a reversible edit. Strokes are copies, so an action stays valid
// after the frame it came from changes.
type Action struct {
	Kind    Kind
	Strokes []domain.Stroke
}

// State is published to subscribers after every change.
type State struct {
	CanUndo     bool
	CanRedo     bool
	StrokeCount int
}

// Manager applies actions to a bound frame and records them on two stacks.
// Committing a new action clears the redo stack; history never branches.
//
// A Manager is not safe for concurrent use; it lives on the mutation loop.
type Manager struct {
	frame *domain.Frame
	undo  []Action
	redo  []Action

	// Changes receives the state after each commit, undo, redo or clear.
	Changes notify.Hub[State]
}

// New returns a manager editing frame. frame may be nil, in which case every
// operation is a no-op until Bind.
func New(frame *domain.Frame) *Manager {
	return &Manager{frame: frame}
}

// Bind switches to a different frame. Both stacks are emptied: history is
// scoped to the frame being edited.
func (m *Manager) Bind(frame *domain.Frame) {
	m.frame = frame
	m.undo = nil
	m.redo = nil
	m.publish()
}

// Frame returns the bound frame.
func (m *Manager) Frame() *domain.Frame {
	return m.frame
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (m *Manager) Depth() (undo, redo int) { return len(m.undo), len(m.redo) }

// CommitDraw appends s to the frame and records it.
func (m *Manager) CommitDraw(s domain.Stroke) {
	if m.frame == nil {
		return
	}
	s = s.Clone()
	m.frame.Strokes = append(m.frame.Strokes, s)
	m.push(Action{Kind: Draw, Strokes: []domain.Stroke{s.Clone()}})
	logging.Logger().Debug("stroke committed", "stroke", s.ID, "points", len(s.Points))
}

// CommitErase removes the strokes with the given identities from the frame
// and records them as one batch. It returns the removed strokes; when none
// of the ids are present nothing is recorded.
func (m *Manager) CommitErase(ids []uuid.UUID) []domain.Stroke {
	if m.frame == nil || len(ids) == 0 {
		return nil
	}
	removed := removeStrokes(m.frame, ids)
	if len(removed) == 0 {
		return nil
	}
	batch := make([]domain.Stroke, len(removed))
	for i, s := range removed {
		batch[i] = s.Clone()
	}
	m.push(Action{Kind: Erase, Strokes: batch})
	logging.Logger().Debug("strokes erased", "count", len(removed))
	return removed
}

// Undo reverts the most recent action. It reports whether anything changed.
func (m *Manager) Undo() bool {
	if m.frame == nil || len(m.undo) == 0 {
		return false
	}
	a := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.revert(a)
	m.redo = append(m.redo, a)
	m.publish()
	return true
}

// Redo reapplies the most recently undone action.
func (m *Manager) Redo() bool {
	if m.frame == nil || len(m.redo) == 0 {
		return false
	}
	a := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.apply(a)
	m.undo = append(m.undo, a)
	m.publish()
	return true
}

// ClearAll empties both stacks and the frame's strokes.
func (m *Manager) ClearAll() {
	if m.frame != nil {
		m.frame.Strokes = []domain.Stroke{}
	}
	m.undo = nil
	m.redo = nil
	m.publish()
}

func (m *Manager) push(a Action) {
	m.undo = append(m.undo, a)
	m.redo = nil
	m.publish()
}

func (m *Manager) apply(a Action) {
	switch a.Kind {
	case Draw:
		m.insert(a.Strokes)
	case Erase:
		removeStrokes(m.frame, ids(a.Strokes))
	}
}

func (m *Manager) revert(a Action) {
	switch a.Kind {
	case Draw:
		removeStrokes(m.frame, ids(a.Strokes))
	case Erase:
		m.insert(a.Strokes)
	}
}

func (m *Manager) insert(strokes []domain.Stroke) {
	for _, s := range strokes {
		m.frame.Strokes = append(m.frame.Strokes, s.Clone())
	}
}

func (m *Manager) publish() {
	st := State{CanUndo: m.CanUndo(), CanRedo: m.CanRedo()}
	if m.frame != nil {
		st.StrokeCount = len(m.frame.Strokes)
	}
	m.Changes.Publish(st)
}

func ids(strokes []domain.Stroke) []uuid.UUID {
	out := make([]uuid.UUID, len(strokes))
	for i, s := range strokes {
		out[i] = s.ID
	}
	return out
}

// removeStrokes deletes every stroke whose id is listed, keeping the order of
// the rest, and returns the removed strokes in frame order.
func removeStrokes(f *domain.Frame, ids []uuid.UUID) []domain.Stroke {
	var removed []domain.Stroke
	f.Strokes = slices.DeleteFunc(f.Strokes, func(s domain.Stroke) bool {
		if slices.Contains(ids, s.ID) {
			removed = append(removed, s)
			return true
		}
		return false
	})
	return removed
}
