package history

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
)

func stroke(x float64) domain.Stroke {
	s := domain.NewStroke(domain.Black, 5)
	s.Points = []domain.Point{geom.V3(x, 0, 0), geom.V3(x, 1, 0)}
	return s
}

func strokeSet(f *domain.Frame) []uuid.UUID {
	out := make([]uuid.UUID, len(f.Strokes))
	for i, s := range f.Strokes {
		out[i] = s.ID
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	return out
}

func TestUndoRedo_Draw(t *testing.T) {
	f := domain.NewFrame()
	m := New(&f)
	if m.CanUndo() || m.CanRedo() {
		t.Fatal("fresh manager can undo/redo")
	}

	a, b := stroke(0), stroke(1)
	m.CommitDraw(a)
	m.CommitDraw(b)
	if len(f.Strokes) != 2 {
		t.Fatalf("strokes = %d", len(f.Strokes))
	}

	if !m.Undo() {
		t.Fatal("Undo returned false")
	}
	if len(f.Strokes) != 1 || f.Strokes[0].ID != a.ID {
		t.Fatalf("after undo: %v", strokeSet(&f))
	}
	if !m.CanRedo() {
		t.Error("CanRedo false after undo")
	}

	m.Redo()
	if len(f.Strokes) != 2 || f.Strokes[1].ID != b.ID {
		t.Errorf("after redo: %v", strokeSet(&f))
	}
}

func TestUndoRedo_EraseBatch(t *testing.T) {
	f := domain.NewFrame()
	m := New(&f)
	a, b, c := stroke(0), stroke(1), stroke(2)
	m.CommitDraw(a)
	m.CommitDraw(b)
	m.CommitDraw(c)

	removed := m.CommitErase([]uuid.UUID{a.ID, c.ID})
	if len(removed) != 2 || len(f.Strokes) != 1 {
		t.Fatalf("erase removed %d, frame has %d", len(removed), len(f.Strokes))
	}

	m.Undo()
	if got := strokeSet(&f); len(got) != 3 {
		t.Fatalf("undo erase restored %d strokes, want 3", len(got))
	}
	m.Redo()
	if len(f.Strokes) != 1 || f.Strokes[0].ID != b.ID {
		t.Errorf("redo erase left %v", strokeSet(&f))
	}
}

func TestCommitErase_NothingMatched(t *testing.T) {
	f := domain.NewFrame()
	m := New(&f)
	m.CommitDraw(stroke(0))
	undo, _ := m.Depth()

	if got := m.CommitErase([]uuid.UUID{uuid.New()}); got != nil {
		t.Errorf("erase of unknown id returned %v", got)
	}
	if u, _ := m.Depth(); u != undo {
		t.Errorf("undo depth changed from %d to %d", undo, u)
	}
}

func TestNewActionClearsRedo(t *testing.T) {
	f := domain.NewFrame()
	m := New(&f)
	m.CommitDraw(stroke(0))
	m.CommitDraw(stroke(1))
	m.Undo()
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("CanRedo false after two undos")
	}
	m.CommitDraw(stroke(2))
	if m.CanRedo() {
		t.Error("draw did not clear redo")
	}

	m.Undo()
	m.CommitDraw(stroke(3))
	m.CommitErase([]uuid.UUID{f.Strokes[0].ID})
	if m.CanRedo() {
		t.Error("erase did not clear redo")
	}
}

// Undo then Redo, or Redo then Undo, must leave the stroke set unchanged
// for any reachable history.
func TestInverseLaw(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	f := domain.NewFrame()
	m := New(&f)

	for step := range 500 {
		switch op := rng.IntN(5); {
		case op == 0:
			m.CommitDraw(stroke(float64(step)))
		case op == 1 && len(f.Strokes) > 0:
			n := 1 + rng.IntN(len(f.Strokes))
			var victims []uuid.UUID
			for _, s := range f.Strokes[:n] {
				victims = append(victims, s.ID)
			}
			m.CommitErase(victims)
		case op == 2 && m.CanUndo():
			before := strokeSet(&f)
			m.Undo()
			m.Redo()
			if !slices.Equal(before, strokeSet(&f)) {
				t.Fatalf("step %d: undo+redo changed the frame", step)
			}
			m.Undo()
		case op == 3 && m.CanRedo():
			before := strokeSet(&f)
			m.Redo()
			m.Undo()
			if !slices.Equal(before, strokeSet(&f)) {
				t.Fatalf("step %d: redo+undo changed the frame", step)
			}
		}
	}
}

func TestStacksHoldCopies(t *testing.T) {
	f := domain.NewFrame()
	m := New(&f)
	s := stroke(0)
	m.CommitDraw(s)
	f.Strokes[0].Points[0] = geom.V3(99, 99, 99)

	m.Undo()
	m.Redo()
	if f.Strokes[0].Points[0] != geom.V3(0, 0, 0) {
		t.Errorf("redo restored mutated point %v", f.Strokes[0].Points[0])
	}
}

func TestClearAllAndBind(t *testing.T) {
	f := domain.NewFrame()
	m := New(&f)
	var states []State
	m.Changes.Subscribe(func(s State) { states = append(states, s) })

	m.CommitDraw(stroke(0))
	m.Undo()
	m.ClearAll()
	if len(f.Strokes) != 0 || m.CanUndo() || m.CanRedo() {
		t.Error("ClearAll left state behind")
	}
	last := states[len(states)-1]
	if last.CanUndo || last.CanRedo || last.StrokeCount != 0 {
		t.Errorf("last published state %+v", last)
	}

	other := domain.NewFrame(stroke(1))
	m.CommitDraw(stroke(2))
	m.Bind(&other)
	if m.CanUndo() {
		t.Error("Bind kept history from the previous frame")
	}
	if m.Undo() {
		t.Error("Undo after Bind did something")
	}
}

func TestUnboundManagerIsNoop(t *testing.T) {
	m := New(nil)
	m.CommitDraw(stroke(0))
	if m.CanUndo() || m.Undo() || m.Redo() {
		t.Error("unbound manager recorded history")
	}
	m.ClearAll()
}
