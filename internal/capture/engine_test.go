package capture

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/history"
)

func newEngine(cfg Config) (*Engine, *domain.Frame, *history.Manager) {
	f := domain.NewFrame()
	h := history.New(&f)
	return NewEngine(h, cfg), &f, h
}

func draw(e *Engine, pts ...geom.Vec3) (domain.Stroke, bool) {
	e.Begin()
	for _, p := range pts {
		e.AppendSample(p, time.Time{})
	}
	return e.End()
}

func TestEngine_CommitsStroke(t *testing.T) {
	e, f, h := newEngine(Config{Space: World})
	e.SetStyle(domain.Color{Green: 1, Alpha: 1}, 7)

	s, ok := draw(e, geom.V3(0, 0, 0), geom.V3(0.01, 0, 0), geom.V3(0.02, 0, 0))
	if !ok {
		t.Fatal("stroke not committed")
	}
	if len(f.Strokes) != 1 || f.Strokes[0].ID != s.ID {
		t.Fatalf("frame strokes = %d", len(f.Strokes))
	}
	if s.Thickness != 7 || s.Color.Green != 1 {
		t.Errorf("style not applied: %+v", s)
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Error("commit did not push a draw action")
	}
}

func TestEngine_ShortStrokesDiscarded(t *testing.T) {
	e, f, h := newEngine(Config{Space: World})
	if _, ok := draw(e); ok {
		t.Error("empty stroke committed")
	}
	if _, ok := draw(e, geom.V3(1, 1, 1)); ok {
		t.Error("single point stroke committed")
	}
	if len(f.Strokes) != 0 || h.CanUndo() {
		t.Error("discarded stroke reached the frame or history")
	}
}

func TestEngine_BeginTwiceIsNoop(t *testing.T) {
	e, _, _ := newEngine(Config{Space: World})
	if !e.Begin() {
		t.Fatal("first Begin failed")
	}
	e.AppendSample(geom.V3(0, 0, 0), time.Time{})
	if e.Begin() {
		t.Error("second Begin accepted")
	}
	if n := len(e.Current().Points); n != 1 {
		t.Errorf("second Begin reset the stroke: %d points", n)
	}
}

func TestEngine_PlaneFlattens(t *testing.T) {
	e, _, _ := newEngine(Config{Space: Plane})
	s, _ := draw(e, geom.V3(1, 2, 3), geom.V3(4, 5, 6))
	for _, p := range s.Points {
		if p.Z != 0 {
			t.Errorf("plane point kept z: %v", p)
		}
	}
}

func TestEngine_DropsOutOfOrderSamples(t *testing.T) {
	e, _, _ := newEngine(Config{Space: World})
	t0 := time.Now()
	e.Begin()
	e.AppendSample(geom.V3(0, 0, 0), t0)
	if _, ok := e.AppendSample(geom.V3(1, 0, 0), t0.Add(-time.Millisecond)); ok {
		t.Error("out of order sample accepted")
	}
	e.AppendSample(geom.V3(0.05, 0, 0), t0.Add(time.Millisecond))
	if n := len(e.Current().Points); n != 2 {
		t.Errorf("points = %d, want 2", n)
	}
}

func TestEngine_Snap(t *testing.T) {
	e, _, _ := newEngine(Config{Space: World, Snap: true, SnapRadius: 0.03})
	p := geom.V3(0.1234567, 0.5, -0.25)
	draw(e, geom.V3(0, 0, 0), p)

	e.Begin()
	got, _ := e.AppendSample(p.Add(geom.V3(0.01, -0.01, 0.005)), time.Time{})
	if got != p {
		t.Errorf("snapped to %v, want exactly %v", got, p)
	}
	far := geom.V3(5, 5, 5)
	if got, _ := e.AppendSample(far, time.Time{}); got != far {
		t.Errorf("sample outside radius moved to %v", got)
	}
	e.End()
}

func TestEngine_SnapTieKeepsFirst(t *testing.T) {
	e, _, _ := newEngine(Config{Space: World, Snap: true, SnapRadius: 1})
	first := geom.V3(-0.5, 0, 0)
	second := geom.V3(0.5, 0, 0)
	draw(e, first, geom.V3(-2, 0, 0))
	draw(e, second, geom.V3(2, 0, 0))

	e.Begin()
	got, _ := e.AppendSample(geom.V3(0, 0, 0), time.Time{})
	if got != first {
		t.Errorf("tie resolved to %v, want earliest %v", got, first)
	}
	e.End()
}

func TestEngine_SnapDisabled(t *testing.T) {
	e, _, _ := newEngine(Config{Space: World, SnapRadius: 1})
	draw(e, geom.V3(0, 0, 0), geom.V3(1, 0, 0))
	e.Begin()
	raw := geom.V3(0.01, 0, 0)
	if got, _ := e.AppendSample(raw, time.Time{}); got != raw {
		t.Errorf("snap applied while disabled: %v", got)
	}
}

func TestEngine_Resample(t *testing.T) {
	e, _, _ := newEngine(Config{Space: World, StepDistance: 0.125})
	s, _ := draw(e, geom.V3(0, 0, 0), geom.V3(0.125, 0, 0), geom.V3(1.375, 0, 0))

	// the first gap is within 1.5 steps, the second is split into ten
	if got, want := len(s.Points), 2+10; got != want {
		t.Fatalf("points = %d, want %d", got, want)
	}
	if s.Points[len(s.Points)-1] != geom.V3(1.375, 0, 0) {
		t.Errorf("last point = %v", s.Points[len(s.Points)-1])
	}
	for i := 1; i < len(s.Points); i++ {
		if d := geom.Distance(s.Points[i-1], s.Points[i]); d > 0.125+1e-12 {
			t.Errorf("gap %d is %v", i, d)
		}
	}
}

func TestEngine_ResampleHugeGap(t *testing.T) {
	e, _, _ := newEngine(Config{Space: World, StepDistance: 0.1})
	far := geom.V3(1e14, 0, 0)
	s, ok := draw(e, geom.V3(0, 0, 0), far)
	if !ok {
		t.Fatal("stroke not committed")
	}
	// a gap too large to fill keeps the raw sample
	if len(s.Points) != 2 || s.Points[1] != far {
		t.Errorf("points = %v", s.Points)
	}
}

func TestEngine_Erase(t *testing.T) {
	e, f, h := newEngine(Config{Space: Plane})
	a, _ := draw(e, geom.V3(4, 0, 0), geom.V3(10, 0, 0))
	b, _ := draw(e, geom.V3(0, 50, 0), geom.V3(10, 50, 0))
	c, _ := draw(e, geom.V3(5, 3, 0), geom.V3(10, 3, 0))

	if n := e.Erase(geom.V3(5, 1, 0), 2.5); n != 2 {
		t.Fatalf("erased %d strokes, want 2", n)
	}
	if len(f.Strokes) != 1 || f.Strokes[0].ID != b.ID {
		t.Fatalf("remaining strokes wrong")
	}
	undo, _ := h.Depth()
	if n := e.Erase(geom.V3(100, 100, 0), 1); n != 0 {
		t.Errorf("erase at empty spot removed %d", n)
	}
	if u, _ := h.Depth(); u != undo {
		t.Error("no-op erase pushed an action")
	}

	h.Undo()
	ids := map[uuid.UUID]bool{}
	for _, s := range f.Strokes {
		ids[s.ID] = true
	}
	if !ids[a.ID] || !ids[c.ID] || len(f.Strokes) != 3 {
		t.Error("undo did not restore the erased batch")
	}
}

func TestEngine_EraseMode(t *testing.T) {
	e, f, _ := newEngine(Config{Space: Plane})
	draw(e, geom.V3(5, 0, 0), geom.V3(10, 0, 0))

	e.SetMode(ModeErase)
	e.SetStyle(domain.Black, 2)
	e.Begin()
	e.AppendSample(geom.V3(5, 1, 0), time.Time{})
	if _, ok := e.End(); ok {
		t.Error("erase gesture committed a stroke")
	}
	if len(f.Strokes) != 0 {
		t.Errorf("erase mode left %d strokes", len(f.Strokes))
	}
}

func TestEngine_EraseIgnoredInWorld(t *testing.T) {
	e, f, _ := newEngine(Config{Space: World})
	draw(e, geom.V3(0, 0, 0), geom.V3(1, 0, 0))
	if n := e.Erase(geom.V3(0, 0, 0), 5); n != 0 || len(f.Strokes) != 1 {
		t.Error("erase applied in world space")
	}
}

func TestSimplify(t *testing.T) {
	pts := make([]geom.Vec3, 11)
	for i := range pts {
		pts[i] = geom.V3(float64(i), 0, 0)
	}
	got := Simplify(pts, 3)
	want := []geom.Vec3{pts[0], pts[5], pts[10]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Simplify = %v, want %v", got, want)
		}
	}
	if got := Simplify(pts, 1); len(got) != 2 {
		t.Errorf("nodeCount 1 gave %d points", len(got))
	}
	if got := Simplify(pts, 50); len(got) != len(pts) {
		t.Errorf("large nodeCount changed length to %d", len(got))
	}
}
