package story

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
)

func stroke(color domain.Color, thickness float64, pts ...geom.Vec3) domain.Stroke {
	s := domain.NewStroke(color, thickness)
	s.Points = pts
	return s
}

func sampleStory() domain.Story {
	s := domain.NewStory("harbour")

	boat := domain.NewObject("boat")
	boat.Frames = []domain.Frame{
		domain.NewFrame(
			stroke(domain.Color{Red: 0.25, Green: 0.5, Blue: 0.125, Alpha: 0.75}, 3.5,
				geom.V3(0.1, -0.2, 0.3), geom.V3(1e-7, 2.5, -3.75), geom.V3(-0.333, 0.6667, 12)),
			stroke(domain.Black, 1, geom.V3(0, 0, 0), geom.V3(1, 1, 1)),
		),
		domain.NewFrame(stroke(domain.Color{Blue: 1, Alpha: 1}, 8, geom.V3(4, 5, 6), geom.V3(7, 8, 9))),
	}
	boat.ActiveFrameIndex = 1
	boat.PlaybackSetting = domain.PlaybackBounce
	boat.Direction = -1
	boat.Position = geom.V3(0.5, -0.25, -1.5)
	boat.Orientation = geom.QuatFromAxisAngle(geom.V3(0, 1, 0), 0.7)

	gull := domain.NewObject("gull")
	gull.PlaybackSetting = domain.PlaybackRandom

	s.Objects = append(s.Objects, boat, gull)
	return s
}

func TestCodec_RoundTrip(t *testing.T) {
	want := sampleStory()

	var buf bytes.Buffer
	if err := Encode(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip changed the story\n got: %+v\nwant: %+v", got, want)
	}

	data, err := Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, want) {
		t.Error("Marshal/Unmarshal changed the story")
	}
}

func TestCodec_WireNames(t *testing.T) {
	data, err := Marshal(sampleStory())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		`"activeFrameIndex"`, `"playbackSetting":"bounce"`, `"direction":-1`,
		`"orientation":{"x"`, `"color":{"red":0.25`, `"thickness":3.5`,
	} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("document lacks %s", key)
		}
	}
}

func TestDecode_RestoresInvariants(t *testing.T) {
	doc := `{"id":"` + uuid.NewString() + `","title":"t","objects":[
		{"id":"` + uuid.NewString() + `","name":"o","frames":[],"activeFrameIndex":4,
		 "playbackSetting":"loop","direction":7,
		 "position":{"x":0,"y":0,"z":0},"orientation":{"x":0,"y":0,"z":0,"w":1}}]}`
	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	o := s.Objects[0]
	if len(o.Frames) != 1 || o.ActiveFrameIndex != 0 || o.Direction != 1 {
		t.Errorf("invariants not restored: frames=%d active=%d dir=%d",
			len(o.Frames), o.ActiveFrameIndex, o.Direction)
	}
}

func TestLoad_FallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"truncated", `{"id":`},
		{"bad playback", `{"objects":[{"playbackSetting":"shuffle"}]}`},
		{"bad id", `{"id":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(strings.NewReader(tt.doc), "untitled")
			if err == nil {
				t.Fatal("Load accepted a broken document")
			}
			if s.Title != "untitled" || len(s.Objects) != 0 || s.ID == uuid.Nil {
				t.Errorf("fallback story = %+v", s)
			}
		})
	}
}

func TestRepository_Mutations(t *testing.T) {
	r := NewRepository(domain.NewStory("s"))
	var events []Event
	r.Changes.Subscribe(func(e Event) { events = append(events, e) })

	a := domain.NewObject("a")
	r.Append(a)
	if err := r.Rename(a.ID, "renamed"); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get(a.ID)
	if err != nil || got.Name != "renamed" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	d, err := r.Duplicate(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID == a.ID || d.Frames[0].ID == a.Frames[0].ID {
		t.Error("duplicate shares identities")
	}
	if want := a.Position.Add(geom.V3(0.01, 0.01, 0)); d.Position != want {
		t.Errorf("duplicate position = %v, want %v", d.Position, want)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d", r.Len())
	}

	if err := r.Remove(a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(a.ID); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get removed = %v", err)
	}
	if err := r.Rename(uuid.New(), "x"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Rename unknown = %v", err)
	}

	kinds := make([]EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	want := []EventKind{ObjectAdded, ObjectChanged, ObjectAdded, ObjectRemoved}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("events = %v, want %v", kinds, want)
	}
}

func TestRepository_ReturnsCopies(t *testing.T) {
	r := NewRepository(sampleStory())
	objs := r.Objects()
	objs[0].Frames[0].Strokes[0].Points[0] = geom.V3(99, 99, 99)
	objs[0].Name = "changed"
	again := r.Objects()
	if again[0].Name == "changed" || again[0].Frames[0].Strokes[0].Points[0] == geom.V3(99, 99, 99) {
		t.Error("caller mutated repository state through a copy")
	}
}

func TestRepository_FrameControls(t *testing.T) {
	s := sampleStory()
	r := NewRepository(s)
	id := s.Objects[0].ID

	if err := r.SetActiveFrame(id, 5); err != nil {
		t.Fatal(err)
	}
	o, _ := r.Get(id)
	if o.ActiveFrameIndex != 1 {
		t.Errorf("out of range SetActiveFrame moved index to %d", o.ActiveFrameIndex)
	}
	r.SetActiveFrame(id, 0)
	r.SetDirection(id, 3)
	o, _ = r.Get(id)
	if o.ActiveFrameIndex != 0 || o.Direction != 1 {
		t.Errorf("active=%d direction=%d", o.ActiveFrameIndex, o.Direction)
	}

	var ticks int
	r.Changes.Subscribe(func(e Event) {
		if e.Kind == FramesAdvanced {
			ticks++
		}
	})
	r.Advance(rand.New(rand.NewPCG(1, 1)))
	if got := r.ActiveFrames()[id]; got != 1 {
		t.Errorf("after Advance active = %d, want 1", got)
	}
	if ticks != 1 {
		t.Errorf("FramesAdvanced published %d times", ticks)
	}
}

func TestRepository_EditFrames(t *testing.T) {
	s := sampleStory()
	r := NewRepository(s)
	id := s.Objects[0].ID
	second := s.Objects[0].Frames[1].ID

	var changes int
	r.Changes.Subscribe(func(e Event) {
		if e.Kind == ObjectChanged {
			changes++
		}
	})

	if err := r.EditFrames(id, animation.OpLeft, 0); err != nil {
		t.Fatal(err)
	}
	o, _ := r.Get(id)
	if o.Frames[0].ID != second || o.ActiveFrameIndex != 0 {
		t.Errorf("left: frames %v active %d", o.Frames[0].ID, o.ActiveFrameIndex)
	}
	r.EditFrames(id, animation.OpDelete, 0)
	r.EditFrames(id, animation.OpDelete, 0)
	o, _ = r.Get(id)
	if len(o.Frames) != 1 {
		t.Errorf("frames = %d, want 1", len(o.Frames))
	}
	if changes != 2 {
		t.Errorf("ObjectChanged published %d times, want 2", changes)
	}
	if err := r.EditFrames(uuid.New(), animation.OpAdd, 0); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("unknown object: %v", err)
	}
}

func TestRepository_RepositionAll(t *testing.T) {
	s := domain.NewStory("s")
	for _, p := range []geom.Vec3{geom.V3(0, 0, 0), geom.V3(2, 0, 0), geom.V3(1, 3, 0)} {
		o := domain.NewObject("o")
		o.Position = p
		s.Objects = append(s.Objects, o)
	}
	r := NewRepository(s)
	orient := geom.QuatFromAxisAngle(geom.V3(0, 1, 0), 1)
	r.RepositionAll(geom.V3(10, 10, 10), orient)

	want := []geom.Vec3{geom.V3(9, 9, 10), geom.V3(11, 9, 10), geom.V3(10, 12, 10)}
	for i, o := range r.Objects() {
		if !o.Position.Approx(want[i], 1e-12) {
			t.Errorf("object %d at %v, want %v", i, o.Position, want[i])
		}
		if o.Orientation != orient {
			t.Errorf("object %d orientation not applied", i)
		}
	}
}

func TestContinue2D(t *testing.T) {
	d := domain.NewObject("draft")
	d.PlaybackSetting = domain.PlaybackBounce
	d.Frames[0].Strokes = []domain.Stroke{stroke(domain.Black, 2, geom.V3(100, 200, 0), geom.V3(300, 600, 0))}

	o, err := Continue2D(d, "kite")
	if err != nil {
		t.Fatal(err)
	}
	pts := o.Frames[0].Strokes[0].Points
	if !pts[0].Approx(geom.V3(-0.05, 0.1, 0), 1e-12) || !pts[1].Approx(geom.V3(0.05, -0.1, 0), 1e-12) {
		t.Errorf("points = %v", pts)
	}
	if o.Name != "kite" || o.Position != DefaultPlacement || o.Orientation != geom.IdentityQuat() {
		t.Errorf("placement = %+v", o)
	}
	if o.PlaybackSetting != domain.PlaybackBounce {
		t.Error("playback setting lost")
	}
	if d.Frames[0].Strokes[0].Points[0] != geom.V3(100, 200, 0) {
		t.Error("Continue2D mutated the drawing")
	}
}

func TestContinue3D(t *testing.T) {
	d := domain.NewObject("draft")
	d.Frames[0].Strokes = []domain.Stroke{stroke(domain.Black, 2, geom.V3(1, 1, 1), geom.V3(3, 1, 1))}
	d.Frames = append(d.Frames, domain.NewFrame(stroke(domain.Black, 2, geom.V3(1, 5, 3), geom.V3(2, 2, 2))))

	o, err := Continue3D(d, "tree")
	if err != nil {
		t.Fatal(err)
	}
	// global box is (1,1,1)-(3,5,3), centre (2,3,2)
	if got := o.Frames[1].Strokes[0].Points[0]; got != geom.V3(-1, 2, 1) {
		t.Errorf("point = %v", got)
	}
}

func TestContinue_EmptyDrawing(t *testing.T) {
	d := domain.NewObject("draft")
	if _, err := Continue2D(d, "x"); !errors.Is(err, ErrEmptyDrawing) {
		t.Errorf("Continue2D = %v", err)
	}
	if _, err := Continue3D(d, "x"); !errors.Is(err, ErrEmptyDrawing) {
		t.Errorf("Continue3D = %v", err)
	}
}
