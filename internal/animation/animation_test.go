package animation

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
)

func object(frames int, setting domain.PlaybackSetting) *domain.Object {
	o := domain.NewObject("test")
	for range frames - 1 {
		o.Frames = append(o.Frames, domain.NewFrame())
	}
	o.PlaybackSetting = setting
	return &o
}

func advanceN(o *domain.Object, r *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = Advance(o, r)
	}
	return out
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name    string
		frames  int
		setting domain.PlaybackSetting
		want    []int
	}{
		{"loop", 3, domain.PlaybackLoop, []int{1, 2, 0, 1, 2, 0}},
		{"bounce", 4, domain.PlaybackBounce, []int{1, 2, 3, 2, 1, 0, 1, 2, 3, 2, 1, 0}},
		{"bounce two frames", 2, domain.PlaybackBounce, []int{1, 0, 1, 0}},
		{"single frame loop", 1, domain.PlaybackLoop, []int{0, 0}},
		{"single frame bounce", 1, domain.PlaybackBounce, []int{0, 0}},
		{"single frame random", 1, domain.PlaybackRandom, []int{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := object(tt.frames, tt.setting)
			got := advanceN(o, nil, len(tt.want))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Advance sequence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdvance_RandomNeverRepeats(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for _, frames := range []int{2, 3, 5} {
		o := object(frames, domain.PlaybackRandom)
		seen := map[int]bool{}
		for range 1000 {
			prev := o.ActiveFrameIndex
			next := Advance(o, r)
			if next == prev {
				t.Fatalf("frames=%d: advanced from %d to itself", frames, prev)
			}
			if next < 0 || next >= frames {
				t.Fatalf("frames=%d: index %d out of range", frames, next)
			}
			seen[next] = true
		}
		if len(seen) != frames {
			t.Errorf("frames=%d: only visited %d indices", frames, len(seen))
		}
	}
}

func TestAdvance_NormalisesState(t *testing.T) {
	o := object(3, domain.PlaybackBounce)
	o.ActiveFrameIndex = 9
	o.Direction = 0
	if got := Advance(o, nil); got != 1 {
		t.Errorf("Advance from clamped end = %d, want 1", got)
	}
	if o.Direction != -1 {
		t.Errorf("Direction = %d, want -1", o.Direction)
	}
}

func TestFrameManagement(t *testing.T) {
	o := object(3, domain.PlaybackLoop)
	ids := []uuid.UUID{o.Frames[0].ID, o.Frames[1].ID, o.Frames[2].ID}

	if MoveLeft(o) {
		t.Error("MoveLeft at index 0 succeeded")
	}
	if !MoveRight(o) || o.ActiveFrameIndex != 1 || o.Frames[1].ID != ids[0] {
		t.Fatal("MoveRight did not carry the frame")
	}
	if !MoveLeft(o) || o.ActiveFrameIndex != 0 || o.Frames[0].ID != ids[0] {
		t.Fatal("MoveLeft did not carry the frame")
	}

	Select(o, 2)
	if MoveRight(o) {
		t.Error("MoveRight at the end succeeded")
	}
	if Select(o, 3) || Select(o, -1) || o.ActiveFrameIndex != 2 {
		t.Error("out of range Select changed the selection")
	}

	Select(o, 1)
	if !Duplicate(o) || len(o.Frames) != 4 || o.ActiveFrameIndex != 3 {
		t.Fatalf("Duplicate: %d frames, active %d", len(o.Frames), o.ActiveFrameIndex)
	}
	if o.Frames[3].ID == o.Frames[1].ID {
		t.Error("duplicate shares the frame identity")
	}

	if !Delete(o) || o.ActiveFrameIndex != 2 || len(o.Frames) != 3 {
		t.Errorf("Delete last: %d frames, active %d", len(o.Frames), o.ActiveFrameIndex)
	}
	Select(o, 0)
	if !Delete(o) || o.ActiveFrameIndex != 0 || o.Frames[0].ID != ids[1] {
		t.Error("Delete first did not keep index 0")
	}
}

func TestDelete_KeepsOneFrame(t *testing.T) {
	o := object(1, domain.PlaybackLoop)
	if Delete(o) {
		t.Error("deleted the only frame")
	}
	if len(o.Frames) != 1 {
		t.Errorf("frames = %d", len(o.Frames))
	}
}

func TestFrameInvariant_RandomOperations(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	o := object(2, domain.PlaybackBounce)
	ops := []func(*domain.Object){
		func(o *domain.Object) { Delete(o) },
		func(o *domain.Object) { MoveLeft(o) },
		func(o *domain.Object) { MoveRight(o) },
		func(o *domain.Object) { Duplicate(o) },
		func(o *domain.Object) { Select(o, r.IntN(6)-1) },
		func(o *domain.Object) { Advance(o, r) },
	}
	for i := range 2000 {
		ops[r.IntN(len(ops))](o)
		if len(o.Frames) < 1 {
			t.Fatalf("step %d: no frames left", i)
		}
		if o.ActiveFrameIndex < 0 || o.ActiveFrameIndex >= len(o.Frames) {
			t.Fatalf("step %d: active %d of %d", i, o.ActiveFrameIndex, len(o.Frames))
		}
	}
}

func TestSave(t *testing.T) {
	o := object(1, domain.PlaybackLoop)
	s := domain.NewStroke(domain.Black, 2)
	s.Points = []domain.Point{geom.V3(0, 0, 0), geom.V3(1, 1, 0)}

	if !Save(o, 0, []domain.Stroke{s}) || len(o.Frames[0].Strokes) != 1 {
		t.Fatal("Save did not replace frame 0")
	}
	if !Save(o, 1, []domain.Stroke{s, s}) || len(o.Frames) != 2 || len(o.Frames[1].Strokes) != 2 {
		t.Fatal("Save at count did not append")
	}
	if Save(o, 5, nil) {
		t.Error("Save past the end succeeded")
	}

	s.Points[0] = geom.V3(9, 9, 9)
	if o.Frames[0].Strokes[0].Points[0] == s.Points[0] {
		t.Error("Save kept a reference to the caller's points")
	}
}

func TestAddFrame(t *testing.T) {
	o := object(1, domain.PlaybackLoop)
	if i := AddFrame(o); i != 1 || o.ActiveFrameIndex != 1 || len(o.Frames[1].Strokes) != 0 {
		t.Errorf("AddFrame = %d", i)
	}
}

func TestSpeedInterval(t *testing.T) {
	if SpeedInterval(-1) != Speeds[DefaultSpeed] || SpeedInterval(len(Speeds)) != Speeds[DefaultSpeed] {
		t.Error("out of range speed did not fall back")
	}
	for i := 1; i < len(Speeds); i++ {
		if Speeds[i] >= Speeds[i-1] {
			t.Errorf("speed %d not faster than %d", i, i-1)
		}
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		op          FrameOp
		index       int
		wantChanged bool
		wantFrames  int
		wantActive  int
	}{
		{OpSelect, 2, true, 3, 2},
		{OpSelect, 7, false, 3, 1},
		{OpLeft, 0, true, 3, 0},
		{OpRight, 0, true, 3, 2},
		{OpDuplicate, 0, true, 4, 3},
		{OpDelete, 0, true, 2, 1},
		{OpAdd, 0, true, 4, 3},
		{FrameOp("spin"), 0, false, 3, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			o := object(3, domain.PlaybackLoop)
			o.ActiveFrameIndex = 1
			if got := Apply(o, tt.op, tt.index); got != tt.wantChanged {
				t.Errorf("changed = %v, want %v", got, tt.wantChanged)
			}
			if len(o.Frames) != tt.wantFrames || o.ActiveFrameIndex != tt.wantActive {
				t.Errorf("frames=%d active=%d, want %d %d", len(o.Frames), o.ActiveFrameIndex, tt.wantFrames, tt.wantActive)
			}
		})
	}
}

func TestParseFrameOp(t *testing.T) {
	for _, s := range []string{"select", "left", "right", "dup", "delete", "add"} {
		if _, err := ParseFrameOp(s); err != nil {
			t.Errorf("ParseFrameOp(%q) = %v", s, err)
		}
	}
	if _, err := ParseFrameOp("spin"); err == nil {
		t.Error("unknown operation accepted")
	}
}
