// Package capture turns sampled gesture positions into committed strokes.
package capture

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/history"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/notify"
)

// Mode selects what a gesture does.
type Mode int

const (
	ModeDraw Mode = iota
	ModeErase
)

// Space is the dimensionality of the drawing surface.
type Space int

const (
	// Plane is the 2D canvas; every point has Z == 0.
	Plane Space = iota
	// World is in-space 3D drawing.
	World
)

// Config tunes sampling.
type Config struct {
	Space Space
	// Snap enables substituting samples with nearby committed points.
	Snap       bool
	SnapRadius float64
	// StepDistance is the resampling step. When consecutive samples are more
	// than 1.5 steps apart the gap is filled at this spacing. Zero disables
	// resampling.
	StepDistance float64
}

// resampleFactor is how far apart two samples may be before the gap is filled.
const resampleFactor = 1.5

// Engine accumulates samples into a stroke while a gesture is active and
// commits finished strokes through a history.Manager.
//
// An Engine is not safe for concurrent use; drive it from the mutation loop.
type Engine struct {
	cfg       Config
	hist      *history.Manager
	mode      Mode
	color     domain.Color
	thickness float64

	active  bool
	current domain.Stroke
	lastAt  time.Time

	// Updates receives the in-progress stroke after every accepted sample,
	// for live preview.
	Updates notify.Hub[domain.Stroke]
}

// NewEngine returns an engine committing into h's bound frame.
func NewEngine(h *history.Manager, cfg Config) *Engine {
	return &Engine{
		cfg:       cfg,
		hist:      h,
		color:     domain.Black,
		thickness: 1,
	}
}

// Config returns the current configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetConfig replaces the configuration. It takes effect on the next sample.
func (e *Engine) SetConfig(cfg Config) { e.cfg = cfg }

// SetMode switches between drawing and erasing. Ignored while capturing.
func (e *Engine) SetMode(m Mode) {
	if !e.active {
		e.mode = m
	}
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode { return e.mode }

// SetStyle sets the color and thickness of strokes begun from now on.
// For erasing, thickness is the eraser radius.
func (e *Engine) SetStyle(c domain.Color, thickness float64) {
	e.color = c
	e.thickness = thickness
}

// Capturing reports whether a gesture is in progress.
func (e *Engine) Capturing() bool { return e.active }

// Current returns a copy of the in-progress stroke.
func (e *Engine) Current() domain.Stroke { return e.current.Clone() }

// Begin starts a gesture in the current mode. It returns false and does
// nothing if a gesture is already in progress.
func (e *Engine) Begin() bool {
	if e.active {
		return false
	}
	e.active = true
	e.lastAt = time.Time{}
	if e.mode == ModeDraw {
		e.current = domain.NewStroke(e.color, e.thickness)
	}
	return true
}

// AppendSample feeds one sampled position. In draw mode it returns the point
// actually stored, after snapping. In erase mode on the plane it erases
// around p. Samples outside a gesture, with non-finite coordinates, or
// timestamped before the previous sample are dropped.
func (e *Engine) AppendSample(p geom.Vec3, at time.Time) (geom.Vec3, bool) {
	if !e.active || !p.IsFinite() {
		return geom.Vec3{}, false
	}
	if !at.IsZero() {
		if at.Before(e.lastAt) {
			return geom.Vec3{}, false
		}
		e.lastAt = at
	}
	if e.cfg.Space == Plane {
		p.Z = 0
	}

	if e.mode == ModeErase {
		e.Erase(p, e.thickness)
		return p, true
	}

	if e.cfg.Snap {
		if s, ok := e.snapTarget(p); ok {
			p = s
		}
	}
	e.appendResampled(p)
	e.Updates.Publish(e.current)
	return p, true
}

// End finishes the gesture. A drawn stroke with at least two points is
// committed and returned; shorter strokes are discarded.
func (e *Engine) End() (domain.Stroke, bool) {
	if !e.active {
		return domain.Stroke{}, false
	}
	e.active = false
	s := e.current
	e.current = domain.Stroke{}
	if e.mode != ModeDraw || len(s.Points) < 2 {
		return domain.Stroke{}, false
	}
	e.hist.CommitDraw(s)
	return s, true
}

// Erase removes, as one undoable batch, every stroke of the frame with a
// point closer than radius to at. It only applies on the plane and returns
// the number of strokes removed.
func (e *Engine) Erase(at geom.Vec3, radius float64) int {
	f := e.hist.Frame()
	if e.cfg.Space != Plane || f == nil || !(radius > 0) {
		return 0
	}
	var hit []uuid.UUID
	for _, s := range f.Strokes {
		for _, q := range s.Points {
			if geom.Distance(q, at) < radius {
				hit = append(hit, s.ID)
				break
			}
		}
	}
	return len(e.hist.CommitErase(hit))
}

// snapTarget scans the committed strokes of the frame in order and returns
// the first point found at the smallest distance below the snap radius.
// Later points at an equal distance do not replace an earlier one.
func (e *Engine) snapTarget(p geom.Vec3) (geom.Vec3, bool) {
	f := e.hist.Frame()
	if f == nil || !(e.cfg.SnapRadius > 0) {
		return geom.Vec3{}, false
	}
	best := e.cfg.SnapRadius
	var target geom.Vec3
	found := false
	for _, s := range f.Strokes {
		for _, q := range s.Points {
			if d := geom.Distance(p, q); d < best {
				best = d
				target = q
				found = true
			}
		}
	}
	return target, found
}

func (e *Engine) appendResampled(p geom.Vec3) {
	n := len(e.current.Points)
	step := e.cfg.StepDistance
	if n == 0 || !(step > 0) || math.IsInf(step, 0) {
		e.current.Points = append(e.current.Points, p)
		return
	}
	last := e.current.Points[n-1]
	if geom.Distance(last, p) <= resampleFactor*step {
		e.current.Points = append(e.current.Points, p)
		return
	}
	fill := geom.Interpolate(last, p, step)
	if len(fill) == 0 {
		e.current.Points = append(e.current.Points, p)
		return
	}
	// the final interpolated point is p itself
	fill[len(fill)-1] = p
	e.current.Points = append(e.current.Points, fill...)
	logging.Logger().Debug("gap resampled", "inserted", len(fill)-1)
}
