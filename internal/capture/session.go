package capture

import (
	"time"

	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/loop"
)

// DefaultSampleInterval is how often an in-space gesture samples the
// drawing position.
const DefaultSampleInterval = 20 * time.Millisecond

// Source reports the current drawing position, or false when it is unknown
// (for example while tracking is lost).
type Source func() (geom.Vec3, bool)

// Session samples a Source periodically into an Engine for the duration of
// one gesture. Ticks run on the mutation loop.
type Session struct {
	engine *Engine
	task   *loop.Task
}

// StartSession begins a gesture, records the current position, and then
// samples src every interval. It must be called on the loop. It returns nil
// if the engine is already capturing.
func StartSession(l *loop.Loop, e *Engine, interval time.Duration, src Source) *Session {
	if !e.Begin() {
		return nil
	}
	sample := func() {
		if p, ok := src(); ok {
			e.AppendSample(p, time.Now())
		}
	}
	sample()
	return &Session{
		engine: e,
		task:   loop.Every(l, interval, sample),
	}
}

// Stop cancels sampling and ends the gesture. No sample is taken after Stop
// returns. Call it on the loop.
func (s *Session) Stop() (domain.Stroke, bool) {
	s.task.Stop()
	return s.engine.End()
}
