package animation

import (
	"math/rand/v2"
	"time"

	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/loop"
)

// Speeds are the playback tick intervals, slowest first.
var Speeds = [...]time.Duration{
	1125 * time.Millisecond,
	937500 * time.Microsecond,
	750 * time.Millisecond,
	562500 * time.Microsecond,
	375 * time.Millisecond,
}

// DefaultSpeed indexes Speeds.
const DefaultSpeed = 2

// SpeedInterval returns the tick interval of speed preset i, falling back
// to the default preset when i is out of range.
func SpeedInterval(i int) time.Duration {
	if i < 0 || i >= len(Speeds) {
		return Speeds[DefaultSpeed]
	}
	return Speeds[i]
}

// Advancer is whatever a Player moves forward on each tick.
type Advancer interface {
	Advance(r *rand.Rand)
}

// Player ticks an Advancer on the mutation loop. All methods must be called
// on the loop.
type Player struct {
	loop   *loop.Loop
	target Advancer
	rand   *rand.Rand
	speed  int
	task   *loop.Task
}

// NewPlayer returns a stopped player at the default speed. r may be nil.
func NewPlayer(l *loop.Loop, target Advancer, r *rand.Rand) *Player {
	return &Player{loop: l, target: target, rand: r, speed: DefaultSpeed}
}

// Play starts ticking. It does nothing if already playing.
func (p *Player) Play() {
	if p.task != nil {
		return
	}
	p.task = loop.Every(p.loop, SpeedInterval(p.speed), func() {
		p.target.Advance(p.rand)
	})
	logging.Logger().Debug("playback started", "interval", SpeedInterval(p.speed))
}

// Stop cancels playback. No tick runs after Stop returns.
func (p *Player) Stop() {
	if p.task == nil {
		return
	}
	p.task.Stop()
	p.task = nil
}

// Playing reports whether the player is ticking.
func (p *Player) Playing() bool { return p.task != nil }

// Speed returns the current speed preset.
func (p *Player) Speed() int { return p.speed }

// SetSpeed changes the speed preset, restarting the timer if playing.
// Out of range presets are ignored.
func (p *Player) SetSpeed(i int) bool {
	if i < 0 || i >= len(Speeds) {
		return false
	}
	p.speed = i
	if p.task != nil {
		p.Stop()
		p.Play()
	}
	return true
}
