package sim

import (
	"math"
	"time"
)

// Class tags a particle as belonging to the image field or the decorative
// surround field. Class defaults differ (seek spring vs. wander, scatter
// travel distance) but the update dispatch is shared.
type Class uint8

const (
	ClassPrimary Class = iota
	ClassSecondary
)

// Mode is the movement rule applied on the current tick.
type Mode uint8

const (
	ModeSeek Mode = iota
	ModeRestless
	ModeWander
	ModeScattered
)

// springStiffness divides the destination delta when computing the seek
// acceleration. Together with per-particle friction around 0.92 it behaves as
// a critically damped spring: smooth convergence, no visible overshoot.
const springStiffness = 500

// Particle is a single rendered dot. One record serves both classes; the
// Mode field selects the per-tick movement rule.
type Particle struct {
	Class Class
	Mode  Mode
	home  Mode // mode to restore when a scatter ends

	X, Y         float64
	DestX, DestY float64
	VX, VY       float64
	AccX, AccY   float64

	// ExtAccX/Y hold the interaction forces pushed in before Step runs.
	// Step consumes and zeroes them every tick, in every mode.
	ExtAccX, ExtAccY float64

	Friction float64

	Radius       float64
	TargetRadius float64
	ColorR       uint8
	ColorG       uint8
	ColorB       uint8

	// Restless jitter: fixed per-axis deltas and a per-particle displacement
	// threshold, chosen once at creation. armed toggles off once the
	// threshold is reached and stays off until externally re-armed.
	JitterX       float64
	JitterY       float64
	JitterMaxDisp float64
	armed         bool

	// RepulseStart marks the onset of an active repulsion; zero when the
	// pointer is out of range.
	RepulseStart time.Time

	// Wander state, secondary particles only.
	WanderHeading float64
	WanderSpeed   float64
	wanderPhase   float64

	// Scatter state.
	Scattered                  bool
	ScatterOrigX, ScatterOrigY float64
}

// Env carries the per-tick inputs shared by every particle in a field.
type Env struct {
	W, H       float64
	RestlessOn bool
	// WanderNoise returns coherent noise in roughly [-1,1] for a per-particle
	// phase; nil disables heading drift.
	WanderNoise func(phase float64) float64
}

// Step advances the particle by one tick.
func (p *Particle) Step(env *Env) {
	switch p.Mode {
	case ModeRestless:
		if env.RestlessOn && p.armed {
			// Interaction forces are per-tick: while jitter owns the motion
			// they are dropped, never banked for a burst on disarm.
			p.ExtAccX, p.ExtAccY = 0, 0
			p.X += p.JitterX
			p.Y += p.JitterY
			if p.Displacement() >= p.JitterMaxDisp {
				p.armed = false
			}
		} else {
			p.seek()
		}
	case ModeWander:
		p.wander(env)
	default: // ModeSeek, ModeScattered
		p.seek()
	}
	p.easeRadius()
}

// seek integrates the destination spring: acc = (dest-pos)/500, velocity
// damped by friction. External interaction forces join the same integration.
func (p *Particle) seek() {
	p.AccX = (p.DestX-p.X)/springStiffness + p.ExtAccX
	p.AccY = (p.DestY-p.Y)/springStiffness + p.ExtAccY
	p.ExtAccX, p.ExtAccY = 0, 0
	p.VX = (p.VX + p.AccX) * p.Friction
	p.VY = (p.VY + p.AccY) * p.Friction
	p.X += p.VX
	p.Y += p.VY
}

// wander drifts the heading by coherent noise and blends velocity toward the
// heading vector, reflecting off the field edges.
func (p *Particle) wander(env *Env) {
	if env.WanderNoise != nil {
		p.WanderHeading += env.WanderNoise(p.wanderPhase) * 0.2
	}
	tx := math.Cos(p.WanderHeading) * p.WanderSpeed
	ty := math.Sin(p.WanderHeading) * p.WanderSpeed
	const blend = 0.08
	p.VX = p.VX*(1-blend) + tx*blend + p.ExtAccX
	p.VY = p.VY*(1-blend) + ty*blend + p.ExtAccY
	p.ExtAccX, p.ExtAccY = 0, 0
	p.X += p.VX
	p.Y += p.VY

	if p.X < 0 {
		p.X = 0
		p.VX = -p.VX
		p.WanderHeading = math.Pi - p.WanderHeading
	} else if p.X > env.W {
		p.X = env.W
		p.VX = -p.VX
		p.WanderHeading = math.Pi - p.WanderHeading
	}
	if p.Y < 0 {
		p.Y = 0
		p.VY = -p.VY
		p.WanderHeading = -p.WanderHeading
	} else if p.Y > env.H {
		p.Y = env.H
		p.VY = -p.VY
		p.WanderHeading = -p.WanderHeading
	}
}

// easeRadius moves the render radius 10% of the way to its target per tick,
// so live size reconfiguration never pops.
func (p *Particle) easeRadius() {
	if gap := p.TargetRadius - p.Radius; math.Abs(gap) > 0.1 {
		p.Radius += gap * 0.1
	}
}

// Displacement is the distance from the current position to the destination.
func (p *Particle) Displacement() float64 {
	return math.Hypot(p.DestX-p.X, p.DestY-p.Y)
}

// Speed is the magnitude of the current velocity.
func (p *Particle) Speed() float64 {
	return math.Hypot(p.VX, p.VY)
}

// ArmRestless re-enables the jitter rule until the displacement threshold is
// next reached. Driven by the field's external re-arming policy.
func (p *Particle) ArmRestless() { p.armed = true }

// RestlessArmed reports whether the jitter rule is currently armed.
func (p *Particle) RestlessArmed() bool { return p.armed }

// BeginScatter snapshots the destination (first scatter only), points the
// particle at a random nearby destination and kicks its velocity. Lowered
// friction lets it travel farther before settling.
func (p *Particle) BeginScatter(angle, force float64) {
	if !p.Scattered {
		p.ScatterOrigX, p.ScatterOrigY = p.DestX, p.DestY
		p.Scattered = true
	}
	dist := force * 25
	if p.Class == ClassSecondary {
		dist = force * 30
	}
	p.DestX = p.X + math.Cos(angle)*dist
	p.DestY = p.Y + math.Sin(angle)*dist
	p.VX = math.Cos(angle) * force
	p.VY = math.Sin(angle) * force
	p.Friction = 0.85
	p.Mode = ModeScattered
}

// EndScatter restores the snapshotted destination and a fresh normal
// friction. Callers check Speed() < 0.1 for eligibility.
func (p *Particle) EndScatter(friction float64) {
	p.DestX, p.DestY = p.ScatterOrigX, p.ScatterOrigY
	p.Friction = friction
	p.Scattered = false
	p.Mode = p.home
}
