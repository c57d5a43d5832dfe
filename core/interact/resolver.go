// Package interact turns raw pointer/touch state into a resolved action and
// pushes the corresponding forces into particles.
package interact

import (
	"math"
	"time"

	"github.com/telmova/dotfield/core/sim"
	"github.com/telmova/dotfield/internal/config"
	"github.com/telmova/dotfield/internal/log"
)

// Pointer is the interaction state captured once per tick from raw input.
// Coordinates are surface-local.
type Pointer struct {
	X, Y     float64
	Hovering bool
	Clicked  bool

	TouchX, TouchY float64
	Touching       bool
}

// repulseCutoff ends the force ramp early: past 80% of the configured
// duration no force is applied at all, only the timer keeps running until
// the pointer leaves the detection radius.
const repulseCutoff = 0.8

type Resolver struct {
	log *log.Logger
	cfg config.Interactivity
	now func() time.Time
}

func NewResolver(logg *log.Logger, cfg config.Interactivity) *Resolver {
	return &Resolver{log: logg, cfg: cfg, now: time.Now}
}

// Reconfigure atomically replaces the resolver's configuration snapshot.
func (r *Resolver) Reconfigure(cfg config.Interactivity) {
	r.cfg = cfg
	r.log.Debugf("interact: reconfigured (hover=%q click=%q touch=%q)",
		cfg.OnHover, cfg.OnClick, cfg.OnTouch)
}

// SetNow overrides the clock, for tests.
func (r *Resolver) SetNow(now func() time.Time) { r.now = now }

// Resolve picks the active action and its origin with priority
// click > touch > hover. An empty action means no interaction this tick.
func (r *Resolver) Resolve(p Pointer) (action string, x, y float64) {
	switch {
	case p.Clicked && r.cfg.OnClick != config.ActionNone:
		return r.cfg.OnClick, p.X, p.Y
	case p.Touching && r.cfg.OnTouch != config.ActionNone:
		return r.cfg.OnTouch, p.TouchX, p.TouchY
	case p.Hovering && r.cfg.OnHover != config.ActionNone:
		return r.cfg.OnHover, p.X, p.Y
	default:
		return config.ActionNone, 0, 0
	}
}

// Apply routes a resolved action onto one primary particle. Unrecognized
// actions are caller-defined and handled upstream, so they are a no-op here.
func (r *Resolver) Apply(action string, x, y float64, p *sim.Particle) {
	switch action {
	case config.ActionRepulse:
		r.repulse(p, x, y, r.cfg.Repulse)
	case config.ActionBigRepulse:
		r.repulse(p, x, y, BigRepulsePreset(r.cfg.BigRepulse))
	}
}

// repulse applies the timed outward force. The ramp restarts from zero when
// the pointer re-enters the detection radius after leaving it.
func (r *Resolver) repulse(p *sim.Particle, x, y float64, rp config.Repulse) {
	dx := p.X - x
	dy := p.Y - y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		// Direction undefined when the pointer sits exactly on the particle.
		return
	}
	if dist > rp.DetectionRadius {
		p.RepulseStart = time.Time{}
		return
	}
	disp := p.Displacement()
	if disp >= rp.MaxDisplacement {
		return
	}
	if p.RepulseStart.IsZero() {
		p.RepulseStart = r.now()
	}
	elapsed := r.now().Sub(p.RepulseStart).Seconds()
	frac := elapsed / rp.Duration
	if frac > 1 {
		frac = 1
	}
	if frac >= repulseCutoff {
		return
	}

	// Constant-acceleration closed form: the acceleration that just reaches
	// the max displacement within the configured duration, scaled down by the
	// ramp curve and by how far the particle has already been pushed.
	required := 2 * rp.MaxDisplacement / (rp.Duration * rp.Duration)
	force := required * CurveValue(rp.Curve, frac) * math.Max(0, 1-disp/rp.MaxDisplacement)
	p.ExtAccX += force * dx / dist
	p.ExtAccY += force * dy / dist
}

// ApplyGentle is the weaker, untimed radial falloff used for secondary
// particles: force fades linearly to zero at the detection radius and is
// added straight to velocity.
func (r *Resolver) ApplyGentle(p *sim.Particle, x, y float64) {
	g := r.cfg.Gentle
	dx := p.X - x
	dy := p.Y - y
	dist := math.Hypot(dx, dy)
	if dist == 0 || dist > g.DetectionRadius {
		return
	}
	force := (1 - dist/g.DetectionRadius) * g.Sensitivity * g.MaxOffset
	p.VX += force * dx / dist
	p.VY += force * dy / dist
}

// CurveValue evaluates the repulsion ramp at fraction t in [0,1]. All curves
// agree at the endpoints; top-heavy front-loads the force, bottom-heavy ramps
// it in late.
func CurveValue(c config.ForceCurve, t float64) float64 {
	switch c {
	case config.CurveTopHeavy:
		return 1 - (1-t)*(1-t)
	case config.CurveBottomHeavy:
		return t * t
	default:
		return t
	}
}

// BigRepulsePreset maps the configured distance/strength pair onto regular
// repulsion parameters: a short linear burst with a clamped displacement.
func BigRepulsePreset(b config.BigRepulse) config.Repulse {
	maxDisp := b.Strength / 200
	if maxDisp < 0.5 {
		maxDisp = 0.5
	} else if maxDisp > 5 {
		maxDisp = 5
	}
	return config.Repulse{
		DetectionRadius: b.Distance,
		MaxDisplacement: maxDisp,
		Duration:        0.12,
		Curve:           config.CurveLinear,
	}
}
