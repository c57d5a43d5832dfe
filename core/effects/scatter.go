package effects

import (
	"math"
	"math/rand"

	"github.com/telmova/dotfield/core/sim"
	"github.com/telmova/dotfield/internal/log"
)

// settleSpeed is the velocity below which a scattered particle is eligible
// to return to its snapshotted destination.
const settleSpeed = 0.1

// Scatter is the one-shot explosion: every particle gets a random nearby
// destination and a velocity kick, then drifts back once it has slowed down.
type Scatter struct {
	log    *log.Logger
	force  float64
	rng    *rand.Rand
	active bool
}

func NewScatter(logg *log.Logger, force float64, seed int64) *Scatter {
	return &Scatter{
		log:   logg,
		force: force,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Active reports whether a scatter is in flight.
func (s *Scatter) Active() bool { return s.active }

// Trigger scatters every particle in the given fields. Triggering while
// already active re-kicks particles without re-snapshotting destinations.
func (s *Scatter) Trigger(fields ...*sim.Field) {
	n := 0
	for _, f := range fields {
		for _, p := range f.Particles() {
			p.BeginScatter(s.rng.Float64()*2*math.Pi, s.force)
			n++
		}
	}
	s.active = n > 0
	s.log.Debugf("scatter: kicked %d particles (force=%.1f)", n, s.force)
}

// Update settles any particle that has slowed below the threshold, restoring
// its pre-scatter destination and a fresh normal friction drawn from its
// field. Returns true exactly once, on the tick the last particle settles.
func (s *Scatter) Update(fields ...*sim.Field) (completed bool) {
	if !s.active {
		return false
	}
	remaining := 0
	for _, f := range fields {
		for _, p := range f.Particles() {
			if !p.Scattered {
				continue
			}
			if p.Speed() < settleSpeed {
				p.EndScatter(f.RandomFriction())
				continue
			}
			remaining++
		}
	}
	if remaining == 0 {
		s.active = false
		s.log.Debugf("scatter: all particles settled")
		return true
	}
	return false
}
