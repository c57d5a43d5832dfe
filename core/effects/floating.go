// Package effects holds the passive visual-effect state machines: floating
// oscillation, one-shot scatter with recovery, and timed fade-out.
package effects

import (
	"math"

	"github.com/telmova/dotfield/internal/config"
)

// Floating is a stateless vertical oscillation. It yields a render-time
// offset rather than mutating particles, so it composes with the physics.
type Floating struct {
	cfg config.Floating
}

func NewFloating(cfg config.Floating) Floating {
	return Floating{cfg: cfg}
}

func (f *Floating) Reconfigure(cfg config.Floating) { f.cfg = cfg }

// Offset returns the translation for elapsed wall-clock seconds.
func (f Floating) Offset(seconds float64) (x, y float64) {
	if !f.cfg.Enabled {
		return 0, 0
	}
	y = math.Sin(seconds*f.cfg.Frequency*2*math.Pi+f.cfg.Phase) * f.cfg.Amplitude
	return 0, y
}

// Enabled reports whether the oscillation is active.
func (f Floating) Enabled() bool { return f.cfg.Enabled }
