// Package responsive maps the current viewport width onto particle size and
// density scales. Pure functions over a config snapshot; safe to call every
// tick or only on resize.
package responsive

import "github.com/telmova/dotfield/internal/config"

// Calculator scales base size/density values by viewport width. The zero
// value is unusable; build one with New and rebuild it on Reconfigure.
type Calculator struct {
	cfg config.Responsive
}

func New(cfg config.Responsive) Calculator {
	return Calculator{cfg: cfg}
}

// Size scales a base particle radius for the given viewport width. The
// multiplier is clamped to [0.3, 2.0] and the result to the configured
// [MinSize, MaxSize].
func (c Calculator) Size(base, viewportWidth float64) float64 {
	ratio := viewportWidth / c.cfg.BaseViewport
	mult := clamp(1+(ratio-1)*c.cfg.SizeScale*viewportWidth, 0.3, 2.0)
	return clamp(base*mult, c.cfg.MinSize, c.cfg.MaxSize)
}

// Density scales the configured sampling density for the given viewport
// width, clamped to [MinDensity, MaxDensity].
func (c Calculator) Density(viewportWidth float64) float64 {
	ratio := viewportWidth / c.cfg.BaseViewport
	d := c.cfg.MinDensity + (ratio-0.5)*c.cfg.DensityScale*viewportWidth
	return clamp(d, c.cfg.MinDensity, c.cfg.MaxDensity)
}

// BreakpointMultiplier picks the mobile/tablet/desktop factor by viewport
// width. Unset (zero) multipliers default to 1.
func (c Calculator) BreakpointMultiplier(viewportWidth float64) float64 {
	bp := c.cfg.Breakpoints
	var m float64
	switch {
	case viewportWidth <= bp.MobileMaxWidth:
		m = bp.MobileMultiplier
	case viewportWidth <= bp.TabletMaxWidth:
		m = bp.TabletMultiplier
	default:
		m = bp.DesktopMultiplier
	}
	if m == 0 {
		m = 1
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
