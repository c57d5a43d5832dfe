// Package config holds the merged, defaulted configuration tree shared by
// every subsystem. Components never read a live shared object; they receive a
// value snapshot at construction and again on each Reconfigure call.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ForceCurve selects the repulsion ramp shape.
type ForceCurve string

const (
	CurveLinear      ForceCurve = "linear"
	CurveTopHeavy    ForceCurve = "top_heavy"
	CurveBottomHeavy ForceCurve = "bottom_heavy"
)

// PlacementMode selects how secondary particles are positioned.
type PlacementMode string

const (
	PlaceGrid        PlacementMode = "grid"
	PlaceRandom      PlacementMode = "random"
	PlaceAroundImage PlacementMode = "around_image"
)

// Action names resolvable from pointer state. Anything else configured under
// Interactivity is treated as a caller-defined custom action and passed
// through untouched.
const (
	ActionNone       = ""
	ActionRepulse    = "repulse"
	ActionBigRepulse = "big_repulse"
)

type Particles struct {
	Size        float64  `json:"size"`         // base render radius, px
	Color       string   `json:"color"`        // single hex color, used when Palette is empty
	Palette     []string `json:"palette"`      // hex colors sampled uniformly at seed time
	Density     float64  `json:"density"`      // horizontal sample count across the image
	MinFriction float64  `json:"min_friction"` // per-particle friction drawn from [min,max]
	MaxFriction float64  `json:"max_friction"`
	AtDest      bool     `json:"start_at_destination"`

	Restless Restless `json:"restless"`
}

type Restless struct {
	Enabled         bool    `json:"enabled"`
	MaxDisplacement float64 `json:"max_displacement"` // px, per-particle threshold is random in (0,max]
	Jitter          float64 `json:"jitter"`           // per-axis delta magnitude, px
}

type Repulse struct {
	DetectionRadius float64    `json:"detection_radius"` // px
	MaxDisplacement float64    `json:"max_displacement"` // px
	Duration        float64    `json:"repulse_duration"` // seconds
	Curve           ForceCurve `json:"force_curve"`
}

type BigRepulse struct {
	Distance float64 `json:"distance"` // px, becomes the detection radius
	Strength float64 `json:"strength"` // mapped to max displacement via strength/200
}

type Gentle struct {
	DetectionRadius float64 `json:"detection_radius"`
	Sensitivity     float64 `json:"sensitivity"`
	MaxOffset       float64 `json:"max_offset"`
}

type Interactivity struct {
	OnHover string `json:"on_hover"`
	OnClick string `json:"on_click"`
	OnTouch string `json:"on_touch"`

	Repulse    Repulse    `json:"repulse"`
	BigRepulse BigRepulse `json:"big_repulse"`
	Gentle     Gentle     `json:"gentle"`
}

type Secondary struct {
	Enabled    bool          `json:"enabled"`
	Mode       PlacementMode `json:"mode"`
	Size       float64       `json:"size"`
	Color      string        `json:"color"`
	Palette    []string      `json:"palette"`
	Density    float64       `json:"density"` // particles per 10000 px², pre-multiplier
	Multiplier float64       `json:"multiplier"`

	GridSpacing float64 `json:"grid_spacing"` // px, grid mode
	DiskRadius  float64 `json:"disk_radius"`  // px, random mode; 0 means half the surface diagonal
	MinSpacing  float64 `json:"min_spacing"`  // px, rejection distance for random/around modes
	BufferPct   float64 `json:"buffer_pct"`   // around-image annulus growth, fraction of image size

	Wander Wander `json:"wander"`
}

type Wander struct {
	Enabled bool    `json:"enabled"`
	Speed   float64 `json:"speed"` // px per tick at full heading alignment
}

type Animation struct {
	Frames        []string `json:"frames"`         // explicit paths, or bare integers resolved via BasePath
	FrameDuration int      `json:"frame_duration"` // milliseconds
	Loop          bool     `json:"loop"`
	BasePath      string   `json:"base_path"` // directory for numeric frame entries
	Suffix        string   `json:"suffix"`    // file suffix for numeric frame entries
}

type Breakpoints struct {
	MobileMaxWidth    float64 `json:"mobile_max_width"`
	TabletMaxWidth    float64 `json:"tablet_max_width"`
	MobileMultiplier  float64 `json:"mobile_multiplier"`
	TabletMultiplier  float64 `json:"tablet_multiplier"`
	DesktopMultiplier float64 `json:"desktop_multiplier"`
}

type Responsive struct {
	BaseViewport float64     `json:"base_viewport"` // reference viewport width, px
	SizeScale    float64     `json:"size_scale"`
	DensityScale float64     `json:"density_scale"`
	MinSize      float64     `json:"min_size"`
	MaxSize      float64     `json:"max_size"`
	MinDensity   float64     `json:"min_density"`
	MaxDensity   float64     `json:"max_density"`
	Breakpoints  Breakpoints `json:"breakpoints"`
}

type Floating struct {
	Enabled   bool    `json:"enabled"`
	Amplitude float64 `json:"amplitude"` // px
	Frequency float64 `json:"frequency"` // Hz
	Phase     float64 `json:"phase"`     // radians
}

type Effects struct {
	Floating     Floating `json:"floating"`
	FadeDuration int      `json:"fade_duration"`  // milliseconds
	ScatterForce float64  `json:"scatter_force"`  // velocity kick magnitude
	ScatterOnEnd bool     `json:"scatter_on_end"` // scatter when a non-looping animation stops
}

type Config struct {
	Particles     Particles     `json:"particles"`
	Interactivity Interactivity `json:"interactivity"`
	Secondary     Secondary     `json:"secondary"`
	Animation     Animation     `json:"animation"`
	Responsive    Responsive    `json:"responsive"`
	Effects       Effects       `json:"effects"`
}

// Default returns the fully populated baseline configuration. Merging a user
// overlay on top of this is the only supported way to build a Config.
func Default() Config {
	return Config{
		Particles: Particles{
			Size:        2.5,
			Color:       "#ffffff",
			Density:     160,
			MinFriction: 0.92,
			MaxFriction: 0.93,
			Restless: Restless{
				MaxDisplacement: 10,
				Jitter:          3,
			},
		},
		Interactivity: Interactivity{
			OnHover: ActionRepulse,
			Repulse: Repulse{
				DetectionRadius: 60,
				MaxDisplacement: 40,
				Duration:        0.9,
				Curve:           CurveTopHeavy,
			},
			BigRepulse: BigRepulse{Distance: 120, Strength: 400},
			Gentle: Gentle{
				DetectionRadius: 100,
				Sensitivity:     0.25,
				MaxOffset:       8,
			},
		},
		Secondary: Secondary{
			Mode:        PlaceGrid,
			Size:        1.5,
			Color:       "#9fb4c7",
			Density:     4,
			Multiplier:  1,
			GridSpacing: 48,
			MinSpacing:  24,
			BufferPct:   0.25,
			Wander:      Wander{Enabled: true, Speed: 0.4},
		},
		Animation: Animation{
			FrameDuration: 100,
			Suffix:        ".png",
		},
		Responsive: Responsive{
			BaseViewport: 1920,
			SizeScale:    0.0002,
			DensityScale: 0.0002,
			MinSize:      1,
			MaxSize:      6,
			MinDensity:   40,
			MaxDensity:   300,
			Breakpoints: Breakpoints{
				MobileMaxWidth:    768,
				TabletMaxWidth:    1200,
				MobileMultiplier:  1,
				TabletMultiplier:  1,
				DesktopMultiplier: 1,
			},
		},
		Effects: Effects{
			Floating:     Floating{Amplitude: 6, Frequency: 0.25},
			FadeDuration: 800,
			ScatterForce: 4,
		},
	}
}

// Merge deep-merges a JSON overlay onto a copy of base: fields present in the
// overlay replace the base value, everything else keeps the base value. The
// result is validated before being returned, so a bad overlay never yields a
// partially applied configuration.
func Merge(base Config, overlay []byte) (Config, error) {
	merged := base
	if len(overlay) > 0 {
		if err := json.Unmarshal(overlay, &merged); err != nil {
			return base, fmt.Errorf("config overlay: %w", err)
		}
	}
	if err := merged.Validate(); err != nil {
		return base, err
	}
	return merged, nil
}

// Validate checks every section and reports all violations at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, v ...any) {
		errs = append(errs, fmt.Errorf(format, v...))
	}

	if c.Particles.Size <= 0 {
		fail("particles.size must be positive, got %v", c.Particles.Size)
	}
	if c.Particles.Density <= 0 {
		fail("particles.density must be positive, got %v", c.Particles.Density)
	}
	if c.Particles.MinFriction <= 0 || c.Particles.MaxFriction >= 1 ||
		c.Particles.MinFriction > c.Particles.MaxFriction {
		fail("particles friction range must satisfy 0 < min <= max < 1, got [%v,%v]",
			c.Particles.MinFriction, c.Particles.MaxFriction)
	}
	for _, hex := range append([]string{c.Particles.Color}, c.Particles.Palette...) {
		if hex != "" && !validHex(hex) {
			fail("particles: malformed color %q", hex)
		}
	}

	switch c.Interactivity.Repulse.Curve {
	case CurveLinear, CurveTopHeavy, CurveBottomHeavy:
	default:
		fail("interactivity.repulse.force_curve: unknown curve %q", c.Interactivity.Repulse.Curve)
	}
	if c.Interactivity.Repulse.Duration <= 0 {
		fail("interactivity.repulse.repulse_duration must be positive, got %v",
			c.Interactivity.Repulse.Duration)
	}
	if c.Interactivity.Repulse.DetectionRadius < 0 {
		fail("interactivity.repulse.detection_radius must not be negative, got %v",
			c.Interactivity.Repulse.DetectionRadius)
	}

	if c.Secondary.Density < 0 {
		fail("secondary.density must not be negative, got %v", c.Secondary.Density)
	}
	if c.Secondary.Mode == PlaceGrid && c.Secondary.GridSpacing <= 0 {
		fail("secondary.grid_spacing must be positive in grid mode, got %v",
			c.Secondary.GridSpacing)
	}

	if c.Animation.FrameDuration <= 0 {
		fail("animation.frame_duration must be positive, got %v", c.Animation.FrameDuration)
	}

	if c.Responsive.BaseViewport <= 0 {
		fail("responsive.base_viewport must be positive, got %v", c.Responsive.BaseViewport)
	}
	if c.Responsive.MinSize > c.Responsive.MaxSize {
		fail("responsive size bounds inverted: [%v,%v]", c.Responsive.MinSize, c.Responsive.MaxSize)
	}
	if c.Responsive.MinDensity > c.Responsive.MaxDensity {
		fail("responsive density bounds inverted: [%v,%v]",
			c.Responsive.MinDensity, c.Responsive.MaxDensity)
	}

	if c.Effects.FadeDuration <= 0 {
		fail("effects.fade_duration must be positive, got %v", c.Effects.FadeDuration)
	}

	return errors.Join(errs...)
}

// NormalizeMode maps an unknown placement mode to the documented grid default.
// Unknown modes are a recoverable condition, not a validation failure; the
// caller is expected to log the returned diagnostic.
func NormalizeMode(mode PlacementMode) (PlacementMode, string) {
	switch mode {
	case PlaceGrid, PlaceRandom, PlaceAroundImage:
		return mode, ""
	default:
		return PlaceGrid, fmt.Sprintf("unknown placement mode %q, falling back to grid", mode)
	}
}

func validHex(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	body := s[1:]
	if len(body) != 3 && len(body) != 6 {
		return false
	}
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
