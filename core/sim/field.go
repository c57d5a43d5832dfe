package sim

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/telmova/dotfield/internal/config"
	"github.com/telmova/dotfield/internal/log"
)

// Rect is an axis-aligned surface-space rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Canvas is the drawing seam a field renders through. The ebiten
// implementation lives in internal/render; tests use recorders.
type Canvas interface {
	FillCircle(x, y, r float64, rgb [3]uint8, alpha float64)
}

// placementAttempts bounds rejection sampling per particle; a placement that
// cannot satisfy the minimum spacing inside the budget is skipped, so tight
// surfaces yield fewer particles instead of looping forever.
const placementAttempts = 50

// Params is the per-field configuration snapshot. Fields never read a shared
// config object; Reconfigure replaces the snapshot wholesale.
type Params struct {
	Size        float64 // target render radius, already responsive-scaled
	MinFriction float64
	MaxFriction float64
	Palette     [][3]uint8
	AtDest      bool // seed particles at their destination instead of random entrances

	Restless config.Restless // primary class only
	Wander   config.Wander   // secondary class only
}

// Field owns one particle collection and its creation strategy. Primary
// fields seed from an alpha mask; secondary fields place by strategy.
type Field struct {
	log   *log.Logger
	class Class
	w, h  float64
	prm   Params

	particles []*Particle
	rng       *rand.Rand
	noise     *perlin.Perlin
	noiseT    float64
}

func NewField(logg *log.Logger, class Class, w, h float64, prm Params, seed int64) *Field {
	return &Field{
		log:   logg,
		class: class,
		w:     w,
		h:     h,
		prm:   prm,
		rng:   rand.New(rand.NewSource(seed)),
		noise: perlin.NewPerlin(2, 2, 3, seed),
	}
}

// Reconfigure swaps the field's snapshot. Sizes propagate through each
// particle's target radius so the change eases in instead of popping.
func (f *Field) Reconfigure(prm Params) {
	f.prm = prm
	for _, p := range f.particles {
		p.TargetRadius = prm.Size
		if p.Class == ClassSecondary {
			p.WanderSpeed = prm.Wander.Speed
		}
	}
}

// Resize records the new surface extent. The caller re-seeds afterwards; the
// old collection is discarded wholesale rather than remapped.
func (f *Field) Resize(w, h float64) {
	f.w, f.h = w, h
}

// SeedFromMask replaces the collection with one particle per qualifying
// sample of the alpha mask. Sampling step scales inversely with density so
// the particle count tracks density regardless of image resolution.
func (f *Field) SeedFromMask(buf PixelBuffer, density float64) {
	f.particles = f.particles[:0]
	if buf.Empty() {
		f.log.Debugf("field: empty mask, seeded 0 particles")
		return
	}
	step := int(math.Round(float64(buf.W) / density))
	if step < 1 {
		step = 1
	}
	for i := 0; i < buf.W; i += step {
		for j := 0; j < buf.H; j += step {
			if buf.AlphaAt(i, j) <= 128 {
				continue
			}
			destX := buf.OriginX + float64(i)
			destY := buf.OriginY + float64(j)
			x, y := destX, destY
			if !f.prm.AtDest {
				x = f.rng.Float64() * f.w
				y = f.rng.Float64() * f.h
			}
			f.particles = append(f.particles, f.newParticle(x, y, destX, destY))
		}
	}
	f.log.Debugf("field: seeded %d particles (step=%d, density=%.1f)", len(f.particles), step, density)
}

// TargetCount is the particle budget for random/around placement: density is
// particles per 10000 px² of surface, scaled by the multiplier knob.
func (f *Field) TargetCount(density, multiplier float64) int {
	return int(density * f.w * f.h / 10000 * multiplier)
}

// Place populates a secondary field using the configured strategy. Unknown
// modes fall back to grid with a diagnostic.
func (f *Field) Place(sec config.Secondary, density float64, image Rect) {
	mode, diag := config.NormalizeMode(sec.Mode)
	if diag != "" {
		f.log.Warnf("field: %s", diag)
	}
	f.particles = f.particles[:0]
	switch mode {
	case config.PlaceGrid:
		f.placeGrid(sec.GridSpacing)
	case config.PlaceRandom:
		radius := sec.DiskRadius
		if radius <= 0 {
			radius = math.Hypot(f.w, f.h) / 2
		}
		f.placeDisk(f.TargetCount(density, sec.Multiplier), 0, radius, sec.MinSpacing)
	case config.PlaceAroundImage:
		inner := math.Hypot(image.W, image.H) / 2 * (1 + sec.BufferPct)
		outer := math.Hypot(f.w, f.h) / 2
		if outer <= inner {
			outer = inner * 1.5
		}
		f.placeDisk(f.TargetCount(density, sec.Multiplier), inner, outer, sec.MinSpacing)
	}
	f.log.Debugf("field: placed %d secondary particles (mode=%s)", len(f.particles), mode)
}

// placeGrid lays a cell-centered lattice across the whole surface.
func (f *Field) placeGrid(spacing float64) {
	if spacing <= 0 {
		return
	}
	for x := spacing / 2; x < f.w; x += spacing {
		for y := spacing / 2; y < f.h; y += spacing {
			f.particles = append(f.particles, f.newParticle(x, y, x, y))
		}
	}
}

// placeDisk samples an annulus (inner may be 0) centered on the surface,
// rejecting candidates closer than minSpacing to any accepted particle.
// Square-root radius scaling keeps area density uniform.
func (f *Field) placeDisk(count int, inner, outer, minSpacing float64) {
	cx, cy := f.w/2, f.h/2
	for n := 0; n < count; n++ {
		for attempt := 0; attempt < placementAttempts; attempt++ {
			u := f.rng.Float64()
			r := math.Sqrt(inner*inner + u*(outer*outer-inner*inner))
			a := f.rng.Float64() * 2 * math.Pi
			x := cx + math.Cos(a)*r
			y := cy + math.Sin(a)*r
			if x < 0 || y < 0 || x > f.w || y > f.h {
				continue
			}
			if minSpacing > 0 && f.tooClose(x, y, minSpacing) {
				continue
			}
			f.particles = append(f.particles, f.newParticle(x, y, x, y))
			break
		}
		// A particle whose attempt budget ran out is simply skipped.
	}
}

func (f *Field) tooClose(x, y, spacing float64) bool {
	for _, p := range f.particles {
		if math.Hypot(p.X-x, p.Y-y) < spacing {
			return true
		}
	}
	return false
}

func (f *Field) newParticle(x, y, destX, destY float64) *Particle {
	p := &Particle{
		Class:        f.class,
		X:            x,
		Y:            y,
		DestX:        destX,
		DestY:        destY,
		Friction:     f.RandomFriction(),
		Radius:       f.prm.Size,
		TargetRadius: f.prm.Size,
	}
	if len(f.prm.Palette) > 0 {
		c := f.prm.Palette[f.rng.Intn(len(f.prm.Palette))]
		p.ColorR, p.ColorG, p.ColorB = c[0], c[1], c[2]
	}
	switch f.class {
	case ClassPrimary:
		p.home = ModeSeek
		if f.prm.Restless.Enabled {
			p.home = ModeRestless
			p.JitterX = (f.rng.Float64()*2 - 1) * f.prm.Restless.Jitter
			p.JitterY = (f.rng.Float64()*2 - 1) * f.prm.Restless.Jitter
			p.JitterMaxDisp = math.Ceil(f.rng.Float64() * f.prm.Restless.MaxDisplacement)
			p.armed = true
		}
	case ClassSecondary:
		p.home = ModeSeek
		if f.prm.Wander.Enabled {
			p.home = ModeWander
			p.WanderSpeed = f.prm.Wander.Speed
			p.WanderHeading = f.rng.Float64() * 2 * math.Pi
			p.wanderPhase = f.rng.Float64() * 1000
		}
	}
	p.Mode = p.home
	return p
}

// RandomFriction draws a fresh damping coefficient from the configured range.
// Also used by the scatter effect when a particle settles back.
func (f *Field) RandomFriction() float64 {
	return f.prm.MinFriction + f.rng.Float64()*(f.prm.MaxFriction-f.prm.MinFriction)
}

// Update advances every particle one tick. restlessOn is the caller's
// per-tick re-arming gate for the jitter rule.
func (f *Field) Update(restlessOn bool) {
	f.noiseT += 0.01
	env := Env{W: f.w, H: f.h, RestlessOn: restlessOn}
	if f.class == ClassSecondary && f.prm.Wander.Enabled {
		env.WanderNoise = func(phase float64) float64 {
			return f.noise.Noise1D(f.noiseT + phase)
		}
	}
	for _, p := range f.particles {
		p.Step(&env)
	}
}

// Render draws every particle. opacity composes with the fade effect; the
// floating offset is applied by the canvas, not here.
func (f *Field) Render(cv Canvas, opacity float64) {
	for _, p := range f.particles {
		cv.FillCircle(p.X, p.Y, p.Radius, [3]uint8{p.ColorR, p.ColorG, p.ColorB}, opacity)
	}
}

// ArmRestless re-arms the jitter rule on every particle.
func (f *Field) ArmRestless() {
	for _, p := range f.particles {
		p.ArmRestless()
	}
}

// Particles exposes the collection for interaction and effect passes.
func (f *Field) Particles() []*Particle { return f.particles }

func (f *Field) Count() int { return len(f.particles) }

func (f *Field) Clear() { f.particles = f.particles[:0] }

// Size returns the surface extent the field spans.
func (f *Field) Size() (w, h float64) { return f.w, f.h }
