package ui

import (
	"errors"
	"math/rand"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/telmova/dotfield/core/anim"
	"github.com/telmova/dotfield/core/effects"
	"github.com/telmova/dotfield/core/interact"
	"github.com/telmova/dotfield/core/sim"
	"github.com/telmova/dotfield/internal/config"
	"github.com/telmova/dotfield/internal/log"
	"github.com/telmova/dotfield/internal/render"
	"github.com/telmova/dotfield/internal/responsive"
)

// primaryFrameID is the pseudo frame holding the primary image's pixels.
const primaryFrameID = "primary"

// resizeDebounceTicks delays the re-seed after a size change so a window
// drag does not rebuild the field sixty times a second.
const resizeDebounceTicks = 30

// restlessRearmTicks centers the randomized re-arming interval for the
// jitter rule; each interval is drawn from [half, one-and-a-half] periods.
const restlessRearmTicks = 180

const ebitenTPS = 60

/* ───────────────────────── game ───────────────────────── */

// Game wires the simulation core into one ebiten.Game. Update fully
// completes the interaction, effect and physics passes before Draw reads
// positions; nothing is touched from another goroutine except the frame
// loader channel, which is drained at the top of the tick.
type Game struct {
	log *log.Logger
	cfg config.Config

	calc      responsive.Calculator
	primary   *sim.Field
	secondary *sim.Field
	resolver  *interact.Resolver
	floating  effects.Floating
	scatter   *effects.Scatter
	fade      *effects.Fade
	cache     *anim.Cache
	driver    *anim.Driver
	canvas    *render.Canvas
	raster    *render.Raster

	primaryImg   *ebiten.Image
	primaryPath  string
	imgBounds    sim.Rect
	frameIDs     []string
	frameImgs    map[string]*ebiten.Image
	failedFrames map[string]bool
	frameCh      <-chan render.LoadedFrame

	w, h          int
	pendingResize int
	destroyed     bool
	ready         bool
	epoch         time.Time
	tick          int64
	nextRearm     int64
	currentFrame  string
	rng           *rand.Rand

	// Loading overlay: the displayed progress chases the real ratio on a
	// spring so the bar moves smoothly even when frames land in bursts.
	spring      harmonica.Spring
	progress    float64
	progressVel float64

	restlessGate func() bool
	OnEvent      func(Event)
}

// New builds the full system around an already-loaded primary image. The
// image is rasterized as the "primary" pseudo frame; configured animation
// frames load asynchronously and are consumed on the tick.
func New(logg *log.Logger, cfg config.Config, img *ebiten.Image, imgPath string, w, h int) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("ui: primary image is required")
	}

	g := &Game{
		log:          logg,
		cfg:          cfg,
		primaryImg:   img,
		primaryPath:  imgPath,
		frameImgs:    map[string]*ebiten.Image{},
		failedFrames: map[string]bool{},
		w:            w,
		h:            h,
		epoch:        time.Now(),
		currentFrame: primaryFrameID,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		spring:       harmonica.NewSpring(harmonica.FPS(ebitenTPS), 6.0, 1.0),
		canvas:       render.NewCanvas(),
	}
	g.restlessGate = func() bool { return g.cfg.Particles.Restless.Enabled }
	g.nextRearm = restlessRearmTicks/2 + g.rng.Int63n(restlessRearmTicks)

	g.calc = responsive.New(cfg.Responsive)
	g.resolver = interact.NewResolver(logg, cfg.Interactivity)
	g.floating = effects.NewFloating(cfg.Effects.Floating)
	g.scatter = effects.NewScatter(logg, cfg.Effects.ScatterForce, g.rng.Int63())
	g.fade = effects.NewFade(time.Duration(cfg.Effects.FadeDuration) * time.Millisecond)
	g.raster = render.NewRaster(w, h)
	g.cache = anim.NewCache(logg, g.raster)

	vw := float64(w)
	bpm := g.calc.BreakpointMultiplier(vw)
	g.primary = sim.NewField(logg, sim.ClassPrimary, vw, float64(h), sim.Params{
		Size:        g.calc.Size(cfg.Particles.Size, vw) * bpm,
		MinFriction: cfg.Particles.MinFriction,
		MaxFriction: cfg.Particles.MaxFriction,
		Palette:     sim.BuildPalette(cfg.Particles.Palette, cfg.Particles.Color, logg),
		AtDest:      cfg.Particles.AtDest,
		Restless:    cfg.Particles.Restless,
	}, g.rng.Int63())
	g.secondary = sim.NewField(logg, sim.ClassSecondary, vw, float64(h), sim.Params{
		Size:        g.calc.Size(cfg.Secondary.Size, vw) * bpm,
		MinFriction: cfg.Particles.MinFriction,
		MaxFriction: cfg.Particles.MaxFriction,
		Palette:     sim.BuildPalette(cfg.Secondary.Palette, cfg.Secondary.Color, logg),
		AtDest:      true,
		Wander:      cfg.Secondary.Wander,
	}, g.rng.Int63())

	sources := anim.ResolveSources(cfg.Animation, imgPath)
	frameDur := time.Duration(cfg.Animation.FrameDuration) * time.Millisecond
	g.driver = anim.NewDriver(logg, anim.IDs(sources), frameDur, cfg.Animation.Loop)
	g.driver.OnFrame = g.onFrameChanged
	g.driver.OnStopped = g.onAnimationStopped

	g.imgBounds = g.fitImage()
	g.frameIDs = append([]string{primaryFrameID}, anim.IDs(sources)...)
	g.cache.Initialize(g.frameIDs)
	if g.cache.CacheFrame(primaryFrameID, img, g.imgBounds) {
		g.frameImgs[primaryFrameID] = img
	} else {
		g.failedFrames[primaryFrameID] = true
	}
	if len(sources) > 0 {
		g.frameCh = render.LoadFramesAsync(sources)
	}
	return g, nil
}

// fitImage centers the primary image in the surface at up to 60% of each
// dimension, preserving aspect ratio.
func (g *Game) fitImage() sim.Rect {
	iw := float64(g.primaryImg.Bounds().Dx())
	ih := float64(g.primaryImg.Bounds().Dy())
	scale := min(0.6*float64(g.w)/iw, 0.6*float64(g.h)/ih)
	w, h := iw*scale, ih*scale
	return sim.Rect{
		X: (float64(g.w) - w) / 2,
		Y: (float64(g.h) - h) / 2,
		W: w,
		H: h,
	}
}

/* ───────────────────────── tick ───────────────────────── */

func (g *Game) Update() error {
	if g.destroyed {
		return ebiten.Termination
	}
	g.tick++

	g.drainFrames()
	g.progress, g.progressVel = g.spring.Update(g.progress, g.progressVel, g.cache.Progress())

	if !g.ready {
		if g.cache.FullyLoaded() {
			g.ready = true
			g.reseed()
			g.placeSecondary()
			g.emit(Event{Kind: EventReady})
		}
		return nil
	}

	pointer := render.CapturePointer(g.w, g.h)
	action, ax, ay := g.resolver.Resolve(pointer)
	g.applyInteraction(pointer, action, ax, ay)

	g.driver.Tick()

	if done := g.scatter.Update(g.primary, g.secondary); done {
		g.emit(Event{Kind: EventScatterComplete})
	}
	if _, done := g.fade.Update(); done {
		g.primary.Clear()
		g.secondary.Clear()
		g.emit(Event{Kind: EventFadeComplete})
	}

	g.maybeRearmRestless()
	g.primary.Update(g.restlessGate())
	g.secondary.Update(false)

	if g.pendingResize > 0 {
		g.pendingResize--
		if g.pendingResize == 0 {
			g.onResize()
		}
	}
	return nil
}

// drainFrames consumes asynchronously loaded frame sources. Failed frames
// are recorded as loaded-but-missing so progress never stalls.
func (g *Game) drainFrames() {
	if g.frameCh == nil {
		return
	}
	for {
		select {
		case f, ok := <-g.frameCh:
			if !ok {
				g.frameCh = nil
				return
			}
			if f.Err != nil {
				g.log.Warnf("ui: frame %q failed to load: %v", f.Source.ID, f.Err)
				g.failedFrames[f.Source.ID] = true
				g.cache.Fail(f.Source.ID)
				g.emit(Event{Kind: EventError, Err: f.Err})
				continue
			}
			if g.cache.CacheFrame(f.Source.ID, f.Img, g.imgBounds) {
				g.frameImgs[f.Source.ID] = f.Img
			} else {
				g.failedFrames[f.Source.ID] = true
			}
		default:
			return
		}
	}
}

// maybeRearmRestless re-arms the jitter rule when the scheduled tick is
// reached, then draws the next interval so re-arming stays aperiodic.
func (g *Game) maybeRearmRestless() {
	if !g.cfg.Particles.Restless.Enabled || g.tick < g.nextRearm {
		return
	}
	g.primary.ArmRestless()
	g.nextRearm = g.tick + restlessRearmTicks/2 + g.rng.Int63n(restlessRearmTicks)
}

func (g *Game) applyInteraction(pointer interact.Pointer, action string, ax, ay float64) {
	switch action {
	case config.ActionNone:
	case config.ActionRepulse, config.ActionBigRepulse:
		for _, p := range g.primary.Particles() {
			g.resolver.Apply(action, ax, ay, p)
		}
	default:
		// Caller-defined action: notify on click/touch onset, never per
		// hover tick.
		if pointer.Clicked {
			g.emit(Event{Kind: EventAction, Action: action})
		}
	}
	if g.cfg.Secondary.Enabled && (pointer.Hovering || pointer.Touching) {
		gx, gy := pointer.X, pointer.Y
		if pointer.Touching {
			gx, gy = pointer.TouchX, pointer.TouchY
		}
		for _, p := range g.secondary.Particles() {
			g.resolver.ApplyGentle(p, gx, gy)
		}
	}
}

/* ───────────────────────── callbacks ───────────────────────── */

func (g *Game) onFrameChanged(id string, idx int) {
	g.currentFrame = id
	g.reseed()
	g.emit(Event{Kind: EventFrameChanged, Frame: id, Index: idx})
}

func (g *Game) onAnimationStopped() {
	g.emit(Event{Kind: EventAnimationStopped})
	if g.cfg.Effects.ScatterOnEnd {
		g.scatter.Trigger(g.primary, g.secondary)
	}
}

// reseed rebuilds the primary field from the current frame's pixel buffer.
// A missing (failed) frame seeds zero particles rather than erroring.
func (g *Game) reseed() {
	buf, ok := g.cache.Frame(g.currentFrame)
	if !ok {
		g.log.Debugf("ui: frame %q missing, field cleared", g.currentFrame)
		g.primary.Clear()
		return
	}
	g.primary.SeedFromMask(buf, g.calc.Density(float64(g.w)))
}

func (g *Game) placeSecondary() {
	if !g.cfg.Secondary.Enabled {
		return
	}
	density := g.cfg.Secondary.Density * g.calc.BreakpointMultiplier(float64(g.w))
	g.secondary.Place(g.cfg.Secondary, density, g.imgBounds)
}

// onResize re-rasterizes every retained frame bitmap at the new surface size
// and rebuilds both fields. Runs only after the debounce window closes.
// The cache is re-registered with the full expected frame set so frames
// still in flight keep readiness gated until they arrive.
func (g *Game) onResize() {
	g.log.Infof("ui: resized to %dx%d, re-seeding", g.w, g.h)
	g.raster = render.NewRaster(g.w, g.h)
	g.cache = anim.NewCache(g.log, g.raster)

	g.cache.Initialize(g.frameIDs)
	g.imgBounds = g.fitImage()
	for id := range g.failedFrames {
		g.cache.Fail(id)
	}
	for id, img := range g.frameImgs {
		if !g.cache.CacheFrame(id, img, g.imgBounds) {
			g.failedFrames[id] = true
			delete(g.frameImgs, id)
		}
	}

	g.primary.Resize(float64(g.w), float64(g.h))
	g.secondary.Resize(float64(g.w), float64(g.h))
	g.reconfigureFields()
	g.reseed()
	g.placeSecondary()
}

/* ───────────────────────── draw ───────────────────────── */

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBG)
	if !g.ready {
		g.drawLoading(screen)
		return
	}

	ox, oy := g.floating.Offset(time.Since(g.epoch).Seconds())
	if g.driver.Playing() {
		if held, ok := g.driver.FloatOffset(); ok {
			oy = held
		} else {
			g.driver.HoldFloatOffset(oy)
		}
	}

	g.canvas.Begin(screen)
	g.canvas.SetOffset(ox, oy)
	opacity := g.fade.Opacity()
	g.secondary.Render(g.canvas, opacity)
	g.primary.Render(g.canvas, opacity)
}

func (g *Game) drawLoading(screen *ebiten.Image) {
	const barW, barH = 200, 6
	x := float32(g.w-barW) / 2
	y := float32(g.h) / 2
	vector.StrokeRect(screen, x, y, barW, barH, 1, colBarBorder, false)
	vector.DrawFilledRect(screen, x, y, barW*float32(g.progress), barH, colBarFill, false)
	ebitenutil.DebugPrintAt(screen, "loading frames...", int(x), int(y)-18)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.pendingResize = resizeDebounceTicks
	}
	return outsideWidth, outsideHeight
}

/* ───────────────────────── public control ───────────────────────── */

// Play starts sprite playback, freezing the floating offset at its current
// value so frames don't bob mid-swap.
func (g *Game) Play() bool {
	_, oy := g.floating.Offset(time.Since(g.epoch).Seconds())
	started := g.driver.Start()
	if started {
		g.driver.HoldFloatOffset(oy)
	}
	return started
}

// StopAnimation forces playback to idle.
func (g *Game) StopAnimation() { g.driver.Stop() }

// SetFrame jumps to a cached frame id; unknown ids are ignored with a
// diagnostic.
func (g *Game) SetFrame(id string) bool { return g.driver.SetFrame(id, g.cache) }

// TriggerScatter fires the one-shot explosion across both fields.
func (g *Game) TriggerScatter() { g.scatter.Trigger(g.primary, g.secondary) }

// TriggerFade starts the opacity ramp; particles clear on completion.
func (g *Game) TriggerFade() { g.fade.Trigger() }

// SetRestlessGate installs the per-tick predicate deciding whether the
// jitter rule runs. The default follows the configuration flag.
func (g *Game) SetRestlessGate(gate func() bool) {
	if gate != nil {
		g.restlessGate = gate
	}
}

// Destroy stops the recurring tick: the next Update returns
// ebiten.Termination and no further ticks occur.
func (g *Game) Destroy() { g.destroyed = true }

// ParticleCount is the live primary particle count.
func (g *Game) ParticleCount() int { return g.primary.Count() }

// Reconfigure deep-merges a JSON overlay onto the current configuration and
// hands each component a fresh snapshot. A failed merge leaves everything
// untouched.
func (g *Game) Reconfigure(overlay []byte) error {
	merged, err := config.Merge(g.cfg, overlay)
	if err != nil {
		return err
	}
	if len(merged.Animation.Frames) != len(g.cfg.Animation.Frames) {
		g.log.Warnf("ui: frame list changes are ignored by reconfigure")
		merged.Animation.Frames = g.cfg.Animation.Frames
	}
	g.cfg = merged

	g.calc = responsive.New(merged.Responsive)
	g.resolver.Reconfigure(merged.Interactivity)
	g.floating.Reconfigure(merged.Effects.Floating)
	g.fade = effects.NewFade(time.Duration(merged.Effects.FadeDuration) * time.Millisecond)
	g.reconfigureFields()
	return nil
}

// reconfigureFields pushes responsive-scaled snapshots into both fields.
// Sizes ease in through each particle's target radius.
func (g *Game) reconfigureFields() {
	vw := float64(g.w)
	bpm := g.calc.BreakpointMultiplier(vw)
	g.primary.Reconfigure(sim.Params{
		Size:        g.calc.Size(g.cfg.Particles.Size, vw) * bpm,
		MinFriction: g.cfg.Particles.MinFriction,
		MaxFriction: g.cfg.Particles.MaxFriction,
		Palette:     sim.BuildPalette(g.cfg.Particles.Palette, g.cfg.Particles.Color, g.log),
		AtDest:      g.cfg.Particles.AtDest,
		Restless:    g.cfg.Particles.Restless,
	})
	g.secondary.Reconfigure(sim.Params{
		Size:        g.calc.Size(g.cfg.Secondary.Size, vw) * bpm,
		MinFriction: g.cfg.Particles.MinFriction,
		MaxFriction: g.cfg.Particles.MaxFriction,
		Palette:     sim.BuildPalette(g.cfg.Secondary.Palette, g.cfg.Secondary.Color, g.log),
		AtDest:      true,
		Wander:      g.cfg.Secondary.Wander,
	})
}

func (g *Game) emit(ev Event) {
	if g.OnEvent != nil {
		g.OnEvent(ev)
	}
}
