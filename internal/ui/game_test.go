package ui

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/telmova/dotfield/core/anim"
	"github.com/telmova/dotfield/core/effects"
	"github.com/telmova/dotfield/core/interact"
	"github.com/telmova/dotfield/core/sim"
	"github.com/telmova/dotfield/internal/config"
	game_log "github.com/telmova/dotfield/internal/log"
	"github.com/telmova/dotfield/internal/render"
	"github.com/telmova/dotfield/internal/responsive"
)

var testLogger *game_log.Logger

func init() {
	testLogger = game_log.New(os.Stdout, game_log.LevelError)
}

// headlessGame assembles a Game without a primary image or a graphics
// context. Rasterization never runs: the cache starts empty and frame
// arrivals are fed through the loader channel as errors.
func headlessGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.Default()
	g := &Game{
		log:          testLogger,
		cfg:          cfg,
		frameIDs:     []string{primaryFrameID},
		frameImgs:    map[string]*ebiten.Image{},
		failedFrames: map[string]bool{},
		w:            800,
		h:            600,
		epoch:        time.Now(),
		currentFrame: primaryFrameID,
		rng:          rand.New(rand.NewSource(1)),
		spring:       harmonica.NewSpring(harmonica.FPS(ebitenTPS), 6.0, 1.0),
		canvas:       render.NewCanvas(),
	}
	g.restlessGate = func() bool { return g.cfg.Particles.Restless.Enabled }
	g.nextRearm = restlessRearmTicks/2 + g.rng.Int63n(restlessRearmTicks)
	g.calc = responsive.New(cfg.Responsive)
	g.resolver = interact.NewResolver(testLogger, cfg.Interactivity)
	g.floating = effects.NewFloating(cfg.Effects.Floating)
	g.scatter = effects.NewScatter(testLogger, cfg.Effects.ScatterForce, 1)
	g.fade = effects.NewFade(time.Duration(cfg.Effects.FadeDuration) * time.Millisecond)
	g.raster = render.NewRaster(g.w, g.h)
	g.cache = anim.NewCache(testLogger, g.raster)
	g.driver = anim.NewDriver(testLogger, nil, time.Second, false)
	g.driver.OnFrame = g.onFrameChanged
	g.driver.OnStopped = g.onAnimationStopped

	vw := float64(g.w)
	g.primary = sim.NewField(testLogger, sim.ClassPrimary, vw, float64(g.h), sim.Params{
		Size:        g.calc.Size(cfg.Particles.Size, vw),
		MinFriction: cfg.Particles.MinFriction,
		MaxFriction: cfg.Particles.MaxFriction,
		Palette:     sim.BuildPalette(cfg.Particles.Palette, cfg.Particles.Color, testLogger),
		AtDest:      cfg.Particles.AtDest,
		Restless:    cfg.Particles.Restless,
	}, 1)
	g.secondary = sim.NewField(testLogger, sim.ClassSecondary, vw, float64(g.h), sim.Params{
		Size:        g.calc.Size(cfg.Secondary.Size, vw),
		MinFriction: cfg.Particles.MinFriction,
		MaxFriction: cfg.Particles.MaxFriction,
		Palette:     sim.BuildPalette(cfg.Secondary.Palette, cfg.Secondary.Color, testLogger),
		AtDest:      true,
		Wander:      cfg.Secondary.Wander,
	}, 2)

	g.primaryImg = ebiten.NewImage(400, 300)
	g.imgBounds = sim.Rect{X: 200, Y: 150, W: 400, H: 300}
	g.cache.Initialize(g.frameIDs)
	return g
}

func stubInput(t *testing.T) {
	t.Helper()
	restore := render.SetInputForTest(
		func() (int, int) { return -1, -1 },
		func() bool { return false },
		func() []ebiten.TouchID { return nil },
		func(ebiten.TouchID) (int, int) { return 0, 0 },
	)
	t.Cleanup(restore)
}

func TestReconfigureRejectsBadOverlayWhole(t *testing.T) {
	g := headlessGame(t)
	before := g.cfg

	if err := g.Reconfigure([]byte(`{"particles":{"density":-5}}`)); err == nil {
		t.Fatalf("invalid overlay accepted")
	}
	if err := g.Reconfigure([]byte(`{"particles":`)); err == nil {
		t.Fatalf("malformed overlay accepted")
	}
	if !reflect.DeepEqual(g.cfg, before) {
		t.Fatalf("rejected overlay still mutated configuration")
	}
}

func TestReconfigureAppliesFreshSnapshots(t *testing.T) {
	g := headlessGame(t)

	err := g.Reconfigure([]byte(`{"particles":{"size":9},"effects":{"fade_duration":1234}}`))
	if err != nil {
		t.Fatalf("reconfigure failed: %v", err)
	}
	if g.cfg.Particles.Size != 9 {
		t.Fatalf("particle size not applied, got %v", g.cfg.Particles.Size)
	}
	if g.cfg.Effects.FadeDuration != 1234 {
		t.Fatalf("fade duration not applied, got %v", g.cfg.Effects.FadeDuration)
	}
}

func TestReconfigureIgnoresFrameListChanges(t *testing.T) {
	g := headlessGame(t)
	before := g.cfg.Animation.Frames

	if err := g.Reconfigure([]byte(`{"animation":{"frames":["1","2","3"]}}`)); err != nil {
		t.Fatalf("reconfigure failed: %v", err)
	}
	if !reflect.DeepEqual(g.cfg.Animation.Frames, before) {
		t.Fatalf("frame list changed through reconfigure: %v", g.cfg.Animation.Frames)
	}
}

func TestLayoutArmsResizeDebounce(t *testing.T) {
	g := headlessGame(t)

	w, h := g.Layout(1024, 768)
	if w != 1024 || h != 768 {
		t.Fatalf("layout returned %dx%d", w, h)
	}
	if g.pendingResize != resizeDebounceTicks {
		t.Fatalf("debounce not armed, pendingResize = %d", g.pendingResize)
	}

	// An unchanged size must not re-arm the countdown.
	g.pendingResize = 5
	g.Layout(1024, 768)
	if g.pendingResize != 5 {
		t.Fatalf("unchanged layout re-armed debounce, pendingResize = %d", g.pendingResize)
	}
}

func TestDestroyTerminatesUpdate(t *testing.T) {
	g := headlessGame(t)
	g.Destroy()
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("update after destroy returned %v, want termination", err)
	}
}

func TestReadyFiresOnceAllFramesAccounted(t *testing.T) {
	stubInput(t)
	g := headlessGame(t)
	readies := 0
	g.OnEvent = func(ev Event) {
		if ev.Kind == EventReady {
			readies++
		}
	}

	// Primary frame missing: accounted as failed, readiness must still gate
	// on it and fire exactly once.
	g.failedFrames[primaryFrameID] = true
	g.cache.Fail(primaryFrameID)

	for i := 0; i < 3; i++ {
		if err := g.Update(); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if !g.ready {
		t.Fatalf("never became ready")
	}
	if readies != 1 {
		t.Fatalf("ready fired %d times, want 1", readies)
	}
}

func TestRestlessRearmIntervalsRandomized(t *testing.T) {
	g := headlessGame(t)
	g.cfg.Particles.Restless.Enabled = true
	g.reconfigureFields()
	g.primary.SeedFromMask(sim.PixelBuffer{Pix: []byte{255, 255, 255, 255}, W: 1, H: 1}, 10)

	p := g.primary.Particles()[0]
	p.JitterMaxDisp = 0 // disarm on the first jitter step, exposing each re-arm
	env := &sim.Env{W: 800, H: 600, RestlessOn: true}
	p.Step(env)
	if p.RestlessArmed() {
		t.Fatalf("particle did not disarm at zero threshold")
	}

	var rearms []int64
	for tick := int64(1); tick <= 2000; tick++ {
		g.tick = tick
		g.maybeRearmRestless()
		if p.RestlessArmed() {
			rearms = append(rearms, tick)
			p.Step(env)
		}
	}
	if len(rearms) < 4 {
		t.Fatalf("only %d re-arms in 2000 ticks", len(rearms))
	}
	distinct := false
	for i := 1; i < len(rearms); i++ {
		gap := rearms[i] - rearms[i-1]
		if gap < restlessRearmTicks/2 || gap >= restlessRearmTicks*3/2 {
			t.Fatalf("re-arm gap %d outside [%d, %d)", gap, restlessRearmTicks/2, restlessRearmTicks*3/2)
		}
		if i > 1 && gap != rearms[i-1]-rearms[i-2] {
			distinct = true
		}
	}
	if !distinct {
		t.Fatalf("re-arm gaps all identical: %v", rearms)
	}
}

func TestResizeKeepsPendingFramesGatingReadiness(t *testing.T) {
	g := headlessGame(t)
	g.frameIDs = []string{primaryFrameID, "1", "2"}
	g.cache.Initialize(g.frameIDs)
	g.failedFrames[primaryFrameID] = true
	g.cache.Fail(primaryFrameID)

	ch := make(chan render.LoadedFrame, 2)
	g.frameCh = ch
	ch <- render.LoadedFrame{Source: anim.Source{ID: "1"}, Err: errors.New("missing asset")}
	g.drainFrames()

	// Resize with frame "2" still in flight: the rebuilt cache must keep
	// the full expected set, carrying the accounted frames over and staying
	// gated on the pending one.
	g.onResize()
	if g.cache.FullyLoaded() {
		t.Fatalf("cache fully loaded with a frame still in flight")
	}
	if p := g.cache.Progress(); math.Abs(p-2.0/3) > 1e-9 {
		t.Fatalf("accounted frames lost across resize, progress = %v, want 2/3", p)
	}

	ch <- render.LoadedFrame{Source: anim.Source{ID: "2"}, Err: errors.New("missing asset")}
	close(ch)
	g.drainFrames()
	if !g.cache.FullyLoaded() {
		t.Fatalf("cache not fully loaded after last frame arrived")
	}
	if p := g.cache.Progress(); p != 1 {
		t.Fatalf("progress = %v after all frames accounted, want 1", p)
	}
}
