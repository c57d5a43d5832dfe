package anim

import (
	"time"

	"github.com/telmova/dotfield/internal/log"
)

type State uint8

const (
	StateIdle State = iota
	StatePlaying
)

// Driver walks a fixed ordered frame-id sequence on a wall-clock schedule.
// Callbacks fire synchronously from the tick, in emission order, matching
// the single-threaded simulation loop.
type Driver struct {
	log *log.Logger

	frames        []string
	frameDuration time.Duration
	loop          bool

	state         State
	idx           int
	completedOnce bool
	last          time.Time
	now           func() time.Time

	// floatSnapshot freezes the floating-effect offset while an animation
	// plays, so swapped frames do not bob against the particle field.
	floatSnapshot    float64
	floatSnapshotSet bool

	OnFrame   func(id string, idx int)
	OnStopped func()
}

func NewDriver(logg *log.Logger, frames []string, frameDuration time.Duration, loop bool) *Driver {
	return &Driver{
		log:           logg,
		frames:        frames,
		frameDuration: frameDuration,
		loop:          loop,
		now:           time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (d *Driver) SetNow(now func() time.Time) { d.now = now }

// Start begins playback from the first frame. It refuses while already
// playing, or after a completed non-looping run.
func (d *Driver) Start() bool {
	if d.state == StatePlaying {
		d.log.Debugf("anim: start ignored, already playing")
		return false
	}
	if d.completedOnce && !d.loop {
		d.log.Debugf("anim: start ignored, non-looping sequence already completed")
		return false
	}
	if len(d.frames) == 0 {
		d.log.Warnf("anim: start ignored, no frames configured")
		return false
	}
	d.idx = 0
	d.last = d.now()
	d.state = StatePlaying
	if d.OnFrame != nil {
		d.OnFrame(d.frames[0], 0)
	}
	return true
}

// Tick advances the sequence when the frame duration has elapsed. A
// non-looping sequence stops on wrap-around instead of committing frame 0
// again.
func (d *Driver) Tick() {
	if d.state != StatePlaying {
		return
	}
	if d.now().Sub(d.last) < d.frameDuration {
		return
	}
	next := (d.idx + 1) % len(d.frames)
	if next == 0 && !d.loop {
		d.completedOnce = true
		d.stop()
		return
	}
	d.idx = next
	d.last = d.now()
	if d.OnFrame != nil {
		d.OnFrame(d.frames[next], next)
	}
}

// SetFrame jumps directly to a frame id. Unknown ids are ignored with a
// diagnostic.
func (d *Driver) SetFrame(id string, cache *Cache) bool {
	if cache != nil && !cache.Has(id) {
		d.log.Warnf("anim: set_frame ignored, %q not in cache", id)
		return false
	}
	for i, f := range d.frames {
		if f == id {
			d.idx = i
			d.last = d.now()
			if d.OnFrame != nil {
				d.OnFrame(id, i)
			}
			return true
		}
	}
	d.log.Warnf("anim: set_frame ignored, %q not in sequence", id)
	return false
}

// Stop forces idle and signals stopped whether or not playback was running.
func (d *Driver) Stop() {
	d.stop()
}

func (d *Driver) stop() {
	d.state = StateIdle
	d.floatSnapshotSet = false
	if d.OnStopped != nil {
		d.OnStopped()
	}
}

// HoldFloatOffset captures the floating offset in effect when playback
// started. Cleared on stop.
func (d *Driver) HoldFloatOffset(y float64) {
	d.floatSnapshot = y
	d.floatSnapshotSet = true
}

// FloatOffset returns the captured offset, if one is held.
func (d *Driver) FloatOffset() (float64, bool) {
	return d.floatSnapshot, d.floatSnapshotSet
}

// Current returns the committed frame id and index.
func (d *Driver) Current() (string, int) {
	if len(d.frames) == 0 {
		return "", 0
	}
	return d.frames[d.idx], d.idx
}

// Playing reports whether the driver is in the playing state.
func (d *Driver) Playing() bool { return d.state == StatePlaying }

// Completed reports whether a non-looping run has finished at least once.
func (d *Driver) Completed() bool { return d.completedOnce }
