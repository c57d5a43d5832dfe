package effects

import "time"

// Fade ramps the field opacity from 1 to 0 over a fixed duration. The
// consumer clears particles and emits its completion notification when
// Update first reports done.
type Fade struct {
	duration time.Duration
	start    time.Time
	opacity  float64
	active   bool
	signaled bool
	now      func() time.Time
}

func NewFade(duration time.Duration) *Fade {
	return &Fade{duration: duration, opacity: 1, now: time.Now}
}

// SetNow overrides the clock, for tests.
func (f *Fade) SetNow(now func() time.Time) { f.now = now }

// Trigger starts (or restarts) the ramp at full opacity.
func (f *Fade) Trigger() {
	f.start = f.now()
	f.opacity = 1
	f.active = true
	f.signaled = false
}

// Update advances the ramp. completed is true exactly once, on the first
// tick at or past the full duration.
func (f *Fade) Update() (opacity float64, completed bool) {
	if !f.active {
		return f.opacity, false
	}
	progress := float64(f.now().Sub(f.start)) / float64(f.duration)
	if progress > 1 {
		progress = 1
	}
	f.opacity = 1 - progress
	if progress >= 1 && !f.signaled {
		f.signaled = true
		f.active = false
		return f.opacity, true
	}
	return f.opacity, false
}

// Opacity is the last computed opacity; 1 before any trigger.
func (f *Fade) Opacity() float64 { return f.opacity }

// Active reports whether a ramp is running.
func (f *Fade) Active() bool { return f.active }
