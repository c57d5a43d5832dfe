// Package anim drives frame-by-frame sprite playback: a cache of
// pre-rasterized pixel buffers and the timing loop that walks them.
package anim

import (
	"github.com/telmova/dotfield/core/sim"
	"github.com/telmova/dotfield/internal/log"
)

// Raster renders a source bitmap into surface space and reads the pixels
// back. src is an opaque handle understood by the implementation (an
// *ebiten.Image in internal/render, a stdlib image in tests).
type Raster interface {
	Rasterize(src any, bounds sim.Rect) (sim.PixelBuffer, error)
}

// Cache stores one rasterized pixel buffer per frame id. Entries are
// immutable once cached; Initialize wipes everything.
type Cache struct {
	log    *log.Logger
	raster Raster

	frames   map[string]sim.PixelBuffer
	failed   map[string]bool
	expected int
	loaded   int
}

func NewCache(logg *log.Logger, raster Raster) *Cache {
	return &Cache{
		log:    logg,
		raster: raster,
		frames: map[string]sim.PixelBuffer{},
		failed: map[string]bool{},
	}
}

// Initialize resets the cache for a new frame sequence.
func (c *Cache) Initialize(frameIDs []string) {
	c.frames = make(map[string]sim.PixelBuffer, len(frameIDs))
	c.failed = map[string]bool{}
	c.expected = len(frameIDs)
	c.loaded = 0
}

// CacheFrame rasterizes src at the given bounds and stores the result.
// Returns false (and counts the frame as failed-but-loaded) when
// rasterization errors, so FullyLoaded never hangs on a bad asset.
func (c *Cache) CacheFrame(id string, src any, bounds sim.Rect) bool {
	buf, err := c.raster.Rasterize(src, bounds)
	if err != nil {
		c.log.Warnf("anim: rasterizing frame %q failed: %v", id, err)
		c.Fail(id)
		return false
	}
	c.frames[id] = buf
	c.loaded++
	return true
}

// Fail records a frame whose source could not be loaded. It counts toward
// the loaded total; Frame on this id reports missing and seeding from it
// yields zero particles.
func (c *Cache) Fail(id string) {
	if !c.failed[id] {
		c.failed[id] = true
		c.loaded++
	}
}

// Frame returns the cached buffer for id, or ok=false when the frame is
// unknown or failed.
func (c *Cache) Frame(id string) (sim.PixelBuffer, bool) {
	buf, ok := c.frames[id]
	return buf, ok
}

// Has reports whether id is a known, successfully cached frame.
func (c *Cache) Has(id string) bool {
	_, ok := c.frames[id]
	return ok
}

// FullyLoaded reports whether every expected frame has been cached or
// recorded as failed.
func (c *Cache) FullyLoaded() bool {
	return c.expected > 0 && c.loaded >= c.expected
}

// Progress is the loaded fraction in [0,1]; 0 before Initialize.
func (c *Cache) Progress() float64 {
	if c.expected == 0 {
		return 0
	}
	p := float64(c.loaded) / float64(c.expected)
	if p > 1 {
		p = 1
	}
	return p
}
