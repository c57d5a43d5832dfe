// Package render is the ebiten-facing glue: the drawing canvas, offscreen
// rasterization with pixel readback, pointer capture, and asset loading.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// drawCircle is a variable so tests can capture draw calls without a GPU.
var drawCircle = func(dst *ebiten.Image, x, y, r float32, c color.Color) {
	vector.DrawFilledCircle(dst, x, y, r, c, true)
}

// Canvas implements sim.Canvas on an ebiten target image, with a render-time
// translation used by the floating effect.
type Canvas struct {
	dst        *ebiten.Image
	offX, offY float64
}

func NewCanvas() *Canvas { return &Canvas{} }

// Begin points the canvas at this frame's target.
func (c *Canvas) Begin(dst *ebiten.Image) { c.dst = dst }

// SetOffset sets the translation applied to every subsequent draw.
func (c *Canvas) SetOffset(x, y float64) { c.offX, c.offY = x, y }

// FillCircle draws one particle. alpha in [0,1] composes the fade effect
// into the fill color.
func (c *Canvas) FillCircle(x, y, r float64, rgb [3]uint8, alpha float64) {
	if c.dst == nil || r <= 0 || alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	// Premultiplied, as ebiten expects.
	col := color.RGBA{
		R: uint8(float64(rgb[0]) * alpha),
		G: uint8(float64(rgb[1]) * alpha),
		B: uint8(float64(rgb[2]) * alpha),
		A: uint8(255 * alpha),
	}
	drawCircle(c.dst, float32(x+c.offX), float32(y+c.offY), float32(r), col)
}
