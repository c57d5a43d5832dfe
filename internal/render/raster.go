package render

import (
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/telmova/dotfield/core/sim"
)

// Raster rasterizes source bitmaps into surface space and reads the pixels
// back, implementing anim.Raster. Rebuilt on resize so the offscreen surface
// always matches the render surface.
type Raster struct {
	w, h int
}

func NewRaster(w, h int) *Raster {
	return &Raster{w: w, h: h}
}

// Rasterize clears an offscreen surface sized to the render surface, draws
// src scaled and positioned per bounds, and reads back the RGBA pixels
// restricted to bounds.
func (r *Raster) Rasterize(src any, bounds sim.Rect) (sim.PixelBuffer, error) {
	img, ok := src.(*ebiten.Image)
	if !ok || img == nil {
		return sim.PixelBuffer{}, fmt.Errorf("raster: source is %T, want *ebiten.Image", src)
	}
	if r.w <= 0 || r.h <= 0 {
		return sim.PixelBuffer{}, fmt.Errorf("raster: surface is %dx%d", r.w, r.h)
	}

	off := ebiten.NewImage(r.w, r.h)
	defer off.Deallocate()

	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(bounds.W/float64(iw), bounds.H/float64(ih))
	op.GeoM.Translate(bounds.X, bounds.Y)
	off.DrawImage(img, &op)

	rect := image.Rect(
		int(math.Floor(bounds.X)),
		int(math.Floor(bounds.Y)),
		int(math.Ceil(bounds.X+bounds.W)),
		int(math.Ceil(bounds.Y+bounds.H)),
	).Intersect(image.Rect(0, 0, r.w, r.h))
	if rect.Empty() {
		return sim.PixelBuffer{}, fmt.Errorf("raster: bounds %+v outside surface", bounds)
	}

	buf := make([]byte, 4*rect.Dx()*rect.Dy())
	off.SubImage(rect).(*ebiten.Image).ReadPixels(buf)

	return sim.PixelBuffer{
		Pix:     buf,
		W:       rect.Dx(),
		H:       rect.Dy(),
		OriginX: float64(rect.Min.X),
		OriginY: float64(rect.Min.Y),
	}, nil
}
