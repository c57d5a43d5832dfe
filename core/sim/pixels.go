package sim

// PixelBuffer is a rasterized RGBA region in surface space. OriginX/OriginY
// carry the draw offset of the region, so a sampled pixel (i,j) maps to the
// surface coordinate (OriginX+i, OriginY+j).
type PixelBuffer struct {
	Pix     []byte // RGBA, 4 bytes per pixel, row-major
	W, H    int
	OriginX float64
	OriginY float64
}

// AlphaAt returns the alpha channel at (x,y), or 0 when out of range.
func (b PixelBuffer) AlphaAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0
	}
	i := (y*b.W + x) * 4
	if i+3 >= len(b.Pix) {
		return 0
	}
	return b.Pix[i+3]
}

// Empty reports whether the buffer holds no pixels. Seeding from an empty
// buffer yields zero particles; missing animation frames surface here.
func (b PixelBuffer) Empty() bool {
	return b.W <= 0 || b.H <= 0 || len(b.Pix) == 0
}
