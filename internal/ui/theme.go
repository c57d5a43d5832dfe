package ui

import "image/color"

var (
	colBG        = color.RGBA{12, 12, 18, 255}
	colBarBorder = color.RGBA{240, 240, 240, 255}
	colBarFill   = color.RGBA{0, 200, 255, 255}
)
