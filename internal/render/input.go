package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/telmova/dotfield/core/interact"
)

var (
	cursorPosition = ebiten.CursorPosition
	mouseClicked   = func() bool {
		return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	}
	touchIDs      = func() []ebiten.TouchID { return ebiten.AppendTouchIDs(nil) }
	touchPosition = ebiten.TouchPosition
)

// SetInputForTest replaces the input readers during tests and returns a
// function restoring the originals.
func SetInputForTest(
	cursor func() (int, int),
	clicked func() bool,
	touches func() []ebiten.TouchID,
	touchPos func(ebiten.TouchID) (int, int),
) func() {
	oldCursor, oldClicked, oldIDs, oldPos := cursorPosition, mouseClicked, touchIDs, touchPosition
	cursorPosition = cursor
	mouseClicked = clicked
	touchIDs = touches
	touchPosition = touchPos
	return func() {
		cursorPosition, mouseClicked, touchIDs, touchPosition = oldCursor, oldClicked, oldIDs, oldPos
	}
}

// CapturePointer snapshots the raw pointer/touch state in surface-local
// coordinates. Recomputed every tick; nothing persists here.
func CapturePointer(w, h int) interact.Pointer {
	mx, my := cursorPosition()
	p := interact.Pointer{
		X:        float64(mx),
		Y:        float64(my),
		Hovering: mx >= 0 && my >= 0 && mx < w && my < h,
		Clicked:  mouseClicked(),
	}
	if ids := touchIDs(); len(ids) > 0 {
		tx, ty := touchPosition(ids[0])
		p.TouchX, p.TouchY = float64(tx), float64(ty)
		p.Touching = true
	}
	return p
}
