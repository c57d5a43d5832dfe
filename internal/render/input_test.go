package render

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func stubInput(t *testing.T, x, y int, clicked bool, touches []ebiten.TouchID) {
	t.Helper()
	restore := SetInputForTest(
		func() (int, int) { return x, y },
		func() bool { return clicked },
		func() []ebiten.TouchID { return touches },
		func(id ebiten.TouchID) (int, int) { return 7 * int(id), 9 * int(id) },
	)
	t.Cleanup(restore)
}

func TestCapturePointerHoverBounds(t *testing.T) {
	cases := []struct {
		x, y     int
		hovering bool
	}{
		{50, 50, true},
		{0, 0, true},
		{99, 99, true},
		{100, 50, false},
		{50, 100, false},
		{-1, 50, false},
	}
	for _, c := range cases {
		stubInput(t, c.x, c.y, false, nil)
		p := CapturePointer(100, 100)
		if p.Hovering != c.hovering {
			t.Fatalf("cursor (%d,%d): hovering = %v, want %v", c.x, c.y, p.Hovering, c.hovering)
		}
		if p.X != float64(c.x) || p.Y != float64(c.y) {
			t.Fatalf("cursor (%d,%d) captured as (%v,%v)", c.x, c.y, p.X, p.Y)
		}
	}
}

func TestCapturePointerClick(t *testing.T) {
	stubInput(t, 10, 10, true, nil)
	if p := CapturePointer(100, 100); !p.Clicked {
		t.Fatalf("click not captured")
	}
	stubInput(t, 10, 10, false, nil)
	if p := CapturePointer(100, 100); p.Clicked {
		t.Fatalf("phantom click captured")
	}
}

func TestCapturePointerFirstTouchWins(t *testing.T) {
	stubInput(t, -1, -1, false, []ebiten.TouchID{3, 8})
	p := CapturePointer(100, 100)
	if !p.Touching {
		t.Fatalf("touch not captured")
	}
	if p.TouchX != 21 || p.TouchY != 27 {
		t.Fatalf("touch position = (%v,%v), want first touch (21,27)", p.TouchX, p.TouchY)
	}
}

func TestCapturePointerNoTouches(t *testing.T) {
	stubInput(t, 5, 5, false, nil)
	if p := CapturePointer(100, 100); p.Touching {
		t.Fatalf("phantom touch captured")
	}
}

func TestSetInputForTestRestores(t *testing.T) {
	orig := func() (int, int) { return 42, 43 }
	restoreOuter := SetInputForTest(orig, func() bool { return false },
		func() []ebiten.TouchID { return nil }, func(ebiten.TouchID) (int, int) { return 0, 0 })
	defer restoreOuter()

	restore := SetInputForTest(
		func() (int, int) { return 1, 2 },
		func() bool { return true },
		func() []ebiten.TouchID { return nil },
		func(ebiten.TouchID) (int, int) { return 0, 0 },
	)
	restore()
	if x, y := cursorPosition(); x != 42 || y != 43 {
		t.Fatalf("restore did not reinstate previous cursor reader, got (%d,%d)", x, y)
	}
}
