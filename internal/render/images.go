package render

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/telmova/dotfield/core/anim"
)

// LoadImage decodes an image file into an ebiten texture. A failed primary
// image is fatal to initialization; the caller decides that.
func LoadImage(path string) (*ebiten.Image, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return img, nil
}

// LoadedFrame is one result of the asynchronous frame fetch. Err is set when
// the source failed; the frame still counts toward loading progress.
type LoadedFrame struct {
	Source anim.Source
	Img    *ebiten.Image
	Err    error
}

// LoadFramesAsync fetches frame sources on a background goroutine and
// delivers results over the returned channel, which is closed when done.
// This is the only asynchronous boundary; the consumer drains it from the
// single-threaded tick.
func LoadFramesAsync(sources []anim.Source) <-chan LoadedFrame {
	ch := make(chan LoadedFrame, len(sources))
	go func() {
		defer close(ch)
		for _, s := range sources {
			img, err := LoadImage(s.Path)
			ch <- LoadedFrame{Source: s, Img: img, Err: err}
		}
	}()
	return ch
}
