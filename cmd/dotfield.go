package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/telmova/dotfield/internal/config"
	game_log "github.com/telmova/dotfield/internal/log"
	"github.com/telmova/dotfield/internal/render"
	"github.com/telmova/dotfield/internal/ui"
)

func main() {
	var (
		imagePath  = flag.String("image", "assets/logo.png", "primary image to particleize")
		configPath = flag.String("config", "", "optional JSON config overlay")
		width      = flag.Int("width", 960, "window width")
		height     = flag.Int("height", 640, "window height")
	)
	flag.Parse()

	logger := game_log.Default()

	cfg := config.Default()
	if *configPath != "" {
		overlay, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Errorf("reading config: %v", err)
			os.Exit(1)
		}
		cfg, err = config.Merge(cfg, overlay)
		if err != nil {
			logger.Errorf("config: %v", err)
			os.Exit(1)
		}
	}

	img, err := render.LoadImage(*imagePath)
	if err != nil {
		// A failed primary image is fatal to initialization.
		logger.Errorf("primary image: %v", err)
		os.Exit(1)
	}

	g, err := ui.New(logger, cfg, img, *imagePath, *width, *height)
	if err != nil {
		logger.Errorf("init: %v", err)
		os.Exit(1)
	}
	g.OnEvent = func(ev ui.Event) {
		logger.Debugf("event: %s %s", ev.Kind, ev.Frame)
		if ev.Kind == ui.EventReady && len(cfg.Animation.Frames) > 0 {
			g.Play()
		}
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("dotfield")

	if err := ebiten.RunGame(g); err != nil {
		logger.Errorf("run: %v", err)
		os.Exit(1)
	}
}
