//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"grammar-ca/internal/app"
	"grammar-ca/internal/config"
	"grammar-ca/internal/core"
	"grammar-ca/internal/logging"
	"grammar-ca/internal/sims/rewrite"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := config.Default()
	cfg.Bind(flag.CommandLine)
	fill := flag.Float64("fill", 0.9, "share of the window the grid occupies")
	flag.Parse()
	if err := cfg.Resolve(os.Getenv); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	built, err := core.New(cfg.Sim, cfg.ToMap())
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	sim, ok := built.(*rewrite.Sim)
	if !ok {
		log.Fatalf("sim %q has no grammar view (have %v)", cfg.Sim, core.Names())
	}
	logger.Infof("%s: %dx%d grid, rules %s, seed %d", sim.Name(), cfg.Width, cfg.Height, cfg.Rules, cfg.Seed)

	game := app.New(sim, *fill, cfg.Seed)
	size := sim.Size()

	ebiten.SetWindowTitle("grammar-ca: " + cfg.Rules)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale, size.H*cfg.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
