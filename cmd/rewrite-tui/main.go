package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"grammar-ca/internal/audio"
	"grammar-ca/internal/config"
	"grammar-ca/internal/grammar"
	"grammar-ca/internal/logging"
	"grammar-ca/internal/sims/rewrite"
	"grammar-ca/internal/tui"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

func main() {
	cfg := config.Default()
	cfg.Bind(flag.CommandLine)
	sound := flag.Bool("sound", false, "play a tone per rewrite and a chime on convergence")
	every := flag.Int("sound-every", 1, "only sound every nth rewrite")
	logFile := flag.String("log", "", "write logs to this file (the screen owns stderr)")
	fill := flag.Float64("fill", 1, "share of the terminal the grid occupies")
	flag.Parse()
	if err := cfg.Resolve(os.Getenv); err != nil {
		log.Fatalf("config: %v", err)
	}

	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
		out = f
	}
	logger := logging.NewWriter(out, cfg.LogLevel)

	sim, err := rewrite.New(cfg, logger)
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	opts := []tui.Option{tui.WithLogger(logger), tui.WithFill(*fill)}
	if *sound {
		if err := speaker.Init(audio.SampleRate, audio.Samples(time.Second/10)); err != nil {
			// Non-fatal, the viewer runs without sound.
			logger.Warnf("audio init: %v", err)
		} else {
			defer speaker.Close()
			cues := audio.NewCues(func(s beep.Streamer) { speaker.Play(s) }, audio.WithEvery(*every))
			opts = append(opts, tui.WithTickHook(func(r grammar.TickResult) { cues.Tick(r) }))
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("screen: %v", err)
	}
	screen.EnableMouse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	v := tui.New(screen, sim, cfg.TPS, opts...)
	err = v.Run(ctx)
	stop()
	screen.Fini()
	if err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}
