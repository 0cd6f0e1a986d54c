package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"grammar-ca/internal/config"
	"grammar-ca/internal/grammar"
	"grammar-ca/internal/logging"
	"grammar-ca/internal/render"
	"grammar-ca/internal/rules"
	"grammar-ca/internal/sims/rewrite"
)

func main() {
	cfg := config.Default()
	cfg.Bind(flag.CommandLine)
	runs := flag.Int("runs", 8, "number of seeds to run, starting at -seed")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	outDir := flag.String("out", "", "directory for one PNG per seed (empty to skip)")
	pngScale := flag.Int("png-scale", 4, "pixels per cell in PNG output")
	ascii := flag.Bool("ascii", false, "print the final grid of the first seed as symbols")
	flag.Parse()
	if err := cfg.Resolve(os.Getenv); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	a, err := cfg.BuildAlphabet()
	if err != nil {
		log.Fatalf("alphabet: %v", err)
	}
	rs, err := rules.NewLoader(a, logger).LoadFile(cfg.Rules)
	if err != nil {
		log.Fatalf("rules: %v", err)
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("output dir: %v", err)
		}
	}

	seeds := make([]int64, *runs)
	for i := range seeds {
		seeds[i] = cfg.Seed + int64(i)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Running %d seeds of %s on %dx%d (%d workers, max ticks %d)\n",
		len(seeds), cfg.Rules, cfg.Width, cfg.Height, *workers, cfg.MaxTicks)
	start := time.Now()
	results := rewrite.Sweep(ctx, cfg, a, rs, seeds, *workers, cfg.MaxTicks, logger)
	elapsed := time.Since(start)

	for _, res := range results {
		if res.Err != nil {
			logger.Errorf("seed %d: %v", res.Seed, res.Err)
			continue
		}
		if *outDir == "" {
			continue
		}
		path := filepath.Join(*outDir, fmt.Sprintf("seed-%d.png", res.Seed))
		if err := writePNG(path, res, cfg, a, *pngScale); err != nil {
			logger.Errorf("seed %d: %v", res.Seed, err)
		}
	}

	sorted := append([]rewrite.RunResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ticks < sorted[j].Ticks })
	fmt.Printf("\nResults by ticks to convergence (elapsed %s):\n", elapsed.Round(time.Millisecond))
	for _, res := range sorted {
		if res.Err != nil {
			continue
		}
		fmt.Printf("seed=%d ticks=%d rewrites=%d converged=%v %s (%s)\n",
			res.Seed, res.Ticks, res.Rewrites, res.Converged, counts(res.Counts, a), res.Elapsed.Round(time.Millisecond))
	}

	if *ascii && len(results) > 0 && results[0].Err == nil {
		fmt.Println()
		fmt.Print(asciiGrid(results[0].Cells, cfg.Width, a))
	}
}

func writePNG(path string, res rewrite.RunResult, cfg config.Config, a *grammar.Alphabet, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WritePNG(f, res.Cells, cfg.Width, cfg.Height, a.Palette(), scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func counts(c []int, a *grammar.Alphabet) string {
	parts := make([]string, 0, len(c))
	for i, n := range c {
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%c:%d", a.Symbol(grammar.Category(i)).Rune, n))
	}
	return strings.Join(parts, " ")
}

func asciiGrid(cells []uint8, w int, a *grammar.Alphabet) string {
	var b strings.Builder
	for i, c := range cells {
		b.WriteRune(a.Symbol(grammar.Category(c)).Rune)
		if (i+1)%w == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
