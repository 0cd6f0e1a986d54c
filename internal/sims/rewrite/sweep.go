package rewrite

import (
	"context"
	"sync"
	"time"

	"grammar-ca/internal/config"
	"grammar-ca/internal/grammar"
	"grammar-ca/internal/logging"
)

// RunResult captures one seeded run to convergence.
type RunResult struct {
	Seed      int64
	Ticks     int
	Rewrites  int
	Converged bool
	// Counts holds the number of cells per category at the end of the run.
	Counts  []int
	Cells   []uint8
	Elapsed time.Duration
	Err     error
}

// sweepChunk bounds how many ticks run between cancellation checks.
const sweepChunk = 4096

// Sweep runs one independent sim per seed on up to workers goroutines and
// returns the results in seed order. maxTicks caps each run; zero means run
// until convergence. Runs that did not start before ctx ended carry ctx's
// error.
func Sweep(ctx context.Context, cfg config.Config, a *grammar.Alphabet, rs *grammar.RuleSet, seeds []int64, workers, maxTicks int, log logging.Logger) []RunResult {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logging.Nop()
	}
	results := make([]RunResult, len(seeds))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for idx, seed := range seeds {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[idx] = RunResult{Seed: seed, Err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(i int, seed int64) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = runSeed(ctx, cfg, a, rs, seed, maxTicks)
			log.Debugf("seed %d: %d ticks, %d rewrites, converged %v", seed, results[i].Ticks, results[i].Rewrites, results[i].Converged)
		}(idx, seed)
	}
	wg.Wait()
	return results
}

func runSeed(ctx context.Context, cfg config.Config, a *grammar.Alphabet, rs *grammar.RuleSet, seed int64, maxTicks int) RunResult {
	start := time.Now()
	res := RunResult{Seed: seed}
	cfg.Seed = seed
	sim, err := NewWithRules(cfg, a, rs, nil)
	if err != nil {
		res.Err = err
		return res
	}
	for {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		budget := sweepChunk
		if maxTicks > 0 {
			left := maxTicks - sim.engine.Stats().Ticks
			if left <= 0 {
				break
			}
			budget = min(budget, left)
		}
		if _, converged := sim.Run(budget); converged {
			break
		}
	}
	st := sim.engine.Stats()
	res.Ticks = st.Ticks
	res.Rewrites = st.Rewrites
	res.Converged = st.Converged
	res.Cells = append([]uint8(nil), sim.Cells()...)
	res.Counts = make([]int, a.Len())
	for c := range res.Counts {
		res.Counts[c] = sim.engine.Count(grammar.Category(c))
	}
	res.Elapsed = time.Since(start)
	return res
}
