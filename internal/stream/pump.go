package stream

import (
	"context"
	"errors"
	"time"

	"grammar-ca/internal/core"
	"grammar-ca/internal/sims/rewrite"
)

// PumpConfig controls Pump.
type PumpConfig struct {
	TPS int
	// Interval is how often accumulated ticks are run and a frame published.
	Interval time.Duration
	// Restart reseeds the sim this long after it converges; zero keeps the
	// converged grid on display.
	Restart time.Duration
	// Seed returns the seed for each restart.
	Seed func() int64
}

// Pump owns sim: it ticks it at cfg.TPS and publishes one frame per
// interval in which anything changed. It returns when ctx ends.
func Pump(ctx context.Context, sim *rewrite.Sim, hub *Hub, cfg PumpConfig) error {
	if cfg.Interval <= 0 {
		cfg.Interval = 33 * time.Millisecond
	}
	timer := core.NewFixedStep(cfg.TPS)
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	var convergedAt time.Time
	if err := publish(ctx, sim, hub); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if sim.Converged() {
				if cfg.Restart <= 0 || now.Sub(convergedAt) < cfg.Restart {
					continue
				}
				seed := sim.Seed() + 1
				if cfg.Seed != nil {
					seed = cfg.Seed()
				}
				sim.Reset(seed)
				if err := publish(ctx, sim, hub); err != nil {
					return err
				}
				continue
			}

			changed := false
			for n := timer.Due(1 << 12); n > 0 && !sim.Converged(); n-- {
				sim.Step()
				changed = true
			}
			if sim.Converged() {
				convergedAt = now
			}
			if !changed {
				continue
			}
			if err := publish(ctx, sim, hub); err != nil {
				return err
			}
		}
	}
}

func publish(ctx context.Context, sim *rewrite.Sim, hub *Hub) error {
	v := sim.View()
	last := ""
	if r := sim.Last(); r.Applied {
		last = sim.Rules().At(r.Rule).Text
	}
	m := NewFrameMessage(v.Snapshot(), sim.Alphabet(), v.Stats(), last)
	if err := hub.SetHello(Hello(m, sim.Alphabet())); err != nil {
		return err
	}
	err := hub.Publish(ctx, m)
	if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err != nil {
		hub.log.Warnf("publish tick %d: %v", m.Tick, err)
	}
	return nil
}
