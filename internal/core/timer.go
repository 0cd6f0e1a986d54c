package core

import "time"

// FixedStep paces ticks at a steady rate independent of how often the host
// loop polls it (terminal redraws, websocket pushes).
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
// The first poll always reports a due step.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate; non-positive values fall back to 60.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Due reports how many ticks have accumulated since the last poll, capped at
// max so a stalled host does not trigger a burst.
func (f *FixedStep) Due(max int) int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	n := 0
	for f.accumulator >= f.step && n < max {
		f.accumulator -= f.step
		n++
	}
	if n == max && f.accumulator >= f.step {
		f.accumulator = 0
	}
	return n
}

// ShouldStep reports whether the simulation should advance by one tick.
func (f *FixedStep) ShouldStep() bool { return f.Due(1) == 1 }
