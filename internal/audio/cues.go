// Package audio turns tick results into short tones: a blip per committed
// rewrite, pitched by rule, and a chime when the grid converges.
package audio

import (
	"math"
	"time"

	"grammar-ca/internal/grammar"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// SampleRate is the rate cues are synthesized at.
const SampleRate = beep.SampleRate(44100)

const (
	blipLength  = 40 * time.Millisecond
	chimeNote   = 120 * time.Millisecond
	baseFreq    = 220.0
	octaveCount = 4
)

// pentatonic semitone offsets within an octave.
var pentatonic = [...]int{0, 2, 4, 7, 9}

// RuleFrequency maps a rule index onto a major pentatonic scale starting at
// A3, wrapping after four octaves.
func RuleFrequency(rule int) float64 {
	if rule < 0 {
		rule = 0
	}
	n := rule % (len(pentatonic) * octaveCount)
	semis := 12*(n/len(pentatonic)) + pentatonic[n%len(pentatonic)]
	return baseFreq * math.Pow(2, float64(semis)/12)
}

// Cues decides which tick results are audible and hands the streamers to
// play, normally speaker.Play.
type Cues struct {
	sr     beep.SampleRate
	play   func(beep.Streamer)
	volume float64
	every  int

	rewrites  int
	converged bool
}

// Option configures Cues.
type Option func(*Cues)

// WithVolume sets the volume in beep's exponential scale; 0 is unchanged,
// negative is quieter.
func WithVolume(v float64) Option {
	return func(c *Cues) { c.volume = v }
}

// WithEvery plays a blip only for every nth rewrite, for fast tick rates.
func WithEvery(n int) Option {
	return func(c *Cues) {
		if n > 0 {
			c.every = n
		}
	}
}

// NewCues builds cues that pass streamers to play.
func NewCues(play func(beep.Streamer), opts ...Option) *Cues {
	c := &Cues{sr: SampleRate, play: play, volume: -1, every: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tick reacts to one tick result. The chime sounds once per convergence; a
// later rewrite re-arms it.
func (c *Cues) Tick(res grammar.TickResult) {
	if res.Applied {
		c.converged = false
		c.rewrites++
		if c.rewrites%c.every == 0 {
			c.play(c.Blip(res.Rule))
		}
		return
	}
	if c.converged {
		return
	}
	c.converged = true
	c.play(c.Chime())
}

func (c *Cues) tone(freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(c.sr, freq)
	if err != nil {
		return beep.Silence(c.sr.N(d))
	}
	return beep.Take(c.sr.N(d), sine)
}

func (c *Cues) loud(s beep.Streamer) beep.Streamer {
	return &effects.Volume{Streamer: s, Base: 2, Volume: c.volume}
}

// Blip is the tone for one rewrite by rule.
func (c *Cues) Blip(rule int) beep.Streamer {
	return c.loud(c.tone(RuleFrequency(rule), blipLength))
}

// Chime is a rising three-note arpeggio.
func (c *Cues) Chime() beep.Streamer {
	return c.loud(beep.Seq(
		c.tone(RuleFrequency(5), chimeNote),
		c.tone(RuleFrequency(7), chimeNote),
		c.tone(RuleFrequency(10), 2*chimeNote),
	))
}

// Samples returns how many samples d lasts at SampleRate.
func Samples(d time.Duration) int { return SampleRate.N(d) }
