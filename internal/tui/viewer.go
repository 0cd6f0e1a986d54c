// Package tui draws a rewrite sim in a terminal with tcell. Each terminal
// cell samples the grid through the same viewport lookup the hover readout
// uses, so what is drawn under the mouse is what gets inspected.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"grammar-ca/internal/core"
	"grammar-ca/internal/grammar"
	"grammar-ca/internal/logging"
	"grammar-ca/internal/sims/rewrite"
	"grammar-ca/internal/ui"

	"github.com/gdamore/tcell/v2"
)

const frameInterval = 16 * time.Millisecond

// Viewer owns the screen and the sim. Events and ticks are handled on the
// goroutine that calls Run.
type Viewer struct {
	screen tcell.Screen
	sim    *rewrite.Sim
	log    logging.Logger
	timer  *core.FixedStep
	onTick func(grammar.TickResult)

	styles   []tcell.Style
	width    int
	height   int
	fill     float64
	paused   bool
	tickOnce bool
	rules    bool
	hover    core.Point
	hovered  bool
	maxSteps int
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger injects a logger. The screen owns the terminal, so it should
// write to a file or io.Discard.
func WithLogger(l logging.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.log = l
		}
	}
}

// WithTickHook registers fn to receive every tick result, e.g. audio cues.
func WithTickHook(fn func(grammar.TickResult)) Option {
	return func(v *Viewer) { v.onTick = fn }
}

// WithFill sets the share of the screen the grid occupies.
func WithFill(f float64) Option {
	return func(v *Viewer) { v.fill = f }
}

// New builds a viewer over an initialized screen.
func New(screen tcell.Screen, sim *rewrite.Sim, tps int, opts ...Option) *Viewer {
	v := &Viewer{
		screen:   screen,
		sim:      sim,
		log:      logging.Nop(),
		timer:    core.NewFixedStep(tps),
		fill:     1,
		maxSteps: 64,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.styles = styles(sim.Palette())
	v.width, v.height = screen.Size()
	return v
}

func styles(palette []color.RGBA) []tcell.Style {
	out := make([]tcell.Style, len(palette))
	for i, c := range palette {
		out[i] = tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	}
	return out
}

// viewport is the screen minus the status line.
func (v *Viewer) viewport() grammar.Viewport {
	h := v.height - 1
	if h < 0 {
		h = 0
	}
	return grammar.Viewport{Width: float64(v.width), Height: float64(h), Fill: v.fill}
}

func (v *Viewer) cellAt(col, row int) (core.Point, bool) {
	return v.sim.View().CellAt(v.viewport(), float64(col)+0.5, float64(row)+0.5)
}

// Draw paints the grid and the status line.
func (v *Viewer) Draw() {
	v.screen.Clear()
	cells := v.sim.Cells()
	size := v.sim.Size()
	for row := 0; row < v.height-1; row++ {
		for col := 0; col < v.width; col++ {
			p, ok := v.cellAt(col, row)
			if !ok {
				continue
			}
			c := int(cells[p.Y*size.W+p.X])
			style := tcell.StyleDefault
			if c < len(v.styles) {
				style = v.styles[c]
			}
			if v.hovered && p == v.hover {
				style = style.Reverse(true)
			}
			v.screen.SetContent(col, row, ' ', nil, style)
		}
	}
	v.drawStatus()
	if v.rules {
		v.drawRules()
	}
	v.screen.Show()
}

func (v *Viewer) statusLine() string {
	st := v.sim.View().Stats()
	state := "running"
	switch {
	case st.Converged:
		state = "converged"
	case v.paused:
		state = "paused"
	}
	return fmt.Sprintf(" tick %d  rewrites %d  %s | %s", st.Ticks, st.Rewrites, state,
		ui.HoverLine(v.sim, v.hover, v.hovered))
}

func (v *Viewer) drawStatus() {
	if v.height <= 0 {
		return
	}
	style := tcell.StyleDefault.Reverse(true)
	drawText(v.screen, 0, v.height-1, v.width, v.statusLine(), style)
}

func (v *Viewer) drawRules() {
	lines := ui.StatusLines(v.sim.Parameters())
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for i, l := range lines {
		if i >= v.height-1 {
			break
		}
		drawText(v.screen, 0, i, v.width, l, style)
	}
}

func drawText(s tcell.Screen, x, y, max int, str string, style tcell.Style) {
	col := x
	for _, r := range str {
		if col >= max {
			return
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < max; col++ {
		s.SetContent(col, y, ' ', nil, style)
	}
}

// HandleEvent applies one terminal event and reports whether the viewer
// should quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		x, y := ev.Position()
		v.Hover(x, y)
	case *tcell.EventResize:
		v.screen.Sync()
		v.Resize(v.screen.Size())
	}
	return false
}

func (v *Viewer) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyEnter:
		v.paused = false
		return false
	case tcell.KeyTab:
		v.rules = !v.rules
		return false
	case tcell.KeyRune:
	default:
		return false
	}
	switch r {
	case 'q':
		return true
	case ' ':
		v.paused = !v.paused
	case 'n':
		v.tickOnce = true
	case 'r':
		v.sim.Reset(v.sim.Seed())
	case 's':
		v.sim.Reset(time.Now().UnixNano())
	}
	return false
}

// Hover records the grid cell under terminal position (x, y).
func (v *Viewer) Hover(x, y int) {
	v.hover, v.hovered = v.cellAt(x, y)
}

// Resize adopts a new screen size. Cell ages restart since the old highlight
// timing no longer lines up with what is drawn.
func (v *Viewer) Resize(w, h int) {
	if w == v.width && h == v.height {
		return
	}
	v.width, v.height = w, h
	v.hovered = false
	v.sim.ResetAges()
	v.log.Debugf("resize %dx%d", w, h)
}

// Advance runs up to n ticks unless paused or converged. A pending
// single-step request runs exactly one tick even when paused.
func (v *Viewer) Advance(n int) {
	single := v.tickOnce
	v.tickOnce = false
	if single {
		n = 1
	} else if v.paused {
		return
	}
	for i := 0; i < n; i++ {
		if !single && v.sim.Converged() {
			return
		}
		v.sim.Step()
		if v.onTick != nil {
			v.onTick(v.sim.Last())
		}
	}
}

// Run polls events and steps the sim at its tick rate until ctx ends or the
// user quits.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if v.HandleEvent(ev) {
				return nil
			}
			v.Draw()
		case <-ticker.C:
			v.Advance(v.timer.Due(v.maxSteps))
			v.Draw()
		}
	}
}
