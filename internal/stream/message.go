package stream

import (
	"encoding/json"
	"strings"

	"grammar-ca/internal/grammar"

	"github.com/lucasb-eyer/go-colorful"
)

// Message is the JSON document pushed to websocket clients. Rows hold one
// string per grid row, one alphabet symbol per cell. Palette maps each
// symbol to a hex color and is only sent in "hello" messages.
type Message struct {
	Type      string            `json:"type"`
	Tick      int               `json:"tick"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Rows      []string          `json:"rows"`
	Rewrites  int               `json:"rewrites"`
	Converged bool              `json:"converged"`
	LastRule  string            `json:"last_rule,omitempty"`
	Palette   map[string]string `json:"palette,omitempty"`
}

// JSON encodes the message.
func (m Message) JSON() ([]byte, error) { return json.Marshal(m) }

// NewFrameMessage renders a snapshot taken between ticks.
func NewFrameMessage(f grammar.Frame, a *grammar.Alphabet, st grammar.Stats, lastRule string) Message {
	rows := make([]string, f.Height)
	var b strings.Builder
	for y := 0; y < f.Height; y++ {
		b.Reset()
		for x := 0; x < f.Width; x++ {
			b.WriteRune(a.Symbol(grammar.Category(f.Categories[y*f.Width+x])).Rune)
		}
		rows[y] = b.String()
	}
	return Message{
		Type:      "frame",
		Tick:      f.Tick,
		Width:     f.Width,
		Height:    f.Height,
		Rows:      rows,
		Rewrites:  st.Rewrites,
		Converged: st.Converged,
		LastRule:  lastRule,
	}
}

// Hello wraps a frame message with the palette for newly connected clients.
func Hello(m Message, a *grammar.Alphabet) Message {
	m.Type = "hello"
	m.Palette = make(map[string]string, a.Len())
	for i := 0; i < a.Len(); i++ {
		s := a.Symbol(grammar.Category(i))
		c, _ := colorful.MakeColor(s.Color)
		m.Palette[string(s.Rune)] = c.Hex()
	}
	return m
}
