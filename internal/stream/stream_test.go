package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"grammar-ca/internal/config"
	"grammar-ca/internal/grammar"
	"grammar-ca/internal/rules"
	"grammar-ca/internal/sims/rewrite"

	"github.com/gorilla/websocket"
)

func TestNewFrameMessage(t *testing.T) {
	a := grammar.DefaultAlphabet()
	f := grammar.Frame{Tick: 3, Width: 3, Height: 2, Categories: []uint8{
		uint8(grammar.Black), uint8(grammar.White), uint8(grammar.Gray),
		uint8(grammar.Red), uint8(grammar.Pink), uint8(grammar.Blue),
	}}
	m := NewFrameMessage(f, a, grammar.Stats{Rewrites: 2}, "kw=kk")
	if m.Type != "frame" || m.Tick != 3 || m.Rewrites != 2 || m.LastRule != "kw=kk" {
		t.Fatalf("message = %+v", m)
	}
	if !slices.Equal(m.Rows, []string{"kwg", "rpb"}) {
		t.Fatalf("rows = %q", m.Rows)
	}

	h := Hello(m, a)
	if h.Type != "hello" || h.Palette["k"] != "#000000" || h.Palette["w"] != "#ffffff" {
		t.Fatalf("hello palette = %v", h.Palette)
	}
	if m.Palette != nil {
		t.Fatal("Hello must not modify the frame message")
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return m
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", h.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	if err := hub.SetHello(Message{Type: "hello", Width: 1, Height: 1, Rows: []string{"k"}}); err != nil {
		t.Fatalf("SetHello: %v", err)
	}
	first := dial(t, srv)
	second := dial(t, srv)
	if m := readMessage(t, first); m.Type != "hello" {
		t.Fatalf("first message = %+v", m)
	}
	readMessage(t, second)
	waitClients(t, hub, 2)

	if err := hub.Publish(context.Background(), Message{Type: "frame", Tick: 7}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	for _, c := range []*websocket.Conn{first, second} {
		if m := readMessage(t, c); m.Type != "frame" || m.Tick != 7 {
			t.Fatalf("broadcast = %+v", m)
		}
	}

	first.Close()
	waitClients(t, hub, 1)
}

func TestPublishAfterClose(t *testing.T) {
	hub := NewHub(nil)
	hub.Close()
	hub.Close()
	if err := hub.Publish(context.Background(), Message{}); err != ErrClosed {
		t.Fatalf("Publish after close = %v, want ErrClosed", err)
	}
}

func TestPumpStreamsToConvergence(t *testing.T) {
	rs, err := rules.Parse(strings.NewReader("kw=kk\n"))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	cfg := config.Default()
	cfg.Width = 6
	cfg.Height = 4
	sim, err := rewrite.NewWithRules(cfg, grammar.DefaultAlphabet(), rs, nil)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}

	hub := NewHub(nil)
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Pump(ctx, sim, hub, PumpConfig{TPS: 2000, Interval: 5 * time.Millisecond, Restart: 10 * time.Millisecond})
	}()

	conn := dial(t, srv)
	for {
		m := readMessage(t, conn)
		if len(m.Rows) != 4 || len(m.Rows[0]) != 6 {
			t.Fatalf("frame shape = %q", m.Rows)
		}
		if m.Converged {
			all := strings.Join(m.Rows, "")
			if strings.Contains(all, "k") && strings.Contains(all, "w") {
				t.Fatalf("converged frame still mixes k and w: %q", m.Rows)
			}
			break
		}
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Pump returned %v", err)
	}
}
