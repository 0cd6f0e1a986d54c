// Package stream pushes grid frames to websocket clients. The sim stays on
// the goroutine that ticks it; the hub only ever sees encoded copies.
package stream

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"grammar-ca/internal/logging"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("hub closed")

const writeWait = 10 * time.Second

// Hub fans encoded messages out to every connected client.
type Hub struct {
	log        logging.Logger
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup

	helloMu sync.RWMutex
	hello   []byte
}

// NewHub starts the broadcaster goroutine.
func NewHub(log logging.Logger) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	h := &Hub{
		log:        log,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	h.wg.Add(1)
	go h.run()
	return h
}

// Clients returns the number of registered connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SetHello stores the message sent to each client right after it connects.
func (h *Hub) SetHello(m Message) error {
	data, err := m.JSON()
	if err != nil {
		return err
	}
	h.helloMu.Lock()
	h.hello = data
	h.helloMu.Unlock()
	return nil
}

// Publish queues m for every client. It fails when the queue stays full for
// a second, when ctx ends or after Close.
func (h *Hub) Publish(ctx context.Context, m Message) error {
	data, err := m.JSON()
	if err != nil {
		return err
	}
	select {
	case <-h.done:
		return ErrClosed
	default:
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return errors.New("frame queue full")
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		return
	}
	h.helloMu.RLock()
	hello := h.hello
	h.helloMu.RUnlock()
	if hello != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
			conn.Close()
			return
		}
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}
	h.log.Debugf("client %s connected", r.RemoteAddr)

	// Clients never send anything meaningful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
	h.log.Debugf("client %s disconnected", r.RemoteAddr)
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			var failed []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					failed = append(failed, conn)
					conn.Close()
				}
			}
			if len(failed) > 0 {
				h.mu.Lock()
				for _, conn := range failed {
					delete(h.clients, conn)
				}
				h.mu.Unlock()
				h.log.Debugf("dropped %d clients", len(failed))
			}
		}
	}
}

// Close disconnects every client and stops the broadcaster. It is safe to
// call more than once.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
	return nil
}
