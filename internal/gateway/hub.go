package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"questgen/internal/artifact"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 32
)

// Hub fans artifact state transitions out to every connected watcher. A
// client that cannot keep up with its send buffer is dropped rather than
// ever blocking the pipeline.
type Hub struct {
	log     *zap.SugaredLogger
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan artifact.Event
	once sync.Once
}

// NewHub creates an empty hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{log: log, clients: make(map[*client]struct{})}
}

// Broadcast queues one event to every client. Safe to call from the
// store's sink; never blocks.
func (h *Hub) Broadcast(ev artifact.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			// Slow consumer: drop it.
			delete(h.clients, c)
			go c.close()
			if h.log != nil {
				h.log.Warnw("watch client dropped", "reason", "send buffer full")
			}
		}
	}
}

// Close disconnects every client; later registrations are rejected.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		go c.close()
	}
}

func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan artifact.Event, clientSendSize)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		go c.close()
		return nil
	}
	h.clients[c] = struct{}{}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// serve runs the read and write pumps until the client goes away.
func (h *Hub) serve(conn *websocket.Conn) {
	c := h.register(conn)
	if c == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		defer h.unregister(c)
		for {
			select {
			case ev, ok := <-c.send:
				if !ok {
					return
				}
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteJSON(ev); err != nil {
					return
				}
			case <-ticker.C:
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Read pump on the handler goroutine: the feed is one-way, reads only
	// service pongs and detect the close.
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}
