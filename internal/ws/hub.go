// Package ws broadcasts line change events to websocket subscribers.
package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Messages queued per subscriber before it is considered too slow.
	sendBuffer = 64
)

// Hub maintains the set of connected subscribers and fans events out to
// them. A subscriber sees only events broadcast after it connected.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	onCount  func(int)

	// mu also serializes onCount calls so the last reported count is
	// always the current one.
	mu      sync.Mutex
	clients map[*client]struct{}
	lines   []int
	closed  bool
}

// client is a middleman between one websocket connection and the hub.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Option configures a Hub.
type Option func(*Hub)

// WithSubscriberHook sets a function called with the subscriber count
// whenever a subscriber joins or leaves. It runs with the hub locked and
// must not call back into the hub.
func WithSubscriberHook(fn func(n int)) Option {
	return func(h *Hub) {
		h.onCount = fn
	}
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		logger: logger.With("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The status page may be served from another host name.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		onCount: func(int) {},
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register records the monitored lines.
func (h *Hub) Register(lines []int) {
	h.mu.Lock()
	h.lines = append([]int(nil), lines...)
	h.mu.Unlock()
}

// Lines returns the monitored lines passed to Register.
func (h *Hub) Lines() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.lines...)
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues the event payload on every subscriber without
// blocking. Subscribers whose queue is full are disconnected.
func (h *Hub) Broadcast(event logic.ChangeEvent) {
	payload, err := logic.FormatPayload(event)
	if err != nil {
		h.logger.Error("format event payload", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("websocket client too slow, disconnecting", "client", c.id)
			h.removeLocked(c)
			dropped++
		}
	}
	if dropped > 0 {
		h.onCount(len(h.clients))
	}
}

// ServeHTTP upgrades the request to a websocket subscription. After Close
// it answers 503.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.isClosed() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.New(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.onCount(n)
	h.mu.Unlock()

	h.logger.Info("websocket client connected", "client", c.id, "remote", r.RemoteAddr, "subscribers", n)

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.onCount(0)
}

func (h *Hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		h.removeLocked(c)
		h.onCount(len(h.clients))
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("websocket client disconnected", "client", c.id, "subscribers", n)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards inbound messages; reading is required to process
// pong and close frames.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket client closed unexpectedly", "client", c.id, "error", err)
			}
			return
		}
	}
}

// writePump sends queued payloads, one text message each, and pings.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
