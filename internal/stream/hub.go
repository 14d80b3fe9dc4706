package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/edibez/cryptodash/internal/logger"
	"github.com/edibez/cryptodash/internal/metrics"
	"github.com/edibez/cryptodash/internal/watchlist"
)

const (
	// DefaultInterval between snapshot pushes
	DefaultInterval = 10 * time.Second

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 8
)

// Source lists the coins included in a snapshot
type Source interface {
	List(ctx context.Context, skip, limit int) ([]watchlist.Item, error)
}

// Message is pushed to every connected client
type Message struct {
	Type  string           `json:"type"`
	Coins []watchlist.Item `json:"coins"`
	TS    int64            `json:"ts"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans watchlist snapshots out to WebSocket clients
type Hub struct {
	src      Source
	interval time.Duration
	upgrader websocket.Upgrader
	logger   logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub. An empty origins list accepts any origin.
func NewHub(src Source, interval time.Duration, origins []string, log logger.Logger) *Hub {
	if interval <= 0 {
		interval = DefaultInterval
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		src:      src,
		interval: interval,
		logger:   log.With(map[string]interface{}{"component": "stream"}),
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeHTTP upgrades the request and streams snapshots until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if msg, err := h.snapshot(r.Context()); err == nil {
		c.send <- msg
	} else {
		h.logger.Warn("snapshot failed", map[string]interface{}{"error": err.Error()})
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// Run pushes a snapshot every interval until ctx is done, then disconnects all clients
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.Clients() == 0 {
				continue
			}
			msg, err := h.snapshot(ctx)
			if err != nil {
				h.logger.Warn("snapshot failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.broadcast(msg)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) snapshot(ctx context.Context) ([]byte, error) {
	coins, err := h.src.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: "snapshot", Coins: coins, TS: time.Now().Unix()})
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// slow consumer
			delete(h.clients, c)
			metrics.StreamClients.Dec()
			c.close()
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.StreamClients.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		metrics.StreamClients.Dec()
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		metrics.StreamClients.Dec()
		c.close()
	}
}

// readPump drains client frames so pongs and close frames are processed
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", map[string]interface{}{"error": err.Error()})
			}
			return
		}
	}
}

// writePump sends queued messages and keepalive pings
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
