// Package eventfeed streams executed swap events to WebSocket subscribers.
package eventfeed

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// Config holds event feed hub configuration.
type Config struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
	Logger       *zap.Logger
}

// Hub fans out swap events to connected WebSocket clients. It implements
// the auction event sink so pairs can publish directly into it.
type Hub struct {
	config   Config
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  atomic.Bool
}

// client's send channel is never closed; broadcasts may race with
// teardown, and a send on a closed channel would panic inside the swap
// path. The done channel ends both loops instead.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// New creates a new event feed hub.
func New(cfg Config) *Hub {
	return &Hub{
		config: cfg,
		logger: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and registers
// the client for swap event delivery.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "feed closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade-failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	FeedClientsGauge.Set(float64(total))
	h.logger.Info("feed-client-connected",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Int("total-clients", total))

	go h.writeLoop(c)
	go h.readLoop(c)
}

// SwapExecuted broadcasts a swap event to every connected client. Clients
// whose send buffer is full are disconnected rather than allowed to stall
// the auction path.
func (h *Hub) SwapExecuted(event *types.SwapEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("event-marshal-failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case <-c.done:
			// Torn down since the snapshot; nothing to deliver.
		case c.send <- payload:
			EventsBroadcastTotal.Inc()
		default:
			h.logger.Warn("feed-client-too-slow",
				zap.String("remote", c.conn.RemoteAddr().String()))
			ClientsDroppedTotal.Inc()
			h.remove(c)
		}
	}
}

// writeLoop delivers buffered events and periodic pings to one client.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			deadline := time.Now().Add(h.config.WriteTimeout)
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, deadline)
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			err := c.conn.WriteMessage(websocket.TextMessage, payload)
			if err != nil {
				h.logger.Debug("feed-write-error", zap.Error(err))
				h.remove(c)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.config.WriteTimeout)
			err := c.conn.WriteControl(websocket.PingMessage, []byte{}, deadline)
			if err != nil {
				h.logger.Debug("feed-ping-error", zap.Error(err))
				h.remove(c)
				return
			}
		}
	}
}

// readLoop drains inbound frames so pong handlers fire and closes are seen.
func (h *Hub) readLoop(c *client) {
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.config.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.config.PingInterval))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			h.remove(c)
			return
		}
	}
}

// remove unregisters a client and tears down its connection.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	if present {
		delete(h.clients, c)
		close(c.done)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !present {
		return
	}

	c.conn.Close()
	FeedClientsGauge.Set(float64(total))
	h.logger.Info("feed-client-disconnected", zap.Int("total-clients", total))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients and stops accepting new ones.
func (h *Hub) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}

	h.logger.Info("closing-event-feed")

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}

	return nil
}
