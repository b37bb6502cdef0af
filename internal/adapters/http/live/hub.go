// Package live pushes community stats to browsers over WebSocket.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	service "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/domain/aggregate"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

const (
	sendBuffer      = 16
	broadcastBuffer = 64
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
)

// Message is the frame sent to clients.
type Message struct {
	Type   string          `json:"type"`
	Period int             `json:"period"`
	Stats  aggregate.Stats `json:"stats"`
}

// Source supplies the snapshot a client receives on connect.
type Source interface {
	Community(ctx context.Context, p int) (service.CommunityView, error)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans community updates out to connected clients. Only Run touches the
// client set.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	clients    map[*client]struct{}
	count      atomic.Int64
	upgrader   websocket.Upgrader
	logger     logger.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithOriginCheck replaces the default same-origin check.
func WithOriginCheck(check func(r *http.Request) bool) Option {
	return func(h *Hub) {
		if check != nil {
			h.upgrader.CheckOrigin = check
		}
	}
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Get().Named("live"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves registrations and broadcasts until ctx is done. A hub runs once.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.updateCount()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn(ctx, "dropping slow live client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.UpdateLiveClients(len(h.clients))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Broadcast implements service.Broadcaster. Updates are dropped when the hub
// is saturated.
func (h *Hub) Broadcast(ctx context.Context, period int, stats aggregate.Stats) {
	data, err := encode(period, stats)
	if err != nil {
		h.logger.Error(ctx, "failed to encode live update", logger.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn(ctx, "live broadcast buffer full", logger.Int("period", period))
	}
}

func encode(period int, stats aggregate.Stats) ([]byte, error) {
	return json.Marshal(Message{Type: "community", Period: period, Stats: stats})
}
