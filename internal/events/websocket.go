package events

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Hub fans events out to connected websocket clients.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*websocket.Conn]struct{}
	upgrader  websocket.Upgrader
	broadcast chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    *slog.Logger
}

func NewHub(allowedOrigin string) *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan Event, 256),
		done:      make(chan struct{}),
		logger:    slog.With("component", "event_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if allowedOrigin != "" {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		}
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// ServeHTTP upgrades the request and keeps the client subscribed until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		h.logger.Debug("Websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		conn.Close()
		return
	default:
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("Websocket client subscribed", "remote_addr", r.RemoteAddr)

	// Subscribers only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(conn)
}

func (h *Hub) Publish(ctx context.Context, event Event) error {
	select {
	case <-h.done:
		return fmt.Errorf("event hub closed")
	default:
	}

	select {
	case h.broadcast <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return fmt.Errorf("event queue full")
	}
}

// ClientCount returns the number of subscribed clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case event := <-h.broadcast:
			payload, err := event.JSON()
			if err != nil {
				h.logger.Error("Failed to encode event", "error", err, "type", event.Type)
				continue
			}
			h.send(payload)
		}
	}
}

func (h *Hub) send(payload []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("Dropping websocket client", "error", err)
			h.remove(conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// Close disconnects every client and stops the broadcaster.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		close(h.done)
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
		h.wg.Wait()
	})
	return nil
}
