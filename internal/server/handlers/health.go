package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/redis"
	"galaxy-server/internal/shared/response"
)

const pingTimeout = 2 * time.Second

type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	Database         string `json:"database"`
	Redis            string `json:"redis"`
	EventSubscribers int    `json:"event_subscribers"`
}

// SubscriberCounter reports how many clients are listening for events.
type SubscriberCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	db          *database.DB
	redis       *redis.Client
	subscribers SubscriberCounter
}

func NewHealthHandler(db *database.DB, rdb *redis.Client, subscribers SubscriberCounter) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, subscribers: subscribers}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  "disconnected",
		Redis:     "disabled",
	}

	if err := h.db.PingContext(ctx); err == nil {
		resp.Database = "connected"
	} else {
		logger.Warn("Database ping failed", "error", err)
		resp.Status = "degraded"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err == nil {
			resp.Redis = "connected"
		} else {
			logger.Warn("Redis ping failed", "error", err)
			resp.Redis = "disconnected"
			resp.Status = "degraded"
		}
	}

	if h.subscribers != nil {
		resp.EventSubscribers = h.subscribers.ClientCount()
	}

	response.Success(w, http.StatusOK, resp)
}
