package server

import (
	"log/slog"
	"net/http"

	"galaxy-server/internal/events"
	"galaxy-server/internal/galaxy"
	galaxyHandlers "galaxy-server/internal/galaxy/handlers"
	"galaxy-server/internal/middleware"
	serverHandlers "galaxy-server/internal/server/handlers"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/redis"
)

type Routes struct {
	db            *database.DB
	redis         *redis.Client
	galaxyService *galaxy.Service
	hub           *events.Hub
	rateLimiter   *middleware.RateLimiter
	auth          config.AuthConfig
	logger        *slog.Logger
}

func NewRoutes(db *database.DB, rdb *redis.Client, galaxyService *galaxy.Service, hub *events.Hub, rateLimiter *middleware.RateLimiter, auth config.AuthConfig, logger *slog.Logger) *Routes {
	return &Routes{
		db:            db,
		redis:         rdb,
		galaxyService: galaxyService,
		hub:           hub,
		rateLimiter:   rateLimiter,
		auth:          auth,
		logger:        logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.redis, r.hub)
	galaxyHandler := galaxyHandlers.NewGalaxyHandler(r.galaxyService)

	// Public endpoints
	mux.Handle("GET /api/server/health", healthHandler)
	mux.Handle("POST /api/galaxies/preview", r.rateLimiter.Middleware(http.HandlerFunc(galaxyHandler.Preview)))
	mux.HandleFunc("GET /api/galaxies", galaxyHandler.List)
	mux.HandleFunc("GET /api/galaxies/{id}", galaxyHandler.Get)
	mux.HandleFunc("GET /api/galaxies/{id}/bodies", galaxyHandler.Bodies)
	mux.HandleFunc("GET /api/galaxies/{id}/diagnostics", galaxyHandler.Diagnostics)
	mux.Handle("GET /api/events", r.hub)

	// Admin-only endpoints
	mux.Handle("POST /api/galaxies", r.admin(http.HandlerFunc(galaxyHandler.Create)))
	mux.Handle("DELETE /api/galaxies/{id}", r.admin(http.HandlerFunc(galaxyHandler.Delete)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/galaxies/preview", "/api/galaxies", "/api/galaxies/{id}", "/api/galaxies/{id}/bodies", "/api/galaxies/{id}/diagnostics"},
		"admin_endpoints", []string{"POST /api/galaxies", "DELETE /api/galaxies/{id}"},
		"websocket_endpoints", []string{"/api/events"},
		"auth_enabled", r.auth.Enabled,
	)

	return mux
}

func (r *Routes) admin(next http.Handler) http.Handler {
	if !r.auth.Enabled {
		r.logger.Warn("Authentication disabled, admin endpoints are public")
		return next
	}
	return middleware.RequireAdmin(r.auth.JWTSecret, next)
}
