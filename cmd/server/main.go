package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"galaxy-server/internal/events"
	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/middleware"
	"galaxy-server/internal/server"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/discovery"
	"galaxy-server/internal/shared/logger"
	"galaxy-server/internal/shared/redis"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")
	log.Info("Starting galaxy server", "environment", cfg.Server.Environment, "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, cfg.Database.MigrationsDir()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb, err := redis.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	hub := events.NewHub(cfg.Frontend.URL)
	defer hub.Close()

	var cache galaxy.Cache
	publisher := events.Multi{hub}
	if rdb != nil {
		cache = galaxy.NewRedisCache(rdb.Client)
		publisher = append(publisher, events.NewRedisPublisher(rdb.Client, cfg.Redis.Channel))
	} else {
		cache = galaxy.NewMemoryCache(64, cfg.Galaxy.CacheTTL)
	}

	galaxyService := galaxy.NewService(
		galaxy.NewRepository(db),
		cache,
		publisher,
		cfg.Galaxy,
		slog.With("service", "galaxy"),
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	routes := server.NewRoutes(db, rdb, galaxyService, hub, rateLimiter, cfg.Auth, slog.Default())
	cors := middleware.NewCORS(cfg.Frontend)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      cors.Middleware(routes.Setup()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Discovery.Enabled {
		deregister, err := register(ctx, cfg)
		if err != nil {
			return err
		}
		defer deregister()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Websocket connections are hijacked and not tracked by Shutdown
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// register announces this instance in Consul and keeps its TTL check
// passing until ctx is done. The returned func deregisters it.
func register(ctx context.Context, cfg *config.Config) (func(), error) {
	log := slog.With("component", "main", "operation", "register")

	registry, err := discovery.NewRegistry(cfg.Discovery.ConsulAddress, cfg.Discovery.CheckTTL)
	if err != nil {
		return nil, err
	}

	address := cfg.Discovery.ServiceAddress
	if address == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve hostname: %w", err)
		}
		address = host
	}

	instanceID := discovery.GenerateInstanceID(cfg.Discovery.ServiceName)
	hostPort := net.JoinHostPort(address, cfg.Server.Port)
	if err := registry.Register(ctx, instanceID, cfg.Discovery.ServiceName, hostPort); err != nil {
		return nil, err
	}

	go registry.KeepAlive(ctx, instanceID)

	return func() {
		deregisterCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := registry.Deregister(deregisterCtx, instanceID); err != nil {
			log.Warn("Failed to deregister service", "instance_id", instanceID, "error", err)
		}
	}, nil
}
