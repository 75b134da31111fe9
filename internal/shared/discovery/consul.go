// Package discovery registers the service in Consul with a TTL health check.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	consul "github.com/hashicorp/consul/api"
)

type Registry struct {
	client *consul.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRegistry(addr string, ttl time.Duration) (*Registry, error) {
	cfg := consul.DefaultConfig()
	cfg.Address = addr

	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &Registry{
		client: client,
		ttl:    ttl,
		logger: slog.With("component", "discovery", "consul_address", addr),
	}, nil
}

// GenerateInstanceID returns a unique instance ID for serviceName.
func GenerateInstanceID(serviceName string) string {
	return fmt.Sprintf("%s-%s", serviceName, uuid.NewString())
}

func checkID(instanceID string) string {
	return "instance_" + instanceID
}

// Register announces instanceID of serviceName at hostPort ("host:port").
func (r *Registry) Register(ctx context.Context, instanceID, serviceName, hostPort string) error {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return fmt.Errorf("invalid service address %q: %w", hostPort, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid service port %q: %w", portStr, err)
	}

	registration := &consul.AgentServiceRegistration{
		ID:      instanceID,
		Name:    serviceName,
		Address: host,
		Port:    port,
		Check: &consul.AgentServiceCheck{
			CheckID:                        checkID(instanceID),
			TTL:                            r.ttl.String(),
			DeregisterCriticalServiceAfter: (10 * r.ttl).String(),
		},
	}

	opts := consul.ServiceRegisterOpts{}.WithContext(ctx)
	if err := r.client.Agent().ServiceRegisterOpts(registration, opts); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	r.logger.Info("Service registered", "instance_id", instanceID, "service", serviceName, "address", hostPort)
	return nil
}

func (r *Registry) Deregister(ctx context.Context, instanceID string) error {
	opts := (&consul.QueryOptions{}).WithContext(ctx)
	if err := r.client.Agent().ServiceDeregisterOpts(instanceID, opts); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	r.logger.Info("Service deregistered", "instance_id", instanceID)
	return nil
}

// ReportHealthyState passes the TTL check of instanceID.
func (r *Registry) ReportHealthyState(instanceID string) error {
	return r.client.Agent().UpdateTTL(checkID(instanceID), "online", consul.HealthPassing)
}

// KeepAlive reports a healthy state every half TTL until ctx is done.
func (r *Registry) KeepAlive(ctx context.Context, instanceID string) {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for {
		if err := r.ReportHealthyState(instanceID); err != nil {
			r.logger.Warn("Failed to report healthy state", "instance_id", instanceID, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
