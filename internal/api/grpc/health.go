package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"karhubty-backend/internal/api/grpc/interceptor"
	"karhubty-backend/internal/logger"
)

// ServiceName is the health service key reported alongside the overall status.
const ServiceName = "karhubty.api"

const defaultProbeInterval = 15 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer reports SERVING while the database answers pings.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	db       Pinger
	interval time.Duration
}

func NewHealthServer(db Pinger) *HealthServer {
	hs := health.NewServer()
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Logging()))
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &HealthServer{
		server:   s,
		health:   hs,
		db:       db,
		interval: defaultProbeInterval,
	}
}

// Server exposes the underlying grpc server for Serve and GracefulStop.
func (h *HealthServer) Server() *grpc.Server {
	return h.server
}

// Probe pings the database once and publishes the result.
func (h *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		logger.Warn("Database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	return status
}

// Run probes until ctx is cancelled, then marks everything NOT_SERVING.
func (h *HealthServer) Run(ctx context.Context) {
	h.Probe(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
