// health.go: gRPC health reporting of integration activation state
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"context"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AgentHealthService is the health service name for the agent as a whole.
// Integrations are reported under their own names.
const AgentHealthService = ""

// HealthReporter mirrors activation state into a gRPC health server.
type HealthReporter struct {
	server *health.Server

	mu       sync.Mutex
	shutdown bool
}

// NewHealthReporter creates a reporter with the agent service NOT_SERVING.
func NewHealthReporter() *HealthReporter {
	srv := health.NewServer()
	srv.SetServingStatus(AgentHealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{server: srv}
}

// Server exposes the underlying health server for registration on a host
// gRPC server.
func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Report publishes statuses: patched integrations are SERVING, everything
// else NOT_SERVING. The agent service becomes SERVING.
func (h *HealthReporter) Report(statuses []ActivationStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		h.server.Resume()
		h.shutdown = false
	}
	for _, st := range statuses {
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if st.State == StatePatched {
			status = healthpb.HealthCheckResponse_SERVING
		}
		h.server.SetServingStatus(st.Name, status)
	}
	h.server.SetServingStatus(AgentHealthService, healthpb.HealthCheckResponse_SERVING)
}

// Check returns the serving status of service.
func (h *HealthReporter) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Shutdown marks every service NOT_SERVING.
func (h *HealthReporter) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.server.Shutdown()
	h.shutdown = true
}

// Serve registers the health service on a new gRPC server and serves on
// lis until ctx is done.
func (h *HealthReporter) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, h.server)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
