// Package health serves the standard gRPC health protocol beside each HTTP
// listener so orchestration probes stay uniform across services.
package health

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	healthserver "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Serve blocks until the context is cancelled, then stops gracefully.
func Serve(ctx context.Context, addr, service string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen health %s: %w", addr, err)
	}

	server := grpc.NewServer()
	hs := healthserver.NewServer()
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		server.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
