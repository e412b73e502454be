// Package grpc runs the admin gRPC server. It exposes the standard health
// service so orchestrators can probe readiness.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/projecthub/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("")
// status.
const ServiceName = "projecthub"

type GRPCServer struct {
	address string
	health  *health.Server
	logger  logging.Logger
}

// NewGRPCServer builds the admin server. It reports NOT_SERVING until
// SetServing(true) is called.
func NewGRPCServer(a string, l logging.Logger) *GRPCServer {
	s := &GRPCServer{
		address: a,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
	s.SetServing(false)
	return s
}

// SetServing flips the reported health of the whole server.
func (s *GRPCServer) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Pinger is the dependency readiness is derived from.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Watch pings p every interval and reports SERVING only while the ping
// succeeds, the same rule /readyz applies. It returns when ctx is done.
func (s *GRPCServer) Watch(ctx context.Context, p Pinger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ready := s.checkReady(ctx, p, interval)
	s.SetServing(ready)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok := s.checkReady(ctx, p, interval)
			if ok != ready {
				s.logger.Info(ctx, "readiness changed", "serving", ok)
			}
			ready = ok
			s.SetServing(ready)
		}
	}
}

func (s *GRPCServer) checkReady(ctx context.Context, p Pinger, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "readiness check failed", "error", err)
		return false
	}
	return true
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
