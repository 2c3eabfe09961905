package grpchealth

import (
	"context"
	"errors"
	"net"

	"customer-feedback-hub/backend/pkg/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the gRPC health service name reported alongside the
// overall ("") status
const ServiceName = "feedbackhub.FeedbackHub"

// Server exposes the standard gRPC health protocol for orchestrators that
// check over gRPC instead of HTTP
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    *logger.Logger
}

// New creates a server reporting NOT_SERVING until SetServing is called
func New(log *logger.Logger) *Server {
	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		log:    log.WithComponent("grpc-health"),
	}

	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.SetServing(false)

	return s
}

// SetServing updates the status of both the overall and the named service
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve accepts connections on lis until ctx is cancelled
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	s.log.Info("gRPC health server listening", "addr", lis.Addr().String())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// ListenAndServe listens on :port and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}
