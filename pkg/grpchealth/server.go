package grpchealth

import (
	"context"
	"errors"
	"net"

	"pingup/backend/pkg/health"
	"pingup/backend/pkg/logger"

	"google.golang.org/grpc"
	ghealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the grpc health service name reported for the API
const ServiceName = "pingup.api"

// Server exposes the checker's overall status over the standard grpc
// health protocol.
type Server struct {
	grpc   *grpc.Server
	health *ghealth.Server
	log    *logger.Logger
}

func New(checker *health.Checker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetGlobal()
	}
	s := &Server{
		grpc:   grpc.NewServer(),
		health: ghealth.NewServer(),
		log:    log,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)

	s.set(checker.Report().Status)
	checker.OnChange(s.set)
	return s
}

func (s *Server) set(status health.Status) {
	serving := healthpb.HealthCheckResponse_SERVING
	if status == health.StatusDown {
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", serving)
	s.health.SetServingStatus(ServiceName, serving)
}

// Serve blocks until the listener fails or Stop is called
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server listening", "addr", lis.Addr().String())
	err := s.grpc.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Stop marks every service as not serving and drains in-flight calls
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
}
