package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"radruga/pkg/logger"
	"radruga/pkg/models"
)

// MissionsService is the service name health checks ask for. It reports SERVING once
// the rating cache is warm.
const MissionsService = "radruga.v1.Missions"

// Server is the internal gRPC endpoint: health checks and reflection
type Server struct {
	server *grpc.Server
	addr   string
	health *health.Server
	stop   chan struct{}
}

// NewServer creates the gRPC server. Every service starts NOT_SERVING until
// SetServing is called.
func NewServer(addr string) *Server {
	grpcLogger := logrus.NewEntry(logger.Logrus()).WithField("protocol", "grpc")

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(MissionsService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	recovery := grpc_recovery.WithRecoveryHandler(recoverPanic)
	server := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_logging.UnaryServerInterceptor(grpcLogger),
			grpc_recovery.UnaryServerInterceptor(recovery),
		)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
			grpc_logging.StreamServerInterceptor(grpcLogger),
			grpc_recovery.StreamServerInterceptor(recovery),
		)),
	)

	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return &Server{
		server: server,
		addr:   addr,
		health: healthServer,
		stop:   make(chan struct{}),
	}
}

// SetServing flips the overall and missions health status
func (s *Server) SetServing(serving bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(MissionsService, st)
}

// Start begins listening for gRPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	go func() {
		if err := s.Serve(listener); err != nil {
			logger.Errorf("gRPC server stopped: %v", err)
		}
	}()
	return nil
}

// Serve blocks serving on lis
func (s *Server) Serve(lis net.Listener) error {
	logger.Infof("gRPC server listening on %s", lis.Addr())
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	select {
	case <-s.stop:
		return
	default:
	}
	logger.Info("gRPC server stopping")
	s.health.Shutdown()
	s.server.GracefulStop()
	close(s.stop)
}

// WaitForShutdown blocks until ctx is done or the server is stopped
func (s *Server) WaitForShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.Stop()
	case <-s.stop:
	}
}

func recoverPanic(p interface{}) error {
	if defect, ok := p.(*models.CatalogDefect); ok {
		logger.WithFields(map[string]interface{}{
			"entity": defect.Entity,
			"id":     defect.ID,
		}).Error(defect.Error())
		return status.Error(codes.Internal, models.ErrCodeCatalogDefect)
	}
	logger.Errorf("gRPC panic recovered: %v", p)
	return status.Error(codes.Internal, "internal error")
}
