// Package grpc serves the fitmacro.v1.Reports service and the standard
// grpc.health.v1 health service.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/fitmacro/internal/logging"
	pb "github.com/dmitrijs2005/fitmacro/internal/proto"
	"github.com/dmitrijs2005/fitmacro/internal/server/charts"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
)

type Users interface {
	Register(ctx context.Context, userName, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(accessToken string) (string, error)
}

type Aggregator interface {
	DailyTotal(ctx context.Context, userID string, day time.Time) (*models.DailyTotal, error)
}

type Goals interface {
	Compare(ctx context.Context, userID string, day time.Time) (*models.Comparison, error)
}

type Dashboards interface {
	Dashboard(ctx context.Context, userID string, today time.Time, days int) (*charts.Dashboard, error)
}

type GRPCServer struct {
	address    string
	logger     logging.Logger
	users      Users
	aggregator Aggregator
	goals      Goals
	dashboards Dashboards
	health     *health.Server
	now        func() time.Time
}

func NewGRPCServer(a string, l logging.Logger, us Users, agg Aggregator, gs Goals, ds Dashboards) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		users:      us,
		aggregator: agg,
		goals:      gs,
		dashboards: ds,
		health:     health.NewServer(),
		now:        time.Now,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	pb.RegisterReportsServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)

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
