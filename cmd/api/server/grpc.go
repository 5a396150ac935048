package server

import (
	"go.uber.org/zap"
	grpc "google.golang.org/grpc"

	grpcadapter "signage-user-service/internal/adapter/grpc"
	"signage-user-service/internal/adapter/grpc/middleware"
	"signage-user-service/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(
	service *grpcadapter.UserServiceServer,
	resolver middleware.CallerResolver,
	rateLimiter *middleware.RateLimiter,
	l *zap.Logger,
) *grpc.Server {
	// Request ID first so every later log line carries it
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.AccessLogInterceptor(l),
			rateLimiter.UnaryInterceptor(),
			middleware.AuthInterceptor(resolver, grpcadapter.MethodLogin),
		),
	)
	grpcadapter.RegisterUserService(grpcServer, service)

	return grpcServer
}
