package di

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"signage-user-service/cmd/api/infrastructure"
	"signage-user-service/internal/adapter/cache"
	"signage-user-service/internal/adapter/db/postgres"
	ginhandler "signage-user-service/internal/adapter/gin/handler"
	grpcadapter "signage-user-service/internal/adapter/grpc"
	"signage-user-service/internal/adapter/grpc/middleware"
	"signage-user-service/internal/adapter/repository/cached"
	"signage-user-service/internal/config"
	domain "signage-user-service/internal/domain/user"
	"signage-user-service/internal/usecase/user"
	"signage-user-service/pkg/auth"
	"signage-user-service/pkg/password"
	redisclient "signage-user-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserRepo    *postgres.UserRepoPG
	UserUC      *user.Service
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
	GRPCService *grpcadapter.UserServiceServer
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize database
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis client
	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Initialize cache layer
	userCache := cache.NewRedisUserCache(
		rdb.Client,
		time.Duration(cfg.Redis.CacheTTL)*time.Second,
		l,
	)

	// Initialize repository
	dbRepo := postgres.NewUserRepoPG(db, cfg.Users.MaxUsers, l)
	repo := cached.NewCachedUserRepository(dbRepo, userCache, l)

	// Initialize use case
	userUC := NewUsecase(cfg, repo, l)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(
		rdb.Client,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	c := &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		UserRepo:    dbRepo,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
	}

	// Initialize transport handlers
	if c.GinHandler, err = ginhandler.NewUserHandler(userUC, l); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create gin handler: %w", err)
	}
	if c.GRPCService, err = grpcadapter.NewUserServiceServer(userUC); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create gRPC service: %w", err)
	}

	return c, nil
}

// NewUsecase builds the user use case from configuration.
func NewUsecase(cfg *config.Config, repo user.Repository, l *zap.Logger) *user.Service {
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), cfg.Auth.Issuer)
	generator := password.NewGenerator(cfg.Users.MinEntropyBits)
	policy := domain.Policy{
		PasswordLength: cfg.Users.PasswordLength,
		HashCost:       cfg.Users.BcryptCost,
		KnownGroups:    cfg.Users.KnownGroups,
	}
	return user.New(repo, generator, tokens, policy, l)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
