package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"signage-user-service/api"
	"signage-user-service/internal/adapter/gin/handler"
	"signage-user-service/internal/adapter/gin/middleware"
	grpcmiddleware "signage-user-service/internal/adapter/grpc/middleware"
)

// SwaggerDocPath is where the OpenAPI document is served.
const SwaggerDocPath = "/openapi/user.swagger.json"

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	resolver grpcmiddleware.CallerResolver,
	rateLimiter *grpcmiddleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Clients are keyed by their socket address; forwarding headers are
	// not trusted.
	_ = router.SetTrustedProxies(nil)

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "signage-user-service",
		})
	})

	// API description and Swagger UI
	router.GET(SwaggerDocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.UserSwaggerJSON)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(SwaggerDocPath))))

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimiter(rateLimiter))
	{
		v1.POST("/auth/session", userHandler.Login)

		users := v1.Group("/users")
		users.Use(middleware.Authenticate(resolver))
		{
			users.POST("", userHandler.CreateUser)
			users.GET("/:name", userHandler.GetUser)
		}
	}

	return router
}
