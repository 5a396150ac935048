package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	grpcmiddleware "signage-user-service/internal/adapter/grpc/middleware"
	apperrors "signage-user-service/pkg/errors"
)

// RateLimiter returns a Gin middleware for rate limiting using the
// token bucket shared with the gRPC server.
func RateLimiter(limiter *grpcmiddleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Enabled() {
			c.Next()
			return
		}

		// Use Token Bucket key prefix for consistency with gRPC
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, c.FullPath(), c.ClientIP())

		if !limiter.Allow(c.Request.Context(), key) {
			RespondError(c, apperrors.New(apperrors.CodeRateLimited, "Rate limit exceeded."))
			return
		}

		c.Next()
	}
}
