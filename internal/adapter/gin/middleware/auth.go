package middleware

import (
	"github.com/gin-gonic/gin"

	grpcmiddleware "signage-user-service/internal/adapter/grpc/middleware"
	domain "signage-user-service/internal/domain/user"
	"signage-user-service/pkg/logger"
)

// CallerKey is the gin context key holding the authenticated user.
const CallerKey = "caller"

// Authenticate resolves the bearer token into the calling user and
// rejects the request when that fails.
func Authenticate(resolver grpcmiddleware.CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := grpcmiddleware.BearerToken(c.GetHeader("Authorization"))

		caller, err := resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(CallerKey, caller)
		c.Request = c.Request.WithContext(logger.ContextWithUser(c.Request.Context(), caller.Name))
		c.Next()
	}
}

// Caller returns the user set by Authenticate, or nil.
func Caller(c *gin.Context) *domain.User {
	v, ok := c.Get(CallerKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
