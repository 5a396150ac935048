package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	domain "signage-user-service/internal/domain/user"
	apperrors "signage-user-service/pkg/errors"
	"signage-user-service/pkg/logger"
)

// CallerResolver turns a bearer token into the user it belongs to.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*domain.User, error)
}

type callerKey struct{}

// ContextWithCaller stores the authenticated caller in ctx.
func ContextWithCaller(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, callerKey{}, u)
}

// CallerFromContext returns the authenticated caller, or nil.
func CallerFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(callerKey{}).(*domain.User)
	return u
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthInterceptor authenticates every call except the listed public methods.
func AuthInterceptor(resolver CallerResolver, publicMethods ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]struct{}, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		token := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				token = BearerToken(values[0])
			}
		}

		caller, err := resolver.ResolveCaller(ctx, token)
		if err != nil {
			return nil, apperrors.As(err).GRPCStatus().Err()
		}

		ctx = ContextWithCaller(ctx, caller)
		ctx = logger.ContextWithUser(ctx, caller.Name)
		return handler(ctx, req)
	}
}
