package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const healthPrefix = "/grpc.health.v1.Health/"

// UnaryServerInterceptor rejects calls without a valid bearer token and stores the principal.
// Health checks stay open.
func UnaryServerInterceptor(v *Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		p, err := v.Verify(bearer(ctx))
		if err != nil {
			if errors.Is(err, ErrMissingToken) {
				return nil, status.Error(codes.Unauthenticated, "authorization token is required")
			}
			return nil, status.Error(codes.Unauthenticated, "authorization token is invalid")
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

func bearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := vals[0]
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return v[7:]
	}
	return ""
}
