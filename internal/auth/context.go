// Package auth carries the authenticated principal through request contexts.
package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// Principal is the caller a command runs on behalf of.
type Principal struct {
	UserID     string
	MerchantID string
	Role       string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserID prefers the verified principal and falls back to the x-user-id metadata header.
func UserID(ctx context.Context) string {
	if p, ok := FromContext(ctx); ok {
		return p.UserID
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if val := md.Get("x-user-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
