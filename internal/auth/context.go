package auth

import "context"

type contextKey string

const claimsKey contextKey = "claims"

// NewContext returns a copy of ctx carrying the session claims.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext returns the session claims stored by the auth middleware, or nil.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}
