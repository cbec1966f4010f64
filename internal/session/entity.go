package session

import (
	"context"
	"time"
)

// Claims describes the authenticated operator attached to a request.
type Claims struct {
	SessionID string
	UserID    string
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// Subject is the user a session is issued for.
type Subject struct {
	ID    string
	Email string
	Name  string
	Role  string
}

type ctxKey struct{}

// WithClaims returns a context carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the session claims, or nil when the request is anonymous.
func FromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKey{}).(*Claims)
	return c
}
