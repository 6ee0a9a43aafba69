package utils

import (
	"context"

	"github.com/EmpoweredVote/barangay-admin/internal/session"
)

type contextKey string

const (
	ContextIdentityKey contextKey = "identity"
	ContextTokenKey    contextKey = "sessionToken"
)

func WithIdentity(ctx context.Context, token string, id session.Identity) context.Context {
	ctx = context.WithValue(ctx, ContextIdentityKey, id)
	return context.WithValue(ctx, ContextTokenKey, token)
}

func GetIdentityFromContext(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(ContextIdentityKey).(session.Identity)
	return id, ok
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(ContextTokenKey).(string)
	return tok, ok
}
