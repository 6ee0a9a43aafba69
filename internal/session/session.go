// Package session maps opaque bearer tokens to the identity used for
// authorization decisions.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Identity is what a live session resolves to.
type Identity struct {
	UserID    int       `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store is implemented by MemoryStore and GormStore.
type Store interface {
	// Set inserts or overwrites token. A zero ExpiresAt is filled from the store's TTL.
	Set(ctx context.Context, token string, id Identity) error
	Get(ctx context.Context, token string) (Identity, error)
	Delete(ctx context.Context, token string) error
	// DeleteUser revokes every session held by userID.
	DeleteUser(ctx context.Context, userID int) error
	// Expire purges expired sessions and reports how many were removed.
	Expire(ctx context.Context) (int, error)
}

// NewToken returns 32 random bytes, URL-safe base64 without padding.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}
