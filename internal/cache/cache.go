// Package cache stores session snapshots so a cart survives process restarts.
package cache

import (
	"context"
	"errors"
	"time"

	"clubstore/internal/cart"
)

var ErrCacheMiss = errors.New("cache miss")

// SessionSnapshot is what gets persisted for a session.
type SessionSnapshot struct {
	Cart        cart.Snapshot `json:"cart"`
	UserID      string        `json:"userId,omitempty"`
	AccessToken string        `json:"accessToken,omitempty"`
	ExpiresAt   time.Time     `json:"expiresAt"`
}

type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	Set(ctx context.Context, sessionID string, snap *SessionSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}
