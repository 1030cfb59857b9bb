// Package session stores per-visitor server-side state keyed by an opaque session id.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found or expired")

// Session identifies one signed-in visitor.
type Session struct {
	ID        string
	AccountID uint
	CreatedAt time.Time
}

// Store holds sessions and their key/value slots. Every successful access
// extends the session's lifetime by the store's TTL.
type Store interface {
	Create(ctx context.Context, accountID uint) (*Session, error)
	Get(ctx context.Context, sid string) (*Session, error)
	Set(ctx context.Context, sid, key, value string) error
	Value(ctx context.Context, sid, key string) (string, bool, error)
	Delete(ctx context.Context, sid, key string) error
	Destroy(ctx context.Context, sid string) error
}
