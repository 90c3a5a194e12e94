package session

import (
	"context"
	"time"
)

// Session is an authenticated interactive login. Besides the identity
// pointers it keeps the raw provider attribute bag and the granted-authority
// tags captured at OAuth callback time, so the identity resolver can rebuild
// the session principal on every request.
type Session struct {
	SessionID   string         `json:"session_id"`
	UserID      string         `json:"user_id"`
	Attributes  map[string]any `json:"attributes"`
	Authorities []string       `json:"authorities"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"` // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
