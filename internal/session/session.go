package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
)

// InactivityTimeout is the sliding session window: any authenticated request
// extends the expiry, and exceeding it invalidates the session.
const InactivityTimeout = 30 * time.Minute

// ErrNotFound is returned for missing or expired sessions.
var ErrNotFound = errors.New("session not found or expired")

// Session is the explicit session value object. It travels through request
// context; nothing reads ambient state.
type Session struct {
	Token      string    `json:"token"`
	UserID     uint      `json:"user_id"`
	CSRFToken  string    `json:"csrf_token,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Store is the session persistence contract. Get slides the expiry window as
// a side effect, so fetching a session on an authenticated request is what
// keeps it alive.
type Store interface {
	Create(ctx context.Context, userID uint) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	EnsureCSRF(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// VerifyCSRF compares a presented CSRF token against the session's in
// constant time. A session without an issued token never matches.
func VerifyCSRF(sess *Session, presented string) bool {
	if sess == nil || sess.CSRFToken == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(presented)) == 1
}

func newToken() string {
	return uuid.New().String()
}
