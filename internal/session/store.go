package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrStorage  = errors.New("session storage unavailable")
)

// Store keeps the principal snapshot of every live session, keyed by an
// opaque token. Implementations must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, principal account.Principal) (string, error)
	// Get returns ErrNotFound for unknown and expired tokens.
	Get(ctx context.Context, token string) (*account.Principal, error)
	// Destroy is idempotent.
	Destroy(ctx context.Context, token string) error
	Close() error
}

// NewToken returns 32 random bytes, base64url encoded.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
