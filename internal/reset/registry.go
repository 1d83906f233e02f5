// Package reset issues and expires one-time password-reset tokens. A token
// grants permission to replace one identity's credential until it expires or
// is consumed, whichever comes first. State is in-memory only.
package reset

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// DefaultTTL is the absolute reset-token lifetime.
const DefaultTTL = 30 * time.Minute

// tokenBytes is the entropy of a reset token before encoding.
const tokenBytes = 32

type record struct {
	username  string
	expiresAt time.Time
}

// Registry is safe for concurrent use. The registry is identity-agnostic:
// the caller verifies that the username exists before issuing.
type Registry struct {
	mu     sync.Mutex
	tokens map[string]record
	ttl    time.Duration
	now    func() time.Time
}

// NewRegistry constructs a registry. A non-positive ttl falls back to DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		tokens: make(map[string]record),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a random token for username with an absolute expiry.
func (r *Registry) Issue(username string) (string, error) {
	token, err := common.MakeRandURLSafeString(tokenBytes)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = record{username: username, expiresAt: r.now().Add(r.ttl)}
	return token, nil
}

// Validate resolves token to its owning username. Unknown tokens fail with
// common.ErrInvalidToken; expired ones are deleted on touch and fail with
// common.ErrTokenExpired. Validation alone does not consume the token.
func (r *Registry) Validate(token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tokens[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	if !r.now().Before(rec.expiresAt) {
		delete(r.tokens, token)
		return "", common.ErrTokenExpired
	}
	return rec.username, nil
}

// Consume removes a token after a successful password update, making it
// single-use. Consuming an unknown token is a no-op.
func (r *Registry) Consume(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
}
