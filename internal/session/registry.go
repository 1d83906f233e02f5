// Package session issues and expires opaque bearer tokens granting vault
// access for an authenticated username. Tokens carry an absolute expiry and
// live only in process memory.
package session

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// DefaultTTL is the absolute session lifetime. Activity does not refresh it.
const DefaultTTL = 3600 * time.Second

// tokenBytes is the entropy of a session token before encoding (256 bits).
const tokenBytes = 32

type record struct {
	username  string
	createdAt time.Time
}

// Registry is safe for concurrent use. Multiple live sessions may map to
// the same username.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]record
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry constructs a registry. A non-positive ttl falls back to DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]record),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a URL-safe random token for username.
func (r *Registry) Create(username string) (string, error) {
	id, err := common.MakeRandURLSafeString(tokenBytes)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = record{username: username, createdAt: r.now()}
	return id, nil
}

// Validate reports whether id refers to a live session. Expired entries are
// deleted as a side effect.
func (r *Registry) Validate(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.lookup(id)
	return ok
}

// UsernameOf returns the username owning a live session.
func (r *Registry) UsernameOf(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.lookup(id)
	if !ok {
		return "", false
	}
	return rec.username, true
}

// End removes a session immediately regardless of elapsed time. Ending an
// unknown session is a no-op.
func (r *Registry) End(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// lookup resolves id, lazily deleting it when expired. Caller holds the lock.
func (r *Registry) lookup(id string) (record, bool) {
	rec, ok := r.sessions[id]
	if !ok {
		return record{}, false
	}
	if r.now().Sub(rec.createdAt) > r.ttl {
		delete(r.sessions, id)
		return record{}, false
	}
	return rec, true
}
