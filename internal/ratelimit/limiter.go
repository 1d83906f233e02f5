// Package ratelimit tracks failed login attempts per username and enforces
// temporary lockouts. State is in-memory only; a process restart clears it.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultThreshold is the number of in-window failures that triggers a lockout.
	DefaultThreshold = 5

	// DefaultWindow is the trailing window in which failures are counted.
	DefaultWindow = 300 * time.Second

	// DefaultLockDuration is how long a lockout lasts.
	DefaultLockDuration = 300 * time.Second
)

// Limiter is safe for concurrent use.
type Limiter struct {
	mu           sync.Mutex
	attempts     map[string][]time.Time
	lockouts     map[string]time.Time
	threshold    int
	window       time.Duration
	lockDuration time.Duration
	now          func() time.Time
}

// NewLimiter constructs a limiter. Non-positive arguments fall back to the
// package defaults.
func NewLimiter(threshold int, window, lockDuration time.Duration) *Limiter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if lockDuration <= 0 {
		lockDuration = DefaultLockDuration
	}
	return &Limiter{
		attempts:     make(map[string][]time.Time),
		lockouts:     make(map[string]time.Time),
		threshold:    threshold,
		window:       window,
		lockDuration: lockDuration,
		now:          time.Now,
	}
}

// IsLocked reports whether username is currently locked out. An expired
// lockout is cleared on check together with the attempt log that caused it.
func (l *Limiter) IsLocked(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lockedAt, ok := l.lockouts[username]
	if !ok {
		return false
	}
	if l.now().Sub(lockedAt) >= l.lockDuration {
		delete(l.lockouts, username)
		delete(l.attempts, username)
		return false
	}
	return true
}

// RecordFailure appends the current timestamp to the username's attempt log.
// Callers record failures only for wrong-password outcomes, never for
// unknown usernames.
func (l *Limiter) RecordFailure(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[username] = append(l.attempts[username], l.now())
}

// CheckAndLock counts the username's failures within the trailing window
// and creates a lockout once the threshold is reached. It returns whether
// a lockout is now in place. Stale entries are pruned while counting.
func (l *Limiter) CheckAndLock(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[username][:0]
	for _, ts := range l.attempts[username] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) == 0 {
		delete(l.attempts, username)
	} else {
		l.attempts[username] = recent
	}

	if len(recent) >= l.threshold {
		l.lockouts[username] = now
		return true
	}
	return false
}
