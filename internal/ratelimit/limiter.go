package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Policy is the number of requests a client may make within a rolling window.
type Policy struct {
	Requests int
	Window   time.Duration
}

// DefaultPolicy allows 5 requests per minute.
func DefaultPolicy() Policy {
	return Policy{Requests: 5, Window: time.Minute}
}

func (p Policy) String() string {
	return fmt.Sprintf("%d per %s", p.Requests, p.Window)
}

// RateLimitError is returned when a client exceeds its quota.
type RateLimitError struct {
	ClientID string
	Policy   Policy
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s", e.Policy)
}

// Limiter enforces a sliding window quota per client identity.
// It is safe for concurrent use.
type Limiter struct {
	policy  Policy
	now     func() time.Time
	mu      sync.Mutex
	windows *cache.Cache
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter for policy.
// A client's window is evicted after it has been idle for a full window,
// at which point it holds no hits anyway.
func New(policy Policy, opts ...Option) *Limiter {
	l := &Limiter{
		policy:  policy,
		now:     time.Now,
		windows: cache.New(policy.Window, 2*policy.Window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the enforced policy.
func (l *Limiter) Policy() Policy {
	return l.policy
}

// Allow reports whether clientID may make a request now and, if so, counts it.
func (l *Limiter) Allow(clientID string) bool {
	now := l.now()
	return l.windowFor(clientID).allow(now, l.policy)
}

// Check is Allow returning a *RateLimitError on rejection.
func (l *Limiter) Check(clientID string) error {
	if l.Allow(clientID) {
		return nil
	}
	return &RateLimitError{ClientID: clientID, Policy: l.policy}
}

// windowFor returns the client's window, creating it if needed, and
// refreshes its expiry.
func (l *Limiter) windowFor(clientID string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()

	var w *window
	if v, ok := l.windows.Get(clientID); ok {
		w = v.(*window)
	} else {
		w = &window{}
	}
	l.windows.Set(clientID, w, cache.DefaultExpiration)
	return w
}

// window holds the times of a client's accepted requests, oldest first.
type window struct {
	mu   sync.Mutex
	hits []time.Time
}

func (w *window) allow(now time.Time, p Policy) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-p.Window)
	i := 0
	for i < len(w.hits) && !w.hits[i].After(cutoff) {
		i++
	}
	w.hits = w.hits[i:]

	if len(w.hits) >= p.Requests {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}
