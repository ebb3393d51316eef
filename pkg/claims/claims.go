// Package claims records single-use keys: request signatures that must not be
// replayed and payment transactions that may fund only one admission.
package claims

import (
	"context"
	"sync"
	"time"
)

// Store marks keys as used.
type Store interface {
	// Claim marks key as used for ttl and reports whether it was free. A zero
	// ttl keeps the claim forever.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees key again.
	Release(ctx context.Context, key string) error
}

// Memory is an in-process Store. Claims do not survive a restart.
type Memory struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{claims: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expiry, ok := m.claims[key]; ok && (expiry.IsZero() || now.Before(expiry)) {
		return false, nil
	}

	m.prune(now)
	var expiry time.Time
	if ttl > 0 {
		expiry = now.Add(ttl)
	}
	m.claims[key] = expiry
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.claims, key)
	return nil
}

func (m *Memory) prune(now time.Time) {
	for key, expiry := range m.claims {
		if !expiry.IsZero() && !now.Before(expiry) {
			delete(m.claims, key)
		}
	}
}
