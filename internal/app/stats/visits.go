// Package stats keeps the service's ancillary counters. None of them have
// any bearing on signaling correctness.
package stats

import (
	"context"
	"errors"
	"sync"
)

var ErrEmptySession = errors.New("empty session id")

// VisitCounter counts distinct visits keyed by a client-supplied session token.
type VisitCounter interface {
	// Track records sessionID and returns the total number of distinct visitors.
	Track(ctx context.Context, sessionID string) (int64, error)
	Total(ctx context.Context) (int64, error)
}

// MemoryVisits is an in-process VisitCounter.
type MemoryVisits struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryVisits() *MemoryVisits {
	return &MemoryVisits{seen: make(map[string]struct{})}
}

func (m *MemoryVisits) Track(_ context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrEmptySession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[sessionID] = struct{}{}
	return int64(len(m.seen)), nil
}

func (m *MemoryVisits) Total(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.seen)), nil
}
