package quota

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryLedger holds the counters under a mutex. Used in tests and for
// local single-process runs without Postgres or Redis.
type InMemoryLedger struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{counts: make(map[string]int)}
}

func (l *InMemoryLedger) key(workspaceID int64, accountKey, action string, day time.Time) string {
	return fmt.Sprintf("%d:%s:%s:%s", workspaceID, accountKey, action, DayKey(day))
}

func (l *InMemoryLedger) CheckAndIncrement(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time, limit int) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := l.key(workspaceID, accountKey, action, day)
	current := l.counts[key]
	if current >= limit || limit <= 0 {
		return &Result{Allowed: false, Current: current, Limit: limit}, nil
	}
	current++
	l.counts[key] = current
	return &Result{Allowed: true, Current: current, Limit: limit}, nil
}

func (l *InMemoryLedger) GetUsage(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[l.key(workspaceID, accountKey, action, day)], nil
}

var _ Ledger = (*InMemoryLedger)(nil)
