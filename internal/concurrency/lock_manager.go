package concurrency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// lockEntry is a one-slot semaphore shared by every caller of the same key.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// LockManager hands out per-key exclusive locks with a bounded wait.
// Entries are reference counted and removed once no caller holds or awaits them,
// so the table does not grow with the number of distinct keys ever seen.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*lockEntry)}
}

// Acquire blocks until the lock for key is held, timeout elapses or ctx is done.
// On success the returned release func must be called exactly once.
// A timeout returns an error wrapping domain.ErrLockTimeout; cancellation returns ctx.Err().
func (lm *LockManager) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	entry := lm.ref(key)

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case entry.sem <- struct{}{}:
	case <-timer:
		lm.unref(key, entry)
		return nil, fmt.Errorf("key %q after %s: %w", key, timeout, domain.ErrLockTimeout)
	case <-ctx.Done():
		lm.unref(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			lm.unref(key, entry)
		})
	}, nil
}

// Held reports how many keys currently have holders or waiters.
func (lm *LockManager) Held() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}

func (lm *LockManager) ref(key string) *lockEntry {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	entry, ok := lm.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		lm.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (lm *LockManager) unref(key string, entry *lockEntry) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(lm.locks, key)
	}
}
