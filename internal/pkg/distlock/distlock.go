// Package distlock guards operations that must not run twice at once for the
// same key. With Redis the guard spans server instances; without it the
// guard is local to the process.
package distlock

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is a single-use lock handle.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Factory creates a lock handle for key.
type Factory func(key string) DistLock

// NewFactory returns a Redis-backed factory when redisClient is non-nil and
// an in-process one otherwise.
func NewFactory(redisClient *redis.Client, ttl time.Duration) Factory {
	if redisClient != nil {
		return func(key string) DistLock { return NewRedisLock(redisClient, key, ttl) }
	}
	set := newLocalSet()
	return func(key string) DistLock { return &LocalLock{set: set, key: key} }
}

type localSet struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newLocalSet() *localSet { return &localSet{held: make(map[string]struct{})} }

// LocalLock implements DistLock inside one process.
type LocalLock struct {
	set   *localSet
	key   string
	owned bool
}

func (l *LocalLock) Acquire(context.Context) (bool, error) {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()
	if _, busy := l.set.held[l.key]; busy {
		return false, nil
	}
	l.set.held[l.key] = struct{}{}
	l.owned = true
	return true, nil
}

func (l *LocalLock) Release(context.Context) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()
	if l.owned {
		delete(l.set.held, l.key)
		l.owned = false
	}
	return nil
}
