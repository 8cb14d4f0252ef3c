package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes read-then-write cycles on a shared store across processes.
type Locker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock
	// expires after ttl if never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
