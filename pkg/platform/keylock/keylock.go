// Package keylock serializes work per key with a fixed set of sharded
// mutexes. In-memory stores use it as their stand-in for a row lock.
package keylock

import (
	"context"
	"sync"
	"time"

	dErrors "lodgeguard/pkg/domain-errors"
)

// numShards trades memory for contention; keys that hash to one shard
// serialize with each other.
const numShards = 128

// defaultTimeout is the maximum duration for a locked section when the caller
// sets no deadline.
const defaultTimeout = 5 * time.Second

// Locker hands out exclusive sections keyed by string.
type Locker struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

type Option func(*Locker)

// WithTimeout overrides the default section timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Locker) {
		l.timeout = d
	}
}

func New(opts ...Option) *Locker {
	l := &Locker{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do runs fn while holding the shard for key. The context is checked before
// and after the lock is acquired so a caller that gave up never runs fn.
func (l *Locker) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	mu := &l.shards[shardFor(key)]
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// shardFor uses FNV-1a for distribution.
func shardFor(key string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvPrime
	}
	return h % numShards
}
