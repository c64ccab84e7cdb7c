package keylock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lodgeguard/pkg/domain-errors"
)

func TestDoSerializesSameKey(t *testing.T) {
	l := New()
	ctx := context.Background()

	const goroutines = 64
	var wg sync.WaitGroup
	counter := 0
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(ctx, "unit-1", func(context.Context) error {
				v := counter
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestDoRejectsCancelledContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := l.Do(ctx, "unit-1", func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, called)
}

func TestShardForIsStable(t *testing.T) {
	assert.Equal(t, shardFor("abc"), shardFor("abc"))
	assert.Less(t, shardFor("abc"), uint32(numShards))
}
