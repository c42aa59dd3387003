package exchange_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"trade_exchange/internal/domain/service/exchange"
)

func TestProcessedSet(t *testing.T) {
	rq := require.New(t)

	set := exchange.NewProcessedSet()

	rq.True(set.TryAdd(1))
	rq.False(set.TryAdd(1))
	rq.True(set.TryAdd(2))
	rq.True(set.TryAdd(3))
	rq.Equal(3, set.Len())

	set.IntersectWith([]uint64{2, 3, 4})
	rq.False(set.Contains(1))
	rq.True(set.Contains(2))
	rq.False(set.Contains(4))

	set.RemoveAll([]uint64{2, 5})
	rq.Equal(1, set.Len())

	set.Clear()
	rq.Zero(set.Len())
	rq.True(set.TryAdd(3))
}

func TestProcessedSetConcurrentTryAdd(t *testing.T) {
	rq := require.New(t)

	set := exchange.NewProcessedSet()

	var (
		wg       sync.WaitGroup
		inserted atomic.Int32
	)

	for range 64 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if set.TryAdd(42) {
				inserted.Add(1)
			}
		}()
	}

	wg.Wait()

	rq.Equal(int32(1), inserted.Load())
}
