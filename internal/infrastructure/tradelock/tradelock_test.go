package tradelock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/infrastructure/tradelock"
	"trade_exchange/pkg/errcodes"
)

type lock interface {
	Acquire(ctx context.Context) (func(), error)
}

func checkMutualExclusion(t *testing.T, l lock) {
	t.Helper()

	rq := require.New(t)

	release, err := l.Acquire(context.Background())
	rq.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx)
	rq.True(domain.HasCode(err, errcodes.TradingLockTimeout))

	release()

	again, err := l.Acquire(context.Background())
	rq.NoError(err)
	again()
}

func TestLocal(t *testing.T) {
	checkMutualExclusion(t, tradelock.NewLocal())
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	bot := "test-" + xid.New().String()

	checkMutualExclusion(t, tradelock.NewRedis(client, bot, time.Minute))

	t.Run("Held lock outlives its TTL", func(t *testing.T) {
		rq := require.New(t)

		first := tradelock.NewRedis(client, bot, 200*time.Millisecond)
		release, err := first.Acquire(context.Background())
		rq.NoError(err)

		time.Sleep(600 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		_, err = tradelock.NewRedis(client, bot, time.Minute).Acquire(ctx)
		rq.True(domain.HasCode(err, errcodes.TradingLockTimeout))

		release()

		again, err := first.Acquire(context.Background())
		rq.NoError(err)
		again()
	})

	t.Run("Foreign release does not drop the lock", func(t *testing.T) {
		rq := require.New(t)

		first := tradelock.NewRedis(client, bot, 200*time.Millisecond)
		release, err := first.Acquire(context.Background())
		rq.NoError(err)

		// ключ пропал и перехвачен другим владельцем
		rq.NoError(client.Del(context.Background(), "trade_exchange:lock:"+bot).Err())

		second := tradelock.NewRedis(client, bot, time.Minute)
		secondRelease, err := second.Acquire(context.Background())
		rq.NoError(err)

		// продление первого владельца не трогает чужой ключ
		time.Sleep(300 * time.Millisecond)
		release()

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		_, err = second.Acquire(ctx)
		rq.True(domain.HasCode(err, errcodes.TradingLockTimeout))

		secondRelease()
	})
}
