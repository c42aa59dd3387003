package application

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"trade_exchange/internal/config"
	"trade_exchange/internal/domain/service/exchange"
	"trade_exchange/internal/infrastructure/tradelock"
)

func TestNewTradingLock(t *testing.T) {
	rq := require.New(t)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	testCases := []struct {
		name    string
		backend string
		check   func(exchange.TradingLock)
		err     bool
	}{
		{
			name:    "Redis",
			backend: lockBackendRedis,
			check: func(lock exchange.TradingLock) {
				rq.IsType(&tradelock.Redis{}, lock)
			},
		},
		{
			name:    "Local",
			backend: lockBackendLocal,
			check: func(lock exchange.TradingLock) {
				rq.IsType(&tradelock.Local{}, lock)
			},
		},
		{
			name:    "Unknown backend",
			backend: "etcd",
			err:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			lock, err := newTradingLock(config.Trading{LockBackend: tc.backend}, client, "alpha")
			if tc.err {
				rq.Error(err)
				return
			}

			rq.NoError(err)
			tc.check(lock)
		})
	}
}

func TestConnectionHandlerUnknownBot(t *testing.T) {
	rq := require.New(t)

	h := connectionHandler{coordinators: map[string]*exchange.Coordinator{}}

	rq.NotPanics(func() { h.OnDisconnected("ghost") })
}
