package tradelock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"trade_exchange/internal/domain"
	"trade_exchange/pkg/errcodes"
	"trade_exchange/pkg/logx"
)

const retryInterval = 200 * time.Millisecond

// releaseScript удаляет ключ, только если он всё ещё наш.
//
//nolint:gochecknoglobals
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript продлевает TTL, только если ключ всё ещё наш.
//
//nolint:gochecknoglobals
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis: блокировка, общая для всех процессов, работающих с ботом.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, botName string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    "trade_exchange:lock:" + botName,
		ttl:    ttl,
	}
}

// Acquire ждёт блокировку до отмены контекста. TTL защищает от процесса,
// умершего с взятой блокировкой; пока блокировка у нас, ключ продлевается
// каждую треть TTL.
func (r *Redis) Acquire(ctx context.Context) (func(), error) {
	token := xid.New().String()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, domain.WrapError(ctx.Err(), errcodes.TradingLockTimeout, r.key)
			}

			return nil, fmt.Errorf("redis setnx %s: %w", r.key, err)
		}

		if ok {
			return r.hold(ctx, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, domain.WrapError(ctx.Err(), errcodes.TradingLockTimeout, r.key)
		case <-ticker.C:
		}
	}
}

func (r *Redis) hold(ctx context.Context, token string) func() {
	var (
		once sync.Once
		wg   sync.WaitGroup
	)

	stop := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()
		r.keepAlive(context.WithoutCancel(ctx), token, stop)
	}()

	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()

			// отпускаем даже если контекст прохода уже отменён
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()

			if err := releaseScript.Run(releaseCtx, r.client, []string{r.key}, token).Err(); err != nil {
				logger(ctx).Warn("trading lock release failed", slog.String("key", r.key), logx.Error(err))
			}
		})
	}
}

func (r *Redis) keepAlive(ctx context.Context, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(max(r.ttl/3, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		extendCtx, cancel := context.WithTimeout(ctx, time.Second)
		extended, err := extendScript.Run(extendCtx, r.client, []string{r.key}, token, r.ttl.Milliseconds()).Int()
		cancel()

		switch {
		case err != nil:
			// временная ошибка: попробуем на следующем тике, пока ключ жив
			logger(ctx).Warn("trading lock extend failed", slog.String("key", r.key), logx.Error(err))
		case extended == 0:
			logger(ctx).Error("trading lock lost", slog.String("key", r.key))
			return
		}
	}
}
