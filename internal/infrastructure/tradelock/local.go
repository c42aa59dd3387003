// Package tradelock реализует блокировку торговли бота: пока она взята,
// никто другой не меняет его инвентарь.
package tradelock

import (
	"context"

	"golang.org/x/sync/semaphore"

	"trade_exchange/internal/domain"
	"trade_exchange/pkg/errcodes"
)

// Local: блокировка в пределах процесса.
type Local struct {
	sem *semaphore.Weighted
}

func NewLocal() *Local {
	return &Local{sem: semaphore.NewWeighted(1)}
}

func (l *Local) Acquire(ctx context.Context) (func(), error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, domain.WrapError(err, errcodes.TradingLockTimeout, "local trading lock")
	}

	return func() { l.sem.Release(1) }, nil
}
