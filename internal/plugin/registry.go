// Package plugin собирает внешние хуки, которые могут влиять на обмены.
package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/logx"
)

type DecisionOverride interface {
	OnOfferAboutToBeRejected(
		ctx context.Context,
		botName string,
		offer entity.TradeOffer,
		proposed value.Outcome,
	) value.Outcome
}

type ResultsObserver interface {
	OnBatchResultsReady(ctx context.Context, botName string, results []entity.TradeResult)
}

// Registry раздаёт события всем зарегистрированным плагинам.
type Registry struct {
	mu        sync.RWMutex
	overrides []DecisionOverride
	observers []ResultsObserver
	wg        sync.WaitGroup
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RegisterOverride(o DecisionOverride) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overrides = append(r.overrides, o)
}

func (r *Registry) RegisterObserver(o ResultsObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, o)
}

// OnOfferAboutToBeRejected опрашивает плагины по очереди до первого Accepted.
func (r *Registry) OnOfferAboutToBeRejected(
	ctx context.Context,
	botName string,
	offer entity.TradeOffer,
	proposed value.Outcome,
) value.Outcome {
	r.mu.RLock()
	overrides := r.overrides
	r.mu.RUnlock()

	for _, o := range overrides {
		if r.askOverride(ctx, o, botName, offer, proposed) == value.OutcomeAccepted {
			logger(ctx).Info("rejection overridden by plugin",
				slog.String(logx.FieldBot, botName),
				slog.Uint64(logx.FieldOfferID, offer.OfferID),
				logx.Stringer(logx.FieldOutcome, proposed),
				slog.String("plugin", fmt.Sprintf("%T", o)),
			)

			return value.OutcomeAccepted
		}
	}

	return proposed
}

func (r *Registry) askOverride(
	ctx context.Context,
	o DecisionOverride,
	botName string,
	offer entity.TradeOffer,
	proposed value.Outcome,
) (outcome value.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			logPanic(ctx, o, rec)
			outcome = proposed
		}
	}()

	return o.OnOfferAboutToBeRejected(ctx, botName, offer, proposed)
}

// OnBatchResultsReady уведомляет наблюдателей в отдельных горутинах и не ждёт их.
func (r *Registry) OnBatchResultsReady(ctx context.Context, botName string, results []entity.TradeResult) {
	r.mu.RLock()
	observers := r.observers
	r.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)

	for _, o := range observers {
		r.wg.Add(1)

		go func() {
			defer r.wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					logPanic(ctx, o, rec)
				}
			}()

			o.OnBatchResultsReady(ctx, botName, results)
		}()
	}
}

// Wait дожидается уже запущенных уведомлений. Нужен при остановке.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func logPanic(ctx context.Context, plugin any, rec any) {
	logger(ctx).Error("plugin panicked",
		slog.String("plugin", fmt.Sprintf("%T", plugin)),
		slog.Any("panic", rec),
		slog.String(logx.FieldStack, string(debug.Stack())),
	)
}
