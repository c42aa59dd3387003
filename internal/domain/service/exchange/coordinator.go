// Package exchange разбирает очередь офферов одного бота: классифицирует,
// принимает или отклоняет и публикует результаты.
package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/contextx"
	"trade_exchange/pkg/logx"
)

type Transport interface {
	FetchActiveOffers(ctx context.Context) ([]entity.TradeOffer, error)
	AcceptOffer(ctx context.Context, offerID uint64) (requiresConfirmation bool, err error)
	DeclineOffer(ctx context.Context, offerID uint64) error
}

type OfferClassifier interface {
	Classify(ctx context.Context, offer entity.TradeOffer) (value.Outcome, error)
	Policy() entity.TradingPolicy
}

// Confirmer подтверждает принятые офферы через мобильный аутентификатор.
type Confirmer interface {
	ConfirmTrades(ctx context.Context, offerIDs []uint64) error
}

// TradingLock общий для всех операций, меняющих инвентарь бота.
type TradingLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type ResultsObserver interface {
	OnBatchResultsReady(ctx context.Context, botName string, results []entity.TradeResult)
}

type LootHandler interface {
	OnLootableReceived(ctx context.Context, botName string) error
}

type PassRecorder interface {
	ObservePass(botName string, duration time.Duration, handled int)
}

type Coordinator struct {
	botName    string
	transport  Transport
	classifier OfferClassifier
	lock       TradingLock
	confirmer  Confirmer
	observer   ResultsObserver
	loot       LootHandler
	recorder   PassRecorder

	processed *ProcessedSet

	scheduleMu sync.Mutex
	scheduled  bool
	permit     *semaphore.Weighted

	lockAttempts   int
	lockRetryDelay time.Duration

	statsMu    sync.Mutex
	lastPassAt time.Time
	passes     uint64
}

func NewCoordinator(
	botName string,
	transport Transport,
	classifier OfferClassifier,
	lock TradingLock,
) *Coordinator {
	return &Coordinator{
		botName:    botName,
		transport:  transport,
		classifier: classifier,
		lock:       lock,
		processed:  NewProcessedSet(),
		permit:     semaphore.NewWeighted(1),

		lockAttempts:   defaultLockAttempts,
		lockRetryDelay: defaultLockRetryDelay,
	}
}

const (
	defaultLockAttempts   = 3
	defaultLockRetryDelay = 500 * time.Millisecond
)

// WithLockRetry задаёт число попыток взять торговую блокировку и паузу
// перед первым повтором. Пауза удваивается с каждой попыткой.
func (c *Coordinator) WithLockRetry(attempts int, delay time.Duration) *Coordinator {
	c.lockAttempts = max(attempts, 1)
	c.lockRetryDelay = delay

	return c
}

func (c *Coordinator) WithConfirmer(confirmer Confirmer) *Coordinator {
	c.confirmer = confirmer
	return c
}

func (c *Coordinator) WithObserver(observer ResultsObserver) *Coordinator {
	c.observer = observer
	return c
}

func (c *Coordinator) WithLootHandler(loot LootHandler) *Coordinator {
	c.loot = loot
	return c
}

func (c *Coordinator) WithPassRecorder(recorder PassRecorder) *Coordinator {
	c.recorder = recorder
	return c
}

func (c *Coordinator) BotName() string {
	return c.botName
}

// OnNewTrade запрашивает проход по офферам. Если проход уже запланирован,
// вызов ничего не делает: запланированный проход увидит новые офферы.
// Блокируется до конца прохода, который сам и запланировал.
//
// Ошибка означает, что запланированный проход не состоялся, и сигнал
// нужно повторить: поглощённые им вызовы уже вернулись.
func (c *Coordinator) OnNewTrade(ctx context.Context) error {
	c.scheduleMu.Lock()
	if c.scheduled {
		c.scheduleMu.Unlock()
		return nil
	}
	c.scheduled = true
	c.scheduleMu.Unlock()

	lootable, err := c.runScheduled(ctx)
	if err != nil {
		return err
	}

	if !lootable || c.loot == nil {
		return nil
	}

	if err := c.loot.OnLootableReceived(ctx, c.botName); err != nil {
		logger(ctx).Warn("lootable follow-up failed", slog.String(logx.FieldBot, c.botName), logx.Error(err))
	}

	return nil
}

func (c *Coordinator) runScheduled(ctx context.Context) (bool, error) {
	if err := c.permit.Acquire(ctx, 1); err != nil {
		c.unschedule()
		return false, fmt.Errorf("pass permit: %w", err)
	}
	defer c.permit.Release(1)

	release, err := c.acquireLock(ctx)
	if err != nil {
		c.unschedule()
		logger(ctx).Warn("trading lock not acquired", slog.String(logx.FieldBot, c.botName), logx.Error(err))

		return false, fmt.Errorf("trading lock: %w", err)
	}
	defer release()

	// снимаем флаг до начала прохода: новый сигнал запланирует ещё один
	c.unschedule()

	return c.runPass(ctx), nil
}

func (c *Coordinator) acquireLock(ctx context.Context) (func(), error) {
	delay := c.lockRetryDelay

	for attempt := 1; ; attempt++ {
		release, err := c.lock.Acquire(ctx)
		if err == nil {
			return release, nil
		}

		if attempt >= c.lockAttempts || ctx.Err() != nil {
			return nil, err
		}

		logger(ctx).Debug("trading lock busy, retrying",
			slog.String(logx.FieldBot, c.botName), slog.Int("attempt", attempt), logx.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
	}
}

func (c *Coordinator) unschedule() {
	c.scheduleMu.Lock()
	c.scheduled = false
	c.scheduleMu.Unlock()
}

// OnDisconnected сбрасывает набор обработанных офферов: решения прошлой
// сессии после переподключения не считаются действительными.
func (c *Coordinator) OnDisconnected() {
	c.processed.Clear()
}

type offerReport struct {
	offer                entity.TradeOffer
	outcome              value.Outcome
	requiresConfirmation bool
}

func (c *Coordinator) runPass(ctx context.Context) bool {
	started := time.Now()
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldBot, c.botName),
		slog.String(logx.FieldPassID, xid.New().String()),
	))

	offers, err := c.transport.FetchActiveOffers(ctx)
	if err != nil {
		logger(ctx).Warn("fetch active offers failed", logx.Error(err))
		return false
	}

	if len(offers) == 0 {
		return false
	}

	c.processed.IntersectWith(lo.Map(offers, func(o entity.TradeOffer, _ int) uint64 { return o.OfferID }))

	reports := c.handleOffers(ctx, offers)
	results := c.confirm(ctx, reports)

	c.recordPass(started, len(results))

	if len(results) == 0 {
		return false
	}

	logger(ctx).Info("trade pass finished", slog.Int("handled", len(results)))

	if c.observer != nil {
		c.observer.OnBatchResultsReady(ctx, c.botName, results)
	}

	policy := c.classifier.Policy()

	return lo.ContainsBy(results, func(r entity.TradeResult) bool {
		return r.Outcome == value.OutcomeAccepted && r.Confirmed && policy.ShouldLoot(r.ReceivedItemTypes())
	})
}

func (c *Coordinator) handleOffers(ctx context.Context, offers []entity.TradeOffer) []offerReport {
	var (
		g       errgroup.Group
		mu      sync.Mutex
		reports = make([]offerReport, 0, len(offers))
	)

	for _, offer := range offers {
		if !offer.IsActive() {
			continue
		}

		g.Go(func() error {
			if !c.processed.TryAdd(offer.OfferID) {
				return nil
			}

			report := c.handleOffer(ctx, offer)

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return reports
}

func (c *Coordinator) handleOffer(ctx context.Context, offer entity.TradeOffer) offerReport {
	outcome, err := c.classifier.Classify(ctx, offer)
	if err != nil {
		logger(ctx).Error("offer classification failed",
			slog.Uint64(logx.FieldOfferID, offer.OfferID),
			logx.Error(err),
		)

		outcome = value.OutcomeTryAgain
	}

	result := c.execute(ctx, offer, outcome)

	logger(ctx).Info("offer handled",
		slog.Uint64(logx.FieldOfferID, offer.OfferID),
		slog.Uint64(logx.FieldCounterpartyID, offer.CounterpartyID),
		logx.Stringer(logx.FieldOutcome, result.outcome),
	)

	return offerReport{
		offer:                offer,
		outcome:              result.outcome,
		requiresConfirmation: result.requiresConfirmation,
	}
}

// confirm подтверждает пачкой принятые офферы и собирает итоговые записи.
func (c *Coordinator) confirm(ctx context.Context, reports []offerReport) []entity.TradeResult {
	pending := lo.FilterMap(reports, func(r offerReport, _ int) (uint64, bool) {
		return r.offer.OfferID, r.outcome == value.OutcomeAccepted && r.requiresConfirmation
	})

	confirmed := len(pending) > 0 && c.confirmer != nil
	if confirmed {
		if err := c.confirmer.ConfirmTrades(ctx, pending); err != nil {
			logger(ctx).Warn("trade confirmation failed", slog.Int("offers", len(pending)), logx.Error(err))
			c.processed.RemoveAll(pending)

			confirmed = false
		}
	}

	results := make([]entity.TradeResult, 0, len(reports))

	for _, r := range reports {
		result := entity.NewTradeResult(r.offer, r.outcome)
		if r.outcome == value.OutcomeAccepted {
			result.Confirmed = !r.requiresConfirmation || confirmed
		}

		results = append(results, result)
	}

	return results
}

func (c *Coordinator) recordPass(started time.Time, handled int) {
	duration := time.Since(started)

	c.statsMu.Lock()
	c.lastPassAt = started
	c.passes++
	c.statsMu.Unlock()

	if c.recorder != nil {
		c.recorder.ObservePass(c.botName, duration, handled)
	}
}

// Status: состояние координатора для операторских команд.
type Status struct {
	BotName    string
	Processed  int
	Passes     uint64
	LastPassAt time.Time
	Scheduled  bool
}

func (c *Coordinator) Status() Status {
	c.statsMu.Lock()
	lastPassAt, passes := c.lastPassAt, c.passes
	c.statsMu.Unlock()

	c.scheduleMu.Lock()
	scheduled := c.scheduled
	c.scheduleMu.Unlock()

	return Status{
		BotName:    c.botName,
		Processed:  c.processed.Len(),
		Passes:     passes,
		LastPassAt: lastPassAt,
		Scheduled:  scheduled,
	}
}
