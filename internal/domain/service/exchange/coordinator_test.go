package exchange_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/classifier"
	"trade_exchange/internal/domain/service/exchange"
	"trade_exchange/internal/domain/value"
)

const botName = "main"

var errRemote = errors.New("remote unavailable")

type fakeTransport struct {
	mu         sync.Mutex
	offers     []entity.TradeOffer
	fetchErr   error
	acceptErr  error
	declineErr error
	needs2FA   bool
	accepted   []uint64
	declined   []uint64
	fetches    atomic.Int32
	block      chan struct{}
}

func (f *fakeTransport) FetchActiveOffers(context.Context) ([]entity.TradeOffer, error) {
	f.fetches.Add(1)

	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.offers, f.fetchErr
}

func (f *fakeTransport) AcceptOffer(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.acceptErr != nil {
		return false, f.acceptErr
	}

	f.accepted = append(f.accepted, id)

	return f.needs2FA, nil
}

func (f *fakeTransport) DeclineOffer(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.declineErr != nil {
		return f.declineErr
	}

	f.declined = append(f.declined, id)

	return nil
}

func (f *fakeTransport) setOffers(offers ...entity.TradeOffer) {
	f.mu.Lock()
	f.offers = offers
	f.mu.Unlock()
}

type fakeClassifier struct {
	policy   entity.TradingPolicy
	outcomes map[uint64]value.Outcome
	err      error
	calls    atomic.Int32
}

func (f *fakeClassifier) Classify(_ context.Context, offer entity.TradeOffer) (value.Outcome, error) {
	f.calls.Add(1)

	if f.err != nil {
		return value.OutcomeUnknown, f.err
	}

	return f.outcomes[offer.OfferID], nil
}

func (f *fakeClassifier) Policy() entity.TradingPolicy {
	return f.policy
}

type fakeLock struct {
	held     atomic.Bool
	acquires atomic.Int32
	calls    atomic.Int32
	// failNext: сколько следующих вызовов завершатся ошибкой
	failNext atomic.Int32
	err      error
}

func (f *fakeLock) Acquire(context.Context) (func(), error) {
	f.calls.Add(1)

	if f.err != nil {
		return nil, f.err
	}

	if f.failNext.Add(-1) >= 0 {
		return nil, errRemote
	}

	f.acquires.Add(1)
	f.held.Store(true)

	return func() { f.held.Store(false) }, nil
}

type fakeObserver struct {
	mu      sync.Mutex
	batches [][]entity.TradeResult
}

func (f *fakeObserver) OnBatchResultsReady(_ context.Context, _ string, results []entity.TradeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batches = append(f.batches, results)
}

func (f *fakeObserver) last() []entity.TradeResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.batches) == 0 {
		return nil
	}

	return f.batches[len(f.batches)-1]
}

type fakeConfirmer struct {
	err   error
	calls [][]uint64
}

func (f *fakeConfirmer) ConfirmTrades(_ context.Context, ids []uint64) error {
	f.calls = append(f.calls, ids)
	return f.err
}

type fakeLoot struct {
	lock       *fakeLock
	calls      atomic.Int32
	heldOnCall atomic.Bool
}

func (f *fakeLoot) OnLootableReceived(context.Context, string) error {
	f.calls.Add(1)
	f.heldOnCall.Store(f.lock.held.Load())

	return nil
}

func card(classID uint64, amount uint32) entity.Item {
	return entity.Item{
		AppID:     entity.CommunityAppID,
		ContextID: entity.CommunityContextID,
		ClassID:   classID,
		Amount:    amount,
		RealAppID: 10,
		Type:      value.ItemTypeTradingCard,
		Rarity:    value.RarityCommon,
	}
}

func activeOffer(id uint64) entity.TradeOffer {
	return entity.TradeOffer{
		OfferID:        id,
		CounterpartyID: 76561198000000001,
		State:          value.OfferStateActive,
		ItemsToGive:    []entity.Item{card(1, 1)},
		ItemsToReceive: []entity.Item{card(2, 1)},
	}
}

func TestCoordinatorActions(t *testing.T) {
	testCases := []struct {
		name          string
		outcome       value.Outcome
		rejectInvalid bool
		acceptErr     error
		declineErr    error
		wantOutcome   value.Outcome
		wantAccepted  int
		wantDeclined  int
		wantProcessed int
	}{
		{
			name:         "Accepted",
			outcome:      value.OutcomeAccepted,
			wantOutcome:  value.OutcomeAccepted,
			wantAccepted: 1,
		},
		{
			name:        "Accept failure becomes retry",
			outcome:     value.OutcomeAccepted,
			acceptErr:   errRemote,
			wantOutcome: value.OutcomeTryAgain,
		},
		{
			name:         "Blacklisted is declined",
			outcome:      value.OutcomeBlacklisted,
			wantOutcome:  value.OutcomeBlacklisted,
			wantDeclined: 1,
		},
		{
			name:        "Decline failure becomes retry",
			outcome:     value.OutcomeBlacklisted,
			declineErr:  errRemote,
			wantOutcome: value.OutcomeTryAgain,
		},
		{
			name:          "Rejected is declined when enforced",
			outcome:       value.OutcomeRejected,
			rejectInvalid: true,
			wantOutcome:   value.OutcomeRejected,
			wantDeclined:  1,
		},
		{
			name:          "Rejected is kept when not enforced",
			outcome:       value.OutcomeRejected,
			wantOutcome:   value.OutcomeRejected,
			wantProcessed: 1,
		},
		{
			name:          "Ignored is kept",
			outcome:       value.OutcomeIgnored,
			wantOutcome:   value.OutcomeIgnored,
			wantProcessed: 1,
		},
		{
			name:        "TryAgain is evicted",
			outcome:     value.OutcomeTryAgain,
			wantOutcome: value.OutcomeTryAgain,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			transport := &fakeTransport{acceptErr: tc.acceptErr, declineErr: tc.declineErr}
			transport.setOffers(activeOffer(7))

			observer := &fakeObserver{}
			c := exchange.NewCoordinator(
				botName,
				transport,
				&fakeClassifier{
					policy:   entity.TradingPolicy{RejectInvalidTrades: tc.rejectInvalid},
					outcomes: map[uint64]value.Outcome{7: tc.outcome},
				},
				&fakeLock{},
			).WithObserver(observer)

			c.OnNewTrade(context.Background())

			results := observer.last()
			rq.Len(results, 1)
			rq.Equal(uint64(7), results[0].OfferID)
			rq.Equal(tc.wantOutcome, results[0].Outcome)
			rq.Len(transport.accepted, tc.wantAccepted)
			rq.Len(transport.declined, tc.wantDeclined)
			rq.Equal(tc.wantProcessed, c.Status().Processed)
		})
	}
}

func TestCoordinatorSingleFlight(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{block: make(chan struct{})}
	c := exchange.NewCoordinator(botName, transport, &fakeClassifier{}, &fakeLock{})

	ctx := context.Background()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		c.OnNewTrade(ctx)
	}()

	rq.Eventually(func() bool { return transport.fetches.Load() == 1 }, time.Second, time.Millisecond)

	const wakeUps = 10

	var returned atomic.Int32

	var wg sync.WaitGroup
	for range wakeUps {
		wg.Add(1)

		go func() {
			defer wg.Done()
			c.OnNewTrade(ctx)
			returned.Add(1)
		}()
	}

	// все, кроме одного, сразу выходят: проход уже запланирован
	rq.Eventually(func() bool { return returned.Load() == wakeUps-1 }, time.Second, time.Millisecond)

	close(transport.block)
	wg.Wait()
	<-firstDone

	rq.Equal(int32(2), transport.fetches.Load())
}

func TestCoordinatorDedupWithinPass(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	transport.setOffers(activeOffer(1), activeOffer(1), activeOffer(2))

	cls := &fakeClassifier{outcomes: map[uint64]value.Outcome{1: value.OutcomeIgnored, 2: value.OutcomeIgnored}}
	observer := &fakeObserver{}
	c := exchange.NewCoordinator(botName, transport, cls, &fakeLock{}).WithObserver(observer)

	c.OnNewTrade(context.Background())

	rq.Equal(int32(2), cls.calls.Load())
	rq.Len(observer.last(), 2)
}

func TestCoordinatorProcessedAcrossPasses(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	transport.setOffers(activeOffer(1), entity.TradeOffer{OfferID: 2, State: value.OfferStateAccepted})

	cls := &fakeClassifier{outcomes: map[uint64]value.Outcome{1: value.OutcomeIgnored, 3: value.OutcomeIgnored}}
	c := exchange.NewCoordinator(botName, transport, cls, &fakeLock{})
	ctx := context.Background()

	c.OnNewTrade(ctx)
	rq.Equal(int32(1), cls.calls.Load())

	// игнорируемый оффер не разбирается повторно в той же сессии
	c.OnNewTrade(ctx)
	rq.Equal(int32(1), cls.calls.Load())

	// оффер пропал с площадки и вернулся
	transport.setOffers(activeOffer(3))
	c.OnNewTrade(ctx)
	transport.setOffers(activeOffer(1), activeOffer(3))
	c.OnNewTrade(ctx)
	rq.Equal(int32(3), cls.calls.Load())

	c.OnDisconnected()
	rq.Zero(c.Status().Processed)

	c.OnNewTrade(ctx)
	rq.Equal(int32(5), cls.calls.Load())
}

func TestCoordinatorConfirmation(t *testing.T) {
	testCases := []struct {
		name          string
		confirmer     *fakeConfirmer
		needs2FA      bool
		wantConfirmed bool
		wantCalls     int
	}{
		{
			name:          "No confirmation needed",
			confirmer:     &fakeConfirmer{},
			wantConfirmed: true,
		},
		{
			name:          "Confirmed via authenticator",
			confirmer:     &fakeConfirmer{},
			needs2FA:      true,
			wantConfirmed: true,
			wantCalls:     1,
		},
		{
			name:          "Confirmation failed",
			confirmer:     &fakeConfirmer{err: errRemote},
			needs2FA:      true,
			wantConfirmed: false,
			wantCalls:     1,
		},
		{
			name:          "No authenticator",
			needs2FA:      true,
			wantConfirmed: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			transport := &fakeTransport{needs2FA: tc.needs2FA}
			transport.setOffers(activeOffer(1), activeOffer(2))

			observer := &fakeObserver{}
			c := exchange.NewCoordinator(
				botName,
				transport,
				&fakeClassifier{outcomes: map[uint64]value.Outcome{1: value.OutcomeAccepted, 2: value.OutcomeAccepted}},
				&fakeLock{},
			).WithObserver(observer)

			if tc.confirmer != nil {
				c.WithConfirmer(tc.confirmer)
			}

			c.OnNewTrade(context.Background())

			results := observer.last()
			rq.Len(results, 2)

			for _, r := range results {
				rq.Equal(value.OutcomeAccepted, r.Outcome)
				rq.Equal(tc.wantConfirmed, r.Confirmed)
			}

			if tc.confirmer != nil {
				rq.Len(tc.confirmer.calls, tc.wantCalls)

				if tc.wantCalls > 0 {
					rq.ElementsMatch([]uint64{1, 2}, tc.confirmer.calls[0])
				}
			}

			rq.Zero(c.Status().Processed)
		})
	}
}

func TestCoordinatorLootAfterLockRelease(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	transport.setOffers(activeOffer(1))

	lock := &fakeLock{}
	loot := &fakeLoot{lock: lock}

	c := exchange.NewCoordinator(
		botName,
		transport,
		&fakeClassifier{
			policy: entity.TradingPolicy{
				SendOnFarmingFinished: true,
				LootableTypes:         value.NewItemTypes(value.ItemTypeTradingCard),
			},
			outcomes: map[uint64]value.Outcome{1: value.OutcomeAccepted},
		},
		lock,
	).WithLootHandler(loot)

	c.OnNewTrade(context.Background())

	rq.Equal(int32(1), loot.calls.Load())
	rq.False(loot.heldOnCall.Load())
}

func TestCoordinatorNoLootForRejected(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	transport.setOffers(activeOffer(1))

	lock := &fakeLock{}
	loot := &fakeLoot{lock: lock}

	c := exchange.NewCoordinator(
		botName,
		transport,
		&fakeClassifier{
			policy: entity.TradingPolicy{
				SendOnFarmingFinished: true,
				LootableTypes:         value.NewItemTypes(value.ItemTypeTradingCard),
			},
			outcomes: map[uint64]value.Outcome{1: value.OutcomeRejected},
		},
		lock,
	).WithLootHandler(loot)

	c.OnNewTrade(context.Background())

	rq.Zero(loot.calls.Load())
}

func TestCoordinatorClassificationErrorRetries(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	transport.setOffers(activeOffer(1))

	observer := &fakeObserver{}
	c := exchange.NewCoordinator(botName, transport, &fakeClassifier{err: errRemote}, &fakeLock{}).WithObserver(observer)

	c.OnNewTrade(context.Background())

	results := observer.last()
	rq.Len(results, 1)
	rq.Equal(value.OutcomeTryAgain, results[0].Outcome)
	rq.Zero(c.Status().Processed)
}

func TestCoordinatorFetchFailure(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{fetchErr: errRemote}
	observer := &fakeObserver{}
	cls := &fakeClassifier{}
	c := exchange.NewCoordinator(botName, transport, cls, &fakeLock{}).WithObserver(observer)

	c.OnNewTrade(context.Background())

	rq.Empty(observer.batches)
	rq.Zero(cls.calls.Load())
}

func TestCoordinatorLockFailureUnschedules(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	lock := &fakeLock{err: errRemote}
	c := exchange.NewCoordinator(botName, transport, &fakeClassifier{}, lock).WithLockRetry(2, time.Millisecond)

	err := c.OnNewTrade(context.Background())
	rq.ErrorIs(err, errRemote)
	rq.Equal(int32(2), lock.calls.Load())
	rq.Zero(transport.fetches.Load())
	rq.False(c.Status().Scheduled)

	lock.err = nil
	rq.NoError(c.OnNewTrade(context.Background()))
	rq.Equal(int32(1), transport.fetches.Load())
}

func TestCoordinatorLockRetry(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	lock := &fakeLock{}
	lock.failNext.Store(2)

	c := exchange.NewCoordinator(botName, transport, &fakeClassifier{}, lock).WithLockRetry(3, time.Millisecond)

	rq.NoError(c.OnNewTrade(context.Background()))
	rq.Equal(int32(3), lock.calls.Load())
	rq.Equal(int32(1), transport.fetches.Load())
}

func TestCoordinatorAbsorbedWakeUpSurvivesLockFailure(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{block: make(chan struct{})}
	lock := &fakeLock{}
	c := exchange.NewCoordinator(botName, transport, &fakeClassifier{}, lock).WithLockRetry(1, 0)

	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- c.OnNewTrade(ctx) }()

	rq.Eventually(func() bool { return transport.fetches.Load() == 1 }, time.Second, time.Millisecond)

	// второй сигнал планирует проход, третий поглощается им
	secondDone := make(chan error, 1)
	go func() { secondDone <- c.OnNewTrade(ctx) }()

	rq.Eventually(func() bool { return c.Status().Scheduled }, time.Second, time.Millisecond)
	rq.NoError(c.OnNewTrade(ctx))

	lock.failNext.Store(1)
	close(transport.block)

	rq.NoError(<-firstDone)

	// запланированный проход не начался: ошибка уходит наверх для повтора
	rq.ErrorIs(<-secondDone, errRemote)
	rq.Equal(int32(1), transport.fetches.Load())
	rq.False(c.Status().Scheduled)

	// повтор задачи выполняет проход, который ждали оба сигнала
	rq.NoError(c.OnNewTrade(ctx))
	rq.Equal(int32(2), transport.fetches.Load())
}

type flakyInventory struct {
	calls atomic.Int32
}

func (f *flakyInventory) FetchOwnInventory(_ context.Context, filter func(entity.Item) bool) ([]entity.Item, error) {
	if f.calls.Add(1) == 1 {
		return nil, context.DeadlineExceeded
	}

	inventory := []entity.Item{card(1, 1)}

	var result []entity.Item

	for _, item := range inventory {
		if filter(item) {
			result = append(result, item)
		}
	}

	return result, nil
}

type noBlacklist struct{}

func (noBlacklist) IsBlacklisted(context.Context, string, uint64) (bool, error) { return false, nil }

type noAccess struct{}

func (noAccess) HasMasterAccess(uint64) bool  { return false }
func (noAccess) IsManagedAccount(uint64) bool { return false }

type noHold struct{}

func (noHold) GetTradeHoldDuration(context.Context, uint64, uint64) (uint8, error) { return 0, nil }

func TestCoordinatorRetryThenAccept(t *testing.T) {
	rq := require.New(t)

	transport := &fakeTransport{}
	transport.setOffers(activeOffer(1))

	policy := entity.TradingPolicy{
		TradeMatching:    true,
		MaxTradeHoldDays: 15,
		MatchableTypes:   value.NewItemTypes(value.ItemTypeTradingCard),
	}

	inventory := &flakyInventory{}
	observer := &fakeObserver{}
	c := exchange.NewCoordinator(
		botName,
		transport,
		classifier.NewClassifier(botName, policy, noBlacklist{}, noAccess{}, noHold{}, inventory),
		&fakeLock{},
	).WithObserver(observer)

	ctx := context.Background()

	c.OnNewTrade(ctx)
	rq.Equal(value.OutcomeTryAgain, observer.last()[0].Outcome)
	rq.Zero(c.Status().Processed)
	rq.Empty(transport.accepted)

	c.OnNewTrade(ctx)
	rq.Equal(value.OutcomeAccepted, observer.last()[0].Outcome)
	rq.True(observer.last()[0].Confirmed)
	rq.Equal([]uint64{1}, transport.accepted)
}
