package classifier_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/classifier"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/errcodes"
)

const (
	botName      = "main"
	stranger     = uint64(76561198000000001)
	master       = uint64(76561198000000002)
	otherBot     = uint64(76561198000000003)
	badActor     = uint64(76561198000000004)
	blacklisted  = uint64(76561198000000005)
	realApp      = uint32(10)
	volatileApp  = uint32(20)
	defaultOffer = uint64(1001)
)

var errRemote = errors.New("remote unavailable")

type fakeBlacklist struct {
	ids map[uint64]bool
	err error
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, _ string, id uint64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}

	return f.ids[id], nil
}

type fakeAccess struct{}

func (fakeAccess) HasMasterAccess(id uint64) bool  { return id == master }
func (fakeAccess) IsManagedAccount(id uint64) bool { return id == otherBot }

type fakeReputation struct {
	err   error
	calls atomic.Int32
}

func (f *fakeReputation) IsKnownBadActor(_ context.Context, id uint64) (bool, error) {
	f.calls.Add(1)

	if f.err != nil {
		return false, f.err
	}

	return id == badActor, nil
}

type fakeHolds struct {
	days uint8
	err  error
}

func (f *fakeHolds) GetTradeHoldDuration(context.Context, uint64, uint64) (uint8, error) {
	return f.days, f.err
}

type fakeInventory struct {
	items []entity.Item
	err   error
	calls atomic.Int32
}

func (f *fakeInventory) FetchOwnInventory(_ context.Context, filter func(entity.Item) bool) ([]entity.Item, error) {
	f.calls.Add(1)

	if f.err != nil {
		return nil, f.err
	}

	var result []entity.Item

	for _, item := range f.items {
		if filter(item) {
			result = append(result, item)
		}
	}

	return result, nil
}

type fakeOverride struct {
	answer value.Outcome
	calls  atomic.Int32
}

func (f *fakeOverride) OnOfferAboutToBeRejected(context.Context, string, entity.TradeOffer, value.Outcome) value.Outcome {
	f.calls.Add(1)
	return f.answer
}

func card(classID uint64, amount uint32, realAppID uint32) entity.Item {
	return entity.Item{
		AppID:     entity.CommunityAppID,
		ContextID: entity.CommunityContextID,
		ClassID:   classID,
		Amount:    amount,
		Tradable:  true,
		RealAppID: realAppID,
		Type:      value.ItemTypeTradingCard,
		Rarity:    value.RarityCommon,
	}
}

func matchingPolicy() entity.TradingPolicy {
	return entity.TradingPolicy{
		AcceptDonations:  true,
		AcceptBotTrades:  true,
		TradeMatching:    true,
		MaxTradeHoldDays: 15,
		MatchableTypes:   value.NewItemTypes(value.ItemTypeTradingCard, value.ItemTypeFoilTradingCard),
		VolatileAppIDs:   map[uint32]struct{}{volatileApp: {}},
	}
}

func offer(counterparty uint64, give, receive []entity.Item) entity.TradeOffer {
	return entity.TradeOffer{
		OfferID:        defaultOffer,
		CounterpartyID: counterparty,
		State:          value.OfferStateActive,
		ItemsToGive:    give,
		ItemsToReceive: receive,
	}
}

func TestClassify(t *testing.T) {
	oneForOne := offer(stranger, []entity.Item{card(1, 1, realApp)}, []entity.Item{card(2, 1, realApp)})
	donation := offer(stranger, nil, []entity.Item{card(2, 1, realApp)})

	testCases := []struct {
		name           string
		policy         func(p *entity.TradingPolicy)
		offer          entity.TradeOffer
		blacklistErr   error
		reputationErr  error
		holdDays       uint8
		holdErr        error
		inventory      []entity.Item
		inventoryErr   error
		want           value.Outcome
		inventoryCalls int32
	}{
		{
			name:  "Own blacklist",
			offer: offer(blacklisted, nil, []entity.Item{card(2, 1, realApp)}),
			want:  value.OutcomeBlacklisted,
		},
		{
			name:         "Blacklist lookup failure retries",
			offer:        oneForOne,
			blacklistErr: errRemote,
			want:         value.OutcomeTryAgain,
		},
		{
			name:  "Master access accepts anything",
			offer: offer(master, []entity.Item{card(1, 5, realApp)}, nil),
			want:  value.OutcomeAccepted,
		},
		{
			name:   "Reputation filter blacklists bad actor",
			policy: func(p *entity.TradingPolicy) { p.ReputationFilter = true },
			offer:  offer(badActor, nil, []entity.Item{card(2, 1, realApp)}),
			want:   value.OutcomeBlacklisted,
		},
		{
			name:          "Inconclusive reputation is not bad",
			policy:        func(p *entity.TradingPolicy) { p.ReputationFilter = true },
			offer:         offer(badActor, nil, []entity.Item{card(2, 1, realApp)}),
			reputationErr: errRemote,
			want:          value.OutcomeAccepted,
		},
		{
			name:  "Reputation ignored when filter disabled",
			offer: offer(badActor, nil, []entity.Item{card(2, 1, realApp)}),
			want:  value.OutcomeAccepted,
		},
		{
			name:  "Empty offer retries",
			offer: offer(stranger, nil, nil),
			want:  value.OutcomeTryAgain,
		},
		{
			name:  "Donation accepted",
			offer: donation,
			want:  value.OutcomeAccepted,
		},
		{
			name: "Donation rejected when both disabled",
			policy: func(p *entity.TradingPolicy) {
				p.AcceptDonations = false
				p.AcceptBotTrades = false
			},
			offer: donation,
			want:  value.OutcomeRejected,
		},
		{
			name:   "Donation from stranger without bot trades",
			policy: func(p *entity.TradingPolicy) { p.AcceptBotTrades = false },
			offer:  donation,
			want:   value.OutcomeAccepted,
		},
		{
			name:   "Donation from bot without bot trades",
			policy: func(p *entity.TradingPolicy) { p.AcceptBotTrades = false },
			offer:  offer(otherBot, nil, []entity.Item{card(2, 1, realApp)}),
			want:   value.OutcomeRejected,
		},
		{
			name:   "Bot trade without donations",
			policy: func(p *entity.TradingPolicy) { p.AcceptDonations = false },
			offer:  offer(otherBot, nil, []entity.Item{card(2, 1, realApp)}),
			want:   value.OutcomeAccepted,
		},
		{
			name:   "Stranger donation without donations",
			policy: func(p *entity.TradingPolicy) { p.AcceptDonations = false },
			offer:  donation,
			want:   value.OutcomeRejected,
		},
		{
			name:   "Trade matching disabled",
			policy: func(p *entity.TradingPolicy) { p.TradeMatching = false },
			offer:  oneForOne,
			want:   value.OutcomeRejected,
		},
		{
			name:  "Giving more items than receiving",
			offer: offer(stranger, []entity.Item{card(1, 1, realApp), card(3, 1, realApp)}, []entity.Item{card(2, 1, realApp)}),
			want:  value.OutcomeRejected,
		},
		{
			name: "Requested type is not matchable",
			offer: offer(stranger,
				[]entity.Item{{AppID: entity.CommunityAppID, ContextID: entity.CommunityContextID, ClassID: 1, Amount: 1, RealAppID: realApp, Type: value.ItemTypeEmoticon}},
				[]entity.Item{{AppID: entity.CommunityAppID, ContextID: entity.CommunityContextID, ClassID: 2, Amount: 1, RealAppID: realApp, Type: value.ItemTypeEmoticon}},
			),
			want: value.OutcomeRejected,
		},
		{
			name: "Requested item from another app",
			offer: offer(stranger,
				[]entity.Item{{AppID: 440, ContextID: 2, ClassID: 1, Amount: 1, RealAppID: realApp, Type: value.ItemTypeTradingCard}},
				[]entity.Item{card(2, 1, realApp)},
			),
			want: value.OutcomeRejected,
		},
		{
			name:  "Unfair count by quantity",
			offer: offer(stranger, []entity.Item{card(1, 2, realApp)}, []entity.Item{card(2, 1, realApp)}),
			want:  value.OutcomeRejected,
		},
		{
			name:    "Unknown trade hold retries",
			offer:   oneForOne,
			holdErr: errRemote,
			want:    value.OutcomeTryAgain,
		},
		{
			name:     "Trade hold exceeds maximum",
			offer:    oneForOne,
			holdDays: 20,
			want:     value.OutcomeRejected,
		},
		{
			name:     "Volatile cards under hold",
			offer:    offer(stranger, []entity.Item{card(1, 1, volatileApp)}, []entity.Item{card(2, 1, volatileApp)}),
			holdDays: 3,
			want:     value.OutcomeRejected,
		},
		{
			name:           "Volatile cards without hold",
			offer:          offer(stranger, []entity.Item{card(1, 1, volatileApp)}, []entity.Item{card(2, 1, volatileApp)}),
			inventory:      []entity.Item{card(1, 2, volatileApp)},
			want:           value.OutcomeAccepted,
			inventoryCalls: 1,
		},
		{
			name:   "Match everything skips inventory",
			policy: func(p *entity.TradingPolicy) { p.MatchEverything = true },
			offer:  oneForOne,
			want:   value.OutcomeAccepted,
		},
		{
			name:           "Inventory fetch failure retries",
			offer:          oneForOne,
			inventoryErr:   errRemote,
			want:           value.OutcomeTryAgain,
			inventoryCalls: 1,
		},
		{
			name:           "Empty inventory retries",
			offer:          oneForOne,
			inventory:      []entity.Item{card(9, 1, realApp+1)},
			want:           value.OutcomeTryAgain,
			inventoryCalls: 1,
		},
		{
			name:           "Neutral trade accepted",
			offer:          oneForOne,
			inventory:      []entity.Item{card(1, 1, realApp)},
			want:           value.OutcomeAccepted,
			inventoryCalls: 1,
		},
		{
			name:           "Diversity loss rejected",
			offer:          oneForOne,
			inventory:      []entity.Item{card(1, 1, realApp), card(2, 1, realApp)},
			want:           value.OutcomeRejected,
			inventoryCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			policy := matchingPolicy()
			if tc.policy != nil {
				tc.policy(&policy)
			}

			inventory := &fakeInventory{items: tc.inventory, err: tc.inventoryErr}

			c := classifier.NewClassifier(
				botName,
				policy,
				&fakeBlacklist{ids: map[uint64]bool{blacklisted: true}, err: tc.blacklistErr},
				fakeAccess{},
				&fakeHolds{days: tc.holdDays, err: tc.holdErr},
				inventory,
			).WithReputation(&fakeReputation{err: tc.reputationErr})

			got, err := c.Classify(context.Background(), tc.offer)
			rq.NoError(err)
			rq.Equal(tc.want, got)
			rq.Equal(tc.inventoryCalls, inventory.calls.Load())
		})
	}
}

func TestClassifyUnfairCountNeverReadsInventory(t *testing.T) {
	rq := require.New(t)

	inventory := &fakeInventory{items: []entity.Item{card(1, 1, realApp), card(1, 1, realApp)}}

	c := classifier.NewClassifier(botName, matchingPolicy(), &fakeBlacklist{}, fakeAccess{}, &fakeHolds{}, inventory)

	got, err := c.Classify(context.Background(), offer(stranger,
		[]entity.Item{card(1, 1, realApp), card(1, 1, realApp)},
		[]entity.Item{card(2, 1, realApp), card(3, 1, realApp+1)},
	))
	rq.NoError(err)
	rq.Equal(value.OutcomeRejected, got)
	rq.Zero(inventory.calls.Load())
}

func TestClassifyTradeHoldBeatsFairness(t *testing.T) {
	rq := require.New(t)

	inventory := &fakeInventory{items: []entity.Item{card(1, 1, realApp)}}
	c := classifier.NewClassifier(botName, matchingPolicy(), &fakeBlacklist{}, fakeAccess{}, &fakeHolds{days: 20}, inventory)

	got, err := c.Classify(context.Background(), offer(stranger, []entity.Item{card(1, 1, realApp)}, []entity.Item{card(2, 1, realApp)}))
	rq.NoError(err)
	rq.Equal(value.OutcomeRejected, got)
	rq.Zero(inventory.calls.Load())
}

func TestClassifyOverride(t *testing.T) {
	testCases := []struct {
		name      string
		offer     entity.TradeOffer
		answer    value.Outcome
		want      value.Outcome
		wantCalls int32
	}{
		{
			name:      "Rejected flipped to accepted",
			offer:     offer(stranger, []entity.Item{card(1, 2, realApp)}, []entity.Item{card(2, 1, realApp)}),
			answer:    value.OutcomeAccepted,
			want:      value.OutcomeAccepted,
			wantCalls: 1,
		},
		{
			name:      "Blacklisted flipped to accepted",
			offer:     offer(blacklisted, nil, []entity.Item{card(2, 1, realApp)}),
			answer:    value.OutcomeAccepted,
			want:      value.OutcomeAccepted,
			wantCalls: 1,
		},
		{
			name:      "Override keeps rejection",
			offer:     offer(stranger, []entity.Item{card(1, 2, realApp)}, []entity.Item{card(2, 1, realApp)}),
			answer:    value.OutcomeRejected,
			want:      value.OutcomeRejected,
			wantCalls: 1,
		},
		{
			name:      "Override cannot turn rejection into retry",
			offer:     offer(stranger, []entity.Item{card(1, 2, realApp)}, []entity.Item{card(2, 1, realApp)}),
			answer:    value.OutcomeTryAgain,
			want:      value.OutcomeRejected,
			wantCalls: 1,
		},
		{
			name:      "Not asked for accepted offers",
			offer:     offer(master, []entity.Item{card(1, 1, realApp)}, nil),
			answer:    value.OutcomeRejected,
			want:      value.OutcomeAccepted,
			wantCalls: 0,
		},
		{
			name:      "Not asked for retries",
			offer:     offer(stranger, nil, nil),
			answer:    value.OutcomeAccepted,
			want:      value.OutcomeTryAgain,
			wantCalls: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			override := &fakeOverride{answer: tc.answer}
			c := classifier.NewClassifier(
				botName,
				matchingPolicy(),
				&fakeBlacklist{ids: map[uint64]bool{blacklisted: true}},
				fakeAccess{},
				&fakeHolds{},
				&fakeInventory{},
			).WithOverride(override)

			got, err := c.Classify(context.Background(), tc.offer)
			rq.NoError(err)
			rq.Equal(tc.want, got)
			rq.Equal(tc.wantCalls, override.calls.Load())
		})
	}
}

func TestClassifyInvariantViolation(t *testing.T) {
	rq := require.New(t)

	// инвентарь не содержит отдаваемый предмет, хотя коллекция совпадает
	c := classifier.NewClassifier(
		botName,
		matchingPolicy(),
		&fakeBlacklist{},
		fakeAccess{},
		&fakeHolds{},
		&fakeInventory{items: []entity.Item{card(7, 1, realApp)}},
	)

	_, err := c.Classify(context.Background(), offer(stranger, []entity.Item{card(1, 1, realApp)}, []entity.Item{card(2, 1, realApp)}))
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.InventoryInvariantViolation))
}

type slowReputation struct{}

func (slowReputation) IsKnownBadActor(ctx context.Context, _ uint64) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func TestClassifyReputationTimeout(t *testing.T) {
	rq := require.New(t)

	policy := matchingPolicy()
	policy.ReputationFilter = true
	policy.ReputationTimeout = 10 * time.Millisecond

	c := classifier.NewClassifier(botName, policy, &fakeBlacklist{}, fakeAccess{}, &fakeHolds{}, &fakeInventory{}).
		WithReputation(slowReputation{})

	got, err := c.Classify(context.Background(), offer(badActor, nil, []entity.Item{card(2, 1, realApp)}))
	rq.NoError(err)
	rq.Equal(value.OutcomeAccepted, got)
}
