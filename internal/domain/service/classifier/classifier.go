// Package classifier решает, что делать с входящим оффером.
package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/fairness"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/logx"
)

type Blacklist interface {
	IsBlacklisted(ctx context.Context, botName string, counterpartyID uint64) (bool, error)
}

type AccessChecker interface {
	HasMasterAccess(counterpartyID uint64) bool
	// IsManagedAccount: контрагент сам является одним из наших ботов.
	IsManagedAccount(counterpartyID uint64) bool
}

type ReputationService interface {
	// IsKnownBadActor возвращает ошибку, если ответ не получен.
	IsKnownBadActor(ctx context.Context, counterpartyID uint64) (bool, error)
}

type TradeHoldLookup interface {
	// GetTradeHoldDuration возвращает холд в днях; ошибка означает, что он неизвестен.
	GetTradeHoldDuration(ctx context.Context, counterpartyID, offerID uint64) (uint8, error)
}

type InventorySource interface {
	FetchOwnInventory(ctx context.Context, filter func(entity.Item) bool) ([]entity.Item, error)
}

// DecisionOverride может перевернуть отказ в Accepted. Любой другой
// возвращённый исход означает «оставить как есть».
type DecisionOverride interface {
	OnOfferAboutToBeRejected(
		ctx context.Context,
		botName string,
		offer entity.TradeOffer,
		proposed value.Outcome,
	) value.Outcome
}

type Classifier struct {
	botName    string
	policy     entity.TradingPolicy
	blacklist  Blacklist
	access     AccessChecker
	holds      TradeHoldLookup
	inventory  InventorySource
	reputation ReputationService
	override   DecisionOverride
}

func NewClassifier(
	botName string,
	policy entity.TradingPolicy,
	blacklist Blacklist,
	access AccessChecker,
	holds TradeHoldLookup,
	inventory InventorySource,
) *Classifier {
	return &Classifier{
		botName:   botName,
		policy:    policy,
		blacklist: blacklist,
		access:    access,
		holds:     holds,
		inventory: inventory,
	}
}

func (c *Classifier) WithReputation(reputation ReputationService) *Classifier {
	c.reputation = reputation
	return c
}

func (c *Classifier) WithOverride(override DecisionOverride) *Classifier {
	c.override = override
	return c
}

func (c *Classifier) Policy() entity.TradingPolicy {
	return c.policy
}

type verdict struct {
	outcome value.Outcome
	reason  string
}

// Classify возвращает исход для оффера. Ошибка возвращается только при
// нарушении инварианта оценки (например, отдаём то, чего нет в инвентаре).
func (c *Classifier) Classify(ctx context.Context, offer entity.TradeOffer) (value.Outcome, error) {
	v, err := c.decide(ctx, offer)
	if err != nil {
		return value.OutcomeUnknown, fmt.Errorf("classify offer %d: %w", offer.OfferID, err)
	}

	if v.outcome.IsOverridable() && c.override != nil {
		if c.override.OnOfferAboutToBeRejected(ctx, c.botName, offer, v.outcome) == value.OutcomeAccepted {
			v = verdict{outcome: value.OutcomeAccepted, reason: "override"}
		}
	}

	logger(ctx).Debug("offer classified",
		slog.Uint64(logx.FieldOfferID, offer.OfferID),
		slog.Uint64(logx.FieldCounterpartyID, offer.CounterpartyID),
		logx.Stringer(logx.FieldOutcome, v.outcome),
		slog.String("reason", v.reason),
	)

	return v.outcome, nil
}

//nolint:cyclop,funlen
func (c *Classifier) decide(ctx context.Context, offer entity.TradeOffer) (verdict, error) {
	counterparty := offer.CounterpartyID

	if counterparty != 0 {
		blacklisted, err := c.blacklist.IsBlacklisted(ctx, c.botName, counterparty)
		if err != nil {
			logger(ctx).Warn("blacklist lookup failed", logx.Error(err))
			return verdict{value.OutcomeTryAgain, "blacklist unavailable"}, nil
		}

		if blacklisted {
			return verdict{value.OutcomeBlacklisted, "blacklisted"}, nil
		}

		if c.access.HasMasterAccess(counterparty) {
			return verdict{value.OutcomeAccepted, "master access"}, nil
		}

		if c.isKnownBadActor(ctx, counterparty) {
			return verdict{value.OutcomeBlacklisted, "reputation"}, nil
		}
	}

	if offer.IsEmpty() {
		return verdict{value.OutcomeTryAgain, "empty offer"}, nil
	}

	if offer.IsDonation() {
		return c.decideDonation(offer), nil
	}

	if !c.policy.TradeMatching {
		return verdict{value.OutcomeRejected, "trade matching disabled"}, nil
	}

	if len(offer.ItemsToGive) > len(offer.ItemsToReceive) {
		return verdict{value.OutcomeRejected, "giving more items than receiving"}, nil
	}

	validRequest, err := offer.IsValidItemsRequest(c.policy.MatchableTypes)
	if err != nil {
		return verdict{}, fmt.Errorf("valid items request: %w", err)
	}

	if !validRequest {
		return verdict{value.OutcomeRejected, "items outside matchable types"}, nil
	}

	fair, err := fairness.IsFairExchange(offer.ItemsToGive, offer.ItemsToReceive)
	if err != nil {
		return verdict{}, fmt.Errorf("fair exchange: %w", err)
	}

	if !fair {
		return verdict{value.OutcomeRejected, "unfair exchange"}, nil
	}

	hold, err := c.holds.GetTradeHoldDuration(ctx, counterparty, offer.OfferID)
	if err != nil {
		logger(ctx).Debug("trade hold unknown", slog.Uint64(logx.FieldOfferID, offer.OfferID), logx.Error(err))
		return verdict{value.OutcomeTryAgain, "trade hold unknown"}, nil
	}

	if hold > 0 && (hold > c.policy.MaxTradeHoldDays || c.givesVolatileItems(offer)) {
		return verdict{value.OutcomeRejected, fmt.Sprintf("trade hold %d days", hold)}, nil
	}

	if c.policy.MatchEverything {
		return verdict{value.OutcomeAccepted, "match everything"}, nil
	}

	return c.decideByInventory(ctx, offer)
}

func (c *Classifier) isKnownBadActor(ctx context.Context, counterparty uint64) bool {
	if !c.policy.ReputationFilter || c.reputation == nil {
		return false
	}

	if c.policy.ReputationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.ReputationTimeout)
		defer cancel()
	}

	bad, err := c.reputation.IsKnownBadActor(ctx, counterparty)
	if err != nil {
		// нет ответа: не считаем плохим
		logger(ctx).Debug("reputation lookup inconclusive",
			slog.Uint64(logx.FieldCounterpartyID, counterparty),
			logx.Error(err),
		)

		return false
	}

	return bad
}

func (c *Classifier) decideDonation(offer entity.TradeOffer) verdict {
	acceptDonations := c.policy.AcceptDonations
	acceptBotTrades := c.policy.AcceptBotTrades

	switch {
	case acceptDonations && acceptBotTrades:
		return verdict{value.OutcomeAccepted, "donation"}
	case !acceptDonations && !acceptBotTrades:
		return verdict{value.OutcomeRejected, "donations disabled"}
	}

	isBotTrade := offer.CounterpartyID != 0 && c.access.IsManagedAccount(offer.CounterpartyID)
	if (acceptDonations && !isBotTrade) || (acceptBotTrades && isBotTrade) {
		return verdict{value.OutcomeAccepted, fmt.Sprintf("donation, bot trade: %t", isBotTrade)}
	}

	return verdict{value.OutcomeRejected, fmt.Sprintf("donation, bot trade: %t", isBotTrade)}
}

func (c *Classifier) givesVolatileItems(offer entity.TradeOffer) bool {
	for _, item := range offer.ItemsToGive {
		if c.policy.IsVolatile(item) {
			return true
		}
	}

	return false
}

func (c *Classifier) decideByInventory(ctx context.Context, offer entity.TradeOffer) (verdict, error) {
	wanted := make(map[value.SetKey]struct{}, len(offer.ItemsToGive))
	for _, item := range offer.ItemsToGive {
		wanted[item.SetKey()] = struct{}{}
	}

	inventory, err := c.inventory.FetchOwnInventory(ctx, func(item entity.Item) bool {
		_, ok := wanted[item.SetKey()]
		return ok
	})
	if err != nil {
		logger(ctx).Warn("inventory fetch failed", logx.Error(err))
		return verdict{value.OutcomeTryAgain, "inventory unavailable"}, nil
	}

	if len(inventory) == 0 {
		logger(ctx).Warn("inventory is empty", slog.Uint64(logx.FieldOfferID, offer.OfferID))
		return verdict{value.OutcomeTryAgain, "inventory empty"}, nil
	}

	neutral, err := fairness.IsNeutralOrBetter(inventory, offer.ItemsToGive, offer.ItemsToReceive)
	if err != nil {
		return verdict{}, fmt.Errorf("neutral or better: %w", err)
	}

	if neutral {
		return verdict{value.OutcomeAccepted, "neutral or better"}, nil
	}

	return verdict{value.OutcomeRejected, "not neutral"}, nil
}
