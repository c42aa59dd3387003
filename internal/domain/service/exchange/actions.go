package exchange

import (
	"context"
	"log/slog"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/logx"
)

type actionResult struct {
	outcome              value.Outcome
	requiresConfirmation bool
}

type outcomeAction func(c *Coordinator, ctx context.Context, offer entity.TradeOffer, outcome value.Outcome) actionResult

// Таблица действий по исходу. Любая ошибка площадки уходит в retryOffer.
//
//nolint:gochecknoglobals
var outcomeActions = map[value.Outcome]outcomeAction{
	value.OutcomeAccepted:    (*Coordinator).acceptOffer,
	value.OutcomeBlacklisted: (*Coordinator).declineOffer,
	value.OutcomeRejected:    (*Coordinator).rejectOffer,
	value.OutcomeIgnored:     (*Coordinator).ignoreOffer,
	value.OutcomeTryAgain:    (*Coordinator).retryOffer,
}

func (c *Coordinator) execute(ctx context.Context, offer entity.TradeOffer, outcome value.Outcome) actionResult {
	action, ok := outcomeActions[outcome]
	if !ok {
		action = (*Coordinator).retryOffer
	}

	return action(c, ctx, offer, outcome)
}

func (c *Coordinator) acceptOffer(ctx context.Context, offer entity.TradeOffer, outcome value.Outcome) actionResult {
	requiresConfirmation, err := c.transport.AcceptOffer(ctx, offer.OfferID)
	if err != nil {
		logger(ctx).Warn("accept offer failed", slog.Uint64(logx.FieldOfferID, offer.OfferID), logx.Error(err))
		return c.retryOffer(ctx, offer, outcome)
	}

	c.processed.Remove(offer.OfferID)

	if entity.TotalAmount(offer.ItemsToReceive) > entity.TotalAmount(offer.ItemsToGive) {
		logger(ctx).Debug("donation accepted", slog.Uint64(logx.FieldOfferID, offer.OfferID))
	}

	return actionResult{outcome: outcome, requiresConfirmation: requiresConfirmation}
}

func (c *Coordinator) rejectOffer(ctx context.Context, offer entity.TradeOffer, outcome value.Outcome) actionResult {
	if !c.classifier.Policy().RejectInvalidTrades {
		return c.ignoreOffer(ctx, offer, outcome)
	}

	return c.declineOffer(ctx, offer, outcome)
}

func (c *Coordinator) declineOffer(ctx context.Context, offer entity.TradeOffer, outcome value.Outcome) actionResult {
	if err := c.transport.DeclineOffer(ctx, offer.OfferID); err != nil {
		logger(ctx).Warn("decline offer failed", slog.Uint64(logx.FieldOfferID, offer.OfferID), logx.Error(err))
		return c.retryOffer(ctx, offer, outcome)
	}

	c.processed.Remove(offer.OfferID)

	return actionResult{outcome: outcome}
}

// ignoreOffer оставляет ID в наборе: оффер вернётся на следующем проходе.
func (c *Coordinator) ignoreOffer(_ context.Context, _ entity.TradeOffer, outcome value.Outcome) actionResult {
	return actionResult{outcome: outcome}
}

func (c *Coordinator) retryOffer(ctx context.Context, offer entity.TradeOffer, _ value.Outcome) actionResult {
	c.processed.Remove(offer.OfferID)
	return c.ignoreOffer(ctx, offer, value.OutcomeTryAgain)
}
