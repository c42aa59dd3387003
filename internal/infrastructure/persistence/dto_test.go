package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
)

func TestTradeResultSchema(t *testing.T) {
	rq := require.New(t)

	processedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := entity.TradeResult{
		OfferID:        5000000001,
		CounterpartyID: 76561198000000001,
		Outcome:        value.OutcomeAccepted,
		Confirmed:      true,
		ItemsToGive: []entity.Item{{
			AppID: entity.CommunityAppID, ContextID: entity.CommunityContextID,
			ClassID: 11, Amount: 1, RealAppID: 570, Type: value.ItemTypeTradingCard, Rarity: value.RarityCommon,
		}},
		ProcessedAt: processedAt,
	}

	schema, err := newTradeResultSchema("main", result)
	rq.NoError(err)
	rq.Equal("main", schema.BotName)
	rq.Equal("Accepted", schema.Outcome)
	rq.JSONEq(`[]`, string(schema.ItemsToReceive))

	restored, err := schema.toDomain()
	rq.NoError(err)
	rq.Equal(result.OfferID, restored.OfferID)
	rq.Equal(result.Outcome, restored.Outcome)
	rq.Equal(result.ItemsToGive, restored.ItemsToGive)
	rq.Empty(restored.ItemsToReceive)
	rq.Equal(processedAt, restored.ProcessedAt)
}

func TestParseOutcome(t *testing.T) {
	rq := require.New(t)

	rq.Equal(value.OutcomeTryAgain, parseOutcome("TryAgain"))
	rq.Equal(value.OutcomeBlacklisted, parseOutcome("Blacklisted"))
	rq.Equal(value.OutcomeUnknown, parseOutcome("Whatever"))
}
