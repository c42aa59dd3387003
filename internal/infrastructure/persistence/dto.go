package persistence

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// tradeResultSchema: строка таблицы trade_results.
type tradeResultSchema struct {
	ID             int64     `db:"id"`
	BotName        string    `db:"bot_name"`
	OfferID        int64     `db:"offer_id"`
	CounterpartyID int64     `db:"counterparty_id"`
	Outcome        string    `db:"outcome"`
	Confirmed      bool      `db:"confirmed"`
	ItemsToGive    []byte    `db:"items_to_give"`
	ItemsToReceive []byte    `db:"items_to_receive"`
	ProcessedAt    time.Time `db:"processed_at"`
}

func newTradeResultSchema(botName string, r entity.TradeResult) (tradeResultSchema, error) {
	give, err := json.Marshal(itemsOrEmpty(r.ItemsToGive))
	if err != nil {
		return tradeResultSchema{}, fmt.Errorf("marshal items to give: %w", err)
	}

	receive, err := json.Marshal(itemsOrEmpty(r.ItemsToReceive))
	if err != nil {
		return tradeResultSchema{}, fmt.Errorf("marshal items to receive: %w", err)
	}

	processedAt := r.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}

	return tradeResultSchema{
		BotName:        botName,
		OfferID:        int64(r.OfferID),        //nolint:gosec
		CounterpartyID: int64(r.CounterpartyID), //nolint:gosec
		Outcome:        r.Outcome.String(),
		Confirmed:      r.Confirmed,
		ItemsToGive:    give,
		ItemsToReceive: receive,
		ProcessedAt:    processedAt,
	}, nil
}

func (s tradeResultSchema) toDomain() (entity.TradeResult, error) {
	var give, receive []entity.Item

	if err := json.Unmarshal(s.ItemsToGive, &give); err != nil {
		return entity.TradeResult{}, fmt.Errorf("unmarshal items to give: %w", err)
	}

	if err := json.Unmarshal(s.ItemsToReceive, &receive); err != nil {
		return entity.TradeResult{}, fmt.Errorf("unmarshal items to receive: %w", err)
	}

	return entity.TradeResult{
		OfferID:        uint64(s.OfferID),        //nolint:gosec
		CounterpartyID: uint64(s.CounterpartyID), //nolint:gosec
		Outcome:        parseOutcome(s.Outcome),
		Confirmed:      s.Confirmed,
		ItemsToGive:    give,
		ItemsToReceive: receive,
		ProcessedAt:    s.ProcessedAt,
	}, nil
}

func itemsOrEmpty(items []entity.Item) []entity.Item {
	if items == nil {
		return []entity.Item{}
	}

	return items
}

func parseOutcome(s string) value.Outcome {
	for o := value.OutcomeAccepted; o <= value.OutcomeTryAgain; o++ {
		if o.String() == s {
			return o
		}
	}

	return value.OutcomeUnknown
}

// blacklistSchema: строка таблицы trade_blacklist.
type blacklistSchema struct {
	BotName   string    `db:"bot_name"`
	SteamID   int64     `db:"steam_id"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

func (s blacklistSchema) toDomain() entity.BlacklistEntry {
	return entity.BlacklistEntry{
		BotName:   s.BotName,
		SteamID:   uint64(s.SteamID), //nolint:gosec
		Reason:    s.Reason,
		CreatedAt: s.CreatedAt,
	}
}
