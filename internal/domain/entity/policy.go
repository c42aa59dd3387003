package entity

import (
	"time"

	"trade_exchange/internal/domain/value"
)

// TradingPolicy: настройки бота, которые читает классификатор.
type TradingPolicy struct {
	AcceptDonations       bool
	AcceptBotTrades       bool
	ReputationFilter      bool
	TradeMatching         bool
	MatchEverything       bool
	RejectInvalidTrades   bool
	MaxTradeHoldDays      uint8
	MatchableTypes        value.ItemTypes
	LootableTypes         value.ItemTypes
	SendOnFarmingFinished bool
	ReputationTimeout     time.Duration
	// VolatileAppIDs: игры, карточки которых нельзя отдавать под холдом.
	VolatileAppIDs map[uint32]struct{}
}

//nolint:gochecknoglobals
var volatileTypes = value.NewItemTypes(value.ItemTypeTradingCard, value.ItemTypeFoilTradingCard)

// IsVolatile сообщает, что предмет нельзя отдавать, пока действует холд.
func (p TradingPolicy) IsVolatile(item Item) bool {
	if !volatileTypes.Contains(item.Type) {
		return false
	}

	_, ok := p.VolatileAppIDs[item.RealAppID]

	return ok
}

// ShouldLoot: полученные типы пересекаются с типами для отправки мастеру.
func (p TradingPolicy) ShouldLoot(received value.ItemTypes) bool {
	if !p.SendOnFarmingFinished || len(p.LootableTypes) == 0 {
		return false
	}

	for t := range received {
		if p.LootableTypes.Contains(t) {
			return true
		}
	}

	return false
}
