package server

import (
	"strconv"

	"github.com/samber/lo"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/botops"
	"trade_exchange/pkg/rest"
)

func newRESTBotStatus(status botops.BotStatus) rest.BotStatus {
	out := rest.BotStatus{
		Bot:       status.BotName,
		Scheduled: status.Scheduled,
		Processed: status.Processed,
		Passes:    status.Passes,
		Stats:     rest.TradeStatistics(status.Stats),
	}

	if !status.LastPassAt.IsZero() {
		out.LastPassAt = lo.ToPtr(status.LastPassAt)
	}

	return out
}

func newRESTItem(item entity.Item, _ int) rest.Item {
	return rest.Item{
		AppID:      item.AppID,
		ContextID:  strconv.FormatUint(item.ContextID, 10),
		ClassID:    strconv.FormatUint(item.ClassID, 10),
		InstanceID: strconv.FormatUint(item.InstanceID, 10),
		Amount:     item.Amount,
		RealAppID:  item.RealAppID,
		Type:       item.Type.String(),
		Rarity:     item.Rarity.String(),
	}
}

func newRESTTradeResult(result entity.TradeResult, _ int) rest.TradeResult {
	return rest.TradeResult{
		OfferID:        strconv.FormatUint(result.OfferID, 10),
		CounterpartyID: strconv.FormatUint(result.CounterpartyID, 10),
		Outcome:        result.Outcome.String(),
		Confirmed:      result.Confirmed,
		ItemsToGive:    lo.Map(result.ItemsToGive, newRESTItem),
		ItemsToReceive: lo.Map(result.ItemsToReceive, newRESTItem),
		ProcessedAt:    result.ProcessedAt,
	}
}

func newRESTBlacklistEntry(entry entity.BlacklistEntry, _ int) rest.BlacklistEntry {
	return rest.BlacklistEntry{
		SteamID:   strconv.FormatUint(entry.SteamID, 10),
		Reason:    entry.Reason,
		CreatedAt: entry.CreatedAt,
	}
}
