package entity

import (
	"time"

	"trade_exchange/internal/domain/value"
)

// TradeResult: итог разбора одного оффера, уходит наблюдателям.
type TradeResult struct {
	OfferID        uint64        `json:"offerId" db:"offer_id"`
	CounterpartyID uint64        `json:"counterpartyId" db:"counterparty_id"`
	Outcome        value.Outcome `json:"outcome" db:"outcome"`
	Confirmed      bool          `json:"confirmed" db:"confirmed"`
	ItemsToGive    []Item        `json:"itemsToGive"`
	ItemsToReceive []Item        `json:"itemsToReceive"`
	ProcessedAt    time.Time     `json:"processedAt" db:"processed_at"`
}

func NewTradeResult(offer TradeOffer, outcome value.Outcome) TradeResult {
	return TradeResult{
		OfferID:        offer.OfferID,
		CounterpartyID: offer.CounterpartyID,
		Outcome:        outcome,
		ItemsToGive:    offer.ItemsToGive,
		ItemsToReceive: offer.ItemsToReceive,
		ProcessedAt:    time.Now().UTC(),
	}
}

// ReceivedItemTypes возвращает множество типов полученных предметов.
func (r TradeResult) ReceivedItemTypes() value.ItemTypes {
	types := make(value.ItemTypes, len(r.ItemsToReceive))
	for _, item := range r.ItemsToReceive {
		types[item.Type] = struct{}{}
	}

	return types
}

// IsDonation: получили больше, чем отдали.
func (r TradeResult) IsDonation() bool {
	return TotalAmount(r.ItemsToReceive) > TotalAmount(r.ItemsToGive)
}
