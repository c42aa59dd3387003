package entity

import "trade_exchange/internal/domain/value"

// TradeStatistics: накопленные счётчики одного бота.
type TradeStatistics struct {
	AcceptedOffers    int `json:"acceptedOffers"`
	ConfirmedOffers   int `json:"confirmedOffers"`
	RejectedOffers    int `json:"rejectedOffers"`
	BlacklistedOffers int `json:"blacklistedOffers"`
	IgnoredOffers     int `json:"ignoredOffers"`
	ItemsGiven        int `json:"itemsGiven"`
	ItemsReceived     int `json:"itemsReceived"`
}

// Include учитывает один результат. TryAgain не считается.
func (s *TradeStatistics) Include(result TradeResult) {
	switch result.Outcome {
	case value.OutcomeAccepted:
		s.AcceptedOffers++

		if result.Confirmed {
			s.ConfirmedOffers++
			s.ItemsGiven += len(result.ItemsToGive)
			s.ItemsReceived += len(result.ItemsToReceive)
		}
	case value.OutcomeRejected:
		s.RejectedOffers++
	case value.OutcomeBlacklisted:
		s.BlacklistedOffers++
	case value.OutcomeIgnored:
		s.IgnoredOffers++
	}
}
