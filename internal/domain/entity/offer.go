package entity

import (
	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/errcodes"
)

// TradeOffer: входящее предложение обмена.
type TradeOffer struct {
	OfferID        uint64           `json:"offerId"`
	CounterpartyID uint64           `json:"counterpartyId"`
	State          value.OfferState `json:"state"`
	ItemsToGive    []Item           `json:"itemsToGive"`
	ItemsToReceive []Item           `json:"itemsToReceive"`
}

func (o TradeOffer) IsActive() bool {
	return o.State == value.OfferStateActive
}

// IsEmpty: обе стороны пустые. Это аномалия транспорта, а не подарок.
func (o TradeOffer) IsEmpty() bool {
	return len(o.ItemsToGive) == 0 && len(o.ItemsToReceive) == 0
}

// IsDonation: нам ничего не нужно отдавать.
func (o TradeOffer) IsDonation() bool {
	return len(o.ItemsToGive) == 0 && len(o.ItemsToReceive) > 0
}

// IsValidItemsRequest проверяет, что все запрошенные у нас предметы
// относятся к сообществу и имеют допустимый тип.
func (o TradeOffer) IsValidItemsRequest(acceptedTypes value.ItemTypes) (bool, error) {
	if len(acceptedTypes) == 0 {
		return false, domain.NewError(errcodes.InvalidTradeInput, "accepted types are empty")
	}

	for _, item := range o.ItemsToGive {
		if !item.IsCommunityItem() || !acceptedTypes.Contains(item.Type) {
			return false, nil
		}
	}

	return true, nil
}
