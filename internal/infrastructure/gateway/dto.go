package gateway

import (
	"fmt"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/errcodes"
)

// itemDTO: предмет в ответе шлюза. Идентификаторы приходят строками.
type itemDTO struct {
	AppID      uint32 `json:"appid"`
	ContextID  uint64 `json:"contextid,string"`
	ClassID    uint64 `json:"classid,string"`
	InstanceID uint64 `json:"instanceid,string"`
	AssetID    uint64 `json:"assetid,string"`
	Amount     uint32 `json:"amount,string"`
	Tradable   bool   `json:"tradable"`
	Marketable bool   `json:"marketable"`
	RealAppID  uint32 `json:"realAppId"`
	Type       string `json:"type"`
	Rarity     string `json:"rarity"`
}

func (d itemDTO) toDomain() entity.Item {
	return entity.Item{
		AppID:      d.AppID,
		ContextID:  d.ContextID,
		ClassID:    d.ClassID,
		InstanceID: d.InstanceID,
		AssetID:    d.AssetID,
		Amount:     d.Amount,
		Tradable:   d.Tradable,
		Marketable: d.Marketable,
		RealAppID:  d.RealAppID,
		Type:       value.ParseItemTypeLenient(d.Type),
		Rarity:     value.ParseRarity(d.Rarity),
	}
}

func (d itemDTO) valid() bool {
	return d.ClassID != 0 && d.Amount != 0
}

// toItems: для инвентаря битые записи просто пропускаются.
func toItems(dtos []itemDTO) []entity.Item {
	items := make([]entity.Item, 0, len(dtos))
	for _, d := range dtos {
		if !d.valid() {
			continue
		}

		items = append(items, d.toDomain())
	}

	return items
}

type offerDTO struct {
	TradeOfferID   uint64    `json:"tradeofferid,string"`
	OtherSteamID64 uint64    `json:"otherSteamId64,string"`
	State          uint8     `json:"trade_offer_state"`
	ItemsToGive    []itemDTO `json:"items_to_give"`
	ItemsToReceive []itemDTO `json:"items_to_receive"`
}

// toOfferItems: в оффере битая запись недопустима, иначе оффер
// классифицируется по неполному набору предметов.
func toOfferItems(offerID uint64, side string, dtos []itemDTO) ([]entity.Item, error) {
	items := make([]entity.Item, 0, len(dtos))
	for i, d := range dtos {
		if !d.valid() {
			return nil, domain.NewError(
				errcodes.GatewayBadResponse,
				fmt.Sprintf("offer %d: %s[%d]: classid=%d amount=%d", offerID, side, i, d.ClassID, d.Amount),
			)
		}

		items = append(items, d.toDomain())
	}

	return items, nil
}

func (d offerDTO) toDomain() (entity.TradeOffer, error) {
	give, err := toOfferItems(d.TradeOfferID, "items_to_give", d.ItemsToGive)
	if err != nil {
		return entity.TradeOffer{}, err
	}

	receive, err := toOfferItems(d.TradeOfferID, "items_to_receive", d.ItemsToReceive)
	if err != nil {
		return entity.TradeOffer{}, err
	}

	return entity.TradeOffer{
		OfferID:        d.TradeOfferID,
		CounterpartyID: d.OtherSteamID64,
		State:          value.OfferState(d.State),
		ItemsToGive:    give,
		ItemsToReceive: receive,
	}, nil
}

type offersResponse struct {
	Received []offerDTO `json:"trade_offers_received"`
	Sent     []offerDTO `json:"trade_offers_sent"`
}

type inventoryResponse struct {
	Items []itemDTO `json:"items"`
}

type acceptResponse struct {
	NeedsMobileConfirmation bool `json:"needs_mobile_confirmation"`
}

type tradeHoldResponse struct {
	// Days == nil: шлюз не знает холд.
	Days *uint8 `json:"days"`
}

type confirmRequest struct {
	OfferIDs []string `json:"offerIds"`
}

type confirmResponse struct {
	Success bool `json:"success"`
}

type sendInventoryRequest struct {
	RecipientID string   `json:"recipientId"`
	Types       []string `json:"types"`
}

type sendInventoryResponse struct {
	Sent int `json:"sent"`
}

type statusResponse struct {
	Connected bool `json:"connected"`
}
