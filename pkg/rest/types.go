// Модели операторского REST API.
package rest

import "time"

type TradeStatistics struct {
	AcceptedOffers    int `json:"acceptedOffers"`
	ConfirmedOffers   int `json:"confirmedOffers"`
	RejectedOffers    int `json:"rejectedOffers"`
	BlacklistedOffers int `json:"blacklistedOffers"`
	IgnoredOffers     int `json:"ignoredOffers"`
	ItemsGiven        int `json:"itemsGiven"`
	ItemsReceived     int `json:"itemsReceived"`
}

type BotStatus struct {
	Bot        string          `json:"bot"`
	Scheduled  bool            `json:"scheduled"`
	Processed  int             `json:"processed"`
	Passes     uint64          `json:"passes"`
	LastPassAt *time.Time      `json:"lastPassAt,omitempty"`
	Stats      TradeStatistics `json:"stats"`
}

type Item struct {
	AppID      uint32 `json:"appId"`
	ContextID  string `json:"contextId"`
	ClassID    string `json:"classId"`
	InstanceID string `json:"instanceId"`
	Amount     uint32 `json:"amount"`
	RealAppID  uint32 `json:"realAppId"`
	Type       string `json:"type"`
	Rarity     string `json:"rarity"`
}

type TradeResult struct {
	OfferID        string    `json:"offerId"`
	CounterpartyID string    `json:"counterpartyId"`
	Outcome        string    `json:"outcome"`
	Confirmed      bool      `json:"confirmed"`
	ItemsToGive    []Item    `json:"itemsToGive"`
	ItemsToReceive []Item    `json:"itemsToReceive"`
	ProcessedAt    time.Time `json:"processedAt"`
}

type BlacklistEntry struct {
	SteamID   string    `json:"steamId"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BlacklistRequest struct {
	SteamID string `json:"steamId" validate:"required,numeric"`
	Reason  string `json:"reason" validate:"max=256"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
