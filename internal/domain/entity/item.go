package entity

import "trade_exchange/internal/domain/value"

const (
	// CommunityAppID и CommunityContextID: приложение и контекст, в которых
	// живут коллекционные предметы сообщества.
	CommunityAppID     uint32 = 753
	CommunityContextID uint64 = 6
)

// Item: предмет в инвентаре или в оффере.
type Item struct {
	AppID      uint32         `json:"appId"`
	ContextID  uint64         `json:"contextId"`
	ClassID    uint64         `json:"classId"`
	InstanceID uint64         `json:"instanceId"`
	AssetID    uint64         `json:"assetId"`
	Amount     uint32         `json:"amount"`
	Tradable   bool           `json:"tradable"`
	Marketable bool           `json:"marketable"`
	RealAppID  uint32         `json:"realAppId"`
	Type       value.ItemType `json:"type"`
	Rarity     value.Rarity   `json:"rarity"`
}

// SetKey возвращает коллекцию, к которой относится предмет.
func (i Item) SetKey() value.SetKey {
	return value.SetKey{RealAppID: i.RealAppID, Type: i.Type, Rarity: i.Rarity}
}

// SameDefinition сравнивает предметы по (AppID, ClassID, InstanceID).
func (i Item) SameDefinition(other Item) bool {
	return i.AppID == other.AppID && i.ClassID == other.ClassID && i.InstanceID == other.InstanceID
}

// IsCommunityItem: предмет из приложения и контекста сообщества.
func (i Item) IsCommunityItem() bool {
	return i.AppID == CommunityAppID && i.ContextID == CommunityContextID
}

// CloneItems делает глубокую копию среза предметов.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}

	cloned := make([]Item, len(items))
	copy(cloned, items)

	return cloned
}

// TotalAmount суммирует Amount по всем предметам.
func TotalAmount(items []Item) uint64 {
	var total uint64
	for _, item := range items {
		total += uint64(item.Amount)
	}

	return total
}
