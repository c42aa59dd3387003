package value

import (
	"fmt"
	"strings"
)

// ItemType: категория предмета.
type ItemType uint8

const (
	ItemTypeUnknown ItemType = iota
	ItemTypeBoosterPack
	ItemTypeEmoticon
	ItemTypeFoilTradingCard
	ItemTypeProfileBackground
	ItemTypeTradingCard
	ItemTypeSteamGems
	ItemTypeSaleItem
	ItemTypeConsumable
	ItemTypeProfileModifier
	ItemTypeSticker
	ItemTypeChatEffect
	ItemTypeMiniProfileBackground
	ItemTypeAvatarProfileFrame
	ItemTypeAnimatedAvatar
)

//nolint:gochecknoglobals
var itemTypeNames = map[ItemType]string{
	ItemTypeUnknown:               "Unknown",
	ItemTypeBoosterPack:           "BoosterPack",
	ItemTypeEmoticon:              "Emoticon",
	ItemTypeFoilTradingCard:       "FoilTradingCard",
	ItemTypeProfileBackground:     "ProfileBackground",
	ItemTypeTradingCard:           "TradingCard",
	ItemTypeSteamGems:             "SteamGems",
	ItemTypeSaleItem:              "SaleItem",
	ItemTypeConsumable:            "Consumable",
	ItemTypeProfileModifier:       "ProfileModifier",
	ItemTypeSticker:               "Sticker",
	ItemTypeChatEffect:            "ChatEffect",
	ItemTypeMiniProfileBackground: "MiniProfileBackground",
	ItemTypeAvatarProfileFrame:    "AvatarProfileFrame",
	ItemTypeAnimatedAvatar:        "AnimatedAvatar",
}

func (t ItemType) String() string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("ItemType(%d)", uint8(t))
}

func ParseItemType(s string) (ItemType, error) {
	for t, name := range itemTypeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return t, nil
		}
	}

	return ItemTypeUnknown, fmt.Errorf("unknown item type %q", s)
}

func (t ItemType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ItemType) UnmarshalText(text []byte) error {
	parsed, err := ParseItemType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// ItemTypes: множество категорий.
type ItemTypes map[ItemType]struct{}

func NewItemTypes(types ...ItemType) ItemTypes {
	set := make(ItemTypes, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}

	return set
}

func (s ItemTypes) Contains(t ItemType) bool {
	_, ok := s[t]
	return ok
}

// ParseItemTypeLenient возвращает ItemTypeUnknown для незнакомых названий.
func ParseItemTypeLenient(s string) ItemType {
	t, err := ParseItemType(s)
	if err != nil {
		return ItemTypeUnknown
	}

	return t
}
