package value

import (
	"fmt"
	"strings"
)

type Rarity uint8

const (
	RarityUnknown Rarity = iota
	RarityCommon
	RarityUncommon
	RarityRare
)

func (r Rarity) String() string {
	switch r {
	case RarityUnknown:
		return "Unknown"
	case RarityCommon:
		return "Common"
	case RarityUncommon:
		return "Uncommon"
	case RarityRare:
		return "Rare"
	default:
		return fmt.Sprintf("Rarity(%d)", uint8(r))
	}
}

// ParseRarity не возвращает ошибку: неизвестная редкость группируется как Unknown.
func ParseRarity(s string) Rarity {
	for r := RarityCommon; r <= RarityRare; r++ {
		if strings.EqualFold(r.String(), strings.TrimSpace(s)) {
			return r
		}
	}

	return RarityUnknown
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(text []byte) error {
	*r = ParseRarity(string(text))
	return nil
}
