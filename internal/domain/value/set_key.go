package value

import "fmt"

// SetKey идентифицирует одну коллекцию, которую аккаунт собирает:
// игра (RealAppID), тип и редкость предмета.
type SetKey struct {
	RealAppID uint32
	Type      ItemType
	Rarity    Rarity
}

func (k SetKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.RealAppID, k.Type, k.Rarity)
}
