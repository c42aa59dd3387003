package entity

import "time"

// BlacklistEntry: контрагент, с которым бот не торгует.
type BlacklistEntry struct {
	BotName   string    `json:"botName"`
	SteamID   uint64    `json:"steamId,string"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
