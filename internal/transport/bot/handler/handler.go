package handler

import (
	"context"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/botops"
)

type Operations interface {
	Bots() []string
	Status(botName string) (botops.BotStatus, error)
	StatusAll() []botops.BotStatus
	Wake(ctx context.Context, botName string) error
	Blacklist(ctx context.Context, botName string, steamID uint64, reason string) (entity.BlacklistEntry, error)
	Unblacklist(ctx context.Context, botName string, steamID uint64) error
	ListBlacklist(ctx context.Context, botName string) ([]entity.BlacklistEntry, error)
}

type Handler struct {
	ops Operations
}

func New(ops Operations) *Handler {
	return &Handler{
		ops: ops,
	}
}
