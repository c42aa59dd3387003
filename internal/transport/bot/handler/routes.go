package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"trade_exchange/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminIDs []int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminIDs...))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnWake, th.CommandEqual("wake"))
	adminGroup.HandleMessage(h.OnBlacklist, th.CommandEqual("blacklist"))
	adminGroup.HandleMessage(h.OnUnblacklist, th.CommandEqual("unblacklist"))
	adminGroup.HandleMessage(h.OnListBlacklist, th.CommandEqual("blacklisted"))
}
