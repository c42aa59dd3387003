package middleware

import (
	"slices"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// AdminOnly пропускает дальше только обновления от операторов.
func AdminOnly(adminIDs ...int64) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		if IsAdmin(update, adminIDs) {
			return ctx.Next(update)
		}

		return nil
	}
}

func IsAdmin(update telego.Update, adminIDs []int64) bool {
	var userID int64

	switch {
	case update.Message != nil && update.Message.From != nil:
		userID = update.Message.From.ID
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
	default:
		return false
	}

	return slices.Contains(adminIDs, userID)
}
