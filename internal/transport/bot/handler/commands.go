package handler

import (
	"errors"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"trade_exchange/internal/transport/bot/view"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

// OnStatus: без аргумента показывает всех ботов.
func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	parts := strings.Fields(msg.Text)

	if len(parts) > 1 {
		status, err := h.ops.Status(parts[1])
		if err != nil {
			return h.sendHTML(ctx, msg.Chat.ID, view.Error(err))
		}

		return h.sendHTML(ctx, msg.Chat.ID, view.Status(status))
	}

	statuses := h.ops.StatusAll()
	if len(statuses) == 0 {
		return h.sendHTML(ctx, msg.Chat.ID, view.NoBots)
	}

	texts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		texts = append(texts, view.Status(s))
	}

	return h.sendHTML(ctx, msg.Chat.ID, strings.Join(texts, "\n"))
}

func (h *Handler) OnWake(ctx *th.Context, msg telego.Message) error {
	bot, err := botArg(msg.Text)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.WakeUsage)
	}

	if err := h.ops.Wake(ctx, bot); err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.Error(err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Woken(bot))
}

func (h *Handler) OnBlacklist(ctx *th.Context, msg telego.Message) error {
	args, err := parseBlacklistArgs(msg.Text, true)
	if err != nil {
		return h.replyArgsError(ctx, msg.Chat.ID, err, view.BlacklistUsage)
	}

	entry, err := h.ops.Blacklist(ctx, args.bot, args.steamID, args.reason)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.Error(err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Blacklisted(entry))
}

func (h *Handler) OnUnblacklist(ctx *th.Context, msg telego.Message) error {
	args, err := parseBlacklistArgs(msg.Text, false)
	if err != nil {
		return h.replyArgsError(ctx, msg.Chat.ID, err, view.UnblacklistUsage)
	}

	if err := h.ops.Unblacklist(ctx, args.bot, args.steamID); err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.Error(err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Unblacklisted(args.bot, args.steamID))
}

func (h *Handler) OnListBlacklist(ctx *th.Context, msg telego.Message) error {
	bot, err := botArg(msg.Text)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.BlacklistedUsage)
	}

	entries, err := h.ops.ListBlacklist(ctx, bot)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.Error(err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.BlacklistEntries(bot, entries))
}

// Вспомогательные методы

func (h *Handler) replyArgsError(ctx *th.Context, chatID int64, err error, usage string) error {
	if errors.Is(err, errUsage) {
		return h.sendHTML(ctx, chatID, usage)
	}

	return h.sendHTML(ctx, chatID, view.Error(err))
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})

	return err //nolint:wrapcheck
}
