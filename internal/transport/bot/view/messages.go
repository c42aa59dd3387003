// Package view содержит тексты операторского бота.
package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/botops"
)

const StartMessage = `🤖 <b>Управление обменами</b>

/status [bot] - состояние ботов
/wake &lt;bot&gt; - внеочередной проход
/blacklist &lt;bot&gt; &lt;steamId&gt; [причина] - запретить обмены
/unblacklist &lt;bot&gt; &lt;steamId&gt; - снять запрет
/blacklisted &lt;bot&gt; - чёрный список бота`

const (
	WakeUsage        = "❌ Использование: /wake <code>bot</code>"
	BlacklistUsage   = "❌ Использование: /blacklist <code>bot</code> <code>steamId</code> [причина]"
	UnblacklistUsage = "❌ Использование: /unblacklist <code>bot</code> <code>steamId</code>"
	BlacklistedUsage = "❌ Использование: /blacklisted <code>bot</code>"
	NoBots           = "Ботов нет"
)

func Status(status botops.BotStatus) string {
	var sb strings.Builder

	state := "💤 ожидает"
	if status.Scheduled {
		state = "⏳ запланирован"
	}

	lastPass := "ещё не было"
	if !status.LastPassAt.IsZero() {
		lastPass = status.LastPassAt.Format(time.DateTime)
	}

	fmt.Fprintf(&sb, "📊 <b>%s</b> %s\n", html.EscapeString(status.BotName), state)
	fmt.Fprintf(&sb, "Проходов: %d, последний: %s\n", status.Passes, lastPass)
	fmt.Fprintf(&sb, "Разобрано офферов в сессии: %d\n", status.Processed)
	fmt.Fprintf(&sb, "Принято: %d (подтверждено %d), отклонено: %d, чёрный список: %d, пропущено: %d\n",
		status.Stats.AcceptedOffers,
		status.Stats.ConfirmedOffers,
		status.Stats.RejectedOffers,
		status.Stats.BlacklistedOffers,
		status.Stats.IgnoredOffers,
	)
	fmt.Fprintf(&sb, "Предметов отдано/получено: %d/%d\n", status.Stats.ItemsGiven, status.Stats.ItemsReceived)

	return sb.String()
}

func Woken(botName string) string {
	return fmt.Sprintf("✅ <b>%s</b> поставлен в очередь", html.EscapeString(botName))
}

func Blacklisted(entry entity.BlacklistEntry) string {
	return fmt.Sprintf("⛔ <code>%d</code> в чёрном списке <b>%s</b>", entry.SteamID, html.EscapeString(entry.BotName))
}

func Unblacklisted(botName string, steamID uint64) string {
	return fmt.Sprintf("✅ <code>%d</code> убран из чёрного списка <b>%s</b>", steamID, html.EscapeString(botName))
}

func BlacklistEntries(botName string, entries []entity.BlacklistEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("📋 Чёрный список <b>%s</b> пуст", html.EscapeString(botName))
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "📋 <b>Чёрный список %s (%d):</b>\n\n", html.EscapeString(botName), len(entries))

	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. <code>%d</code>", i+1, e.SteamID)

		if e.Reason != "" {
			fmt.Fprintf(&sb, " (%s)", html.EscapeString(e.Reason))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func Error(err error) string {
	return "❌ " + html.EscapeString(err.Error())
}
