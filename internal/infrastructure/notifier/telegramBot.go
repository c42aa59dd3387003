package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/logx"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot присылает в чат сводку по каждому проходу, в котором
// что-то решилось.
type TelegramBot struct {
	bot    messageSender
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return NewTelegramBotWithSender(bot, chatID), nil
}

func NewTelegramBotWithSender(sender messageSender, chatID int64) *TelegramBot {
	return &TelegramBot{
		bot:    sender,
		chatID: chatID,
	}
}

// OnBatchResultsReady отправляет сводку. Ошибка отправки только логируется.
func (b *TelegramBot) OnBatchResultsReady(ctx context.Context, botName string, results []entity.TradeResult) {
	text, ok := FormatResults(botName, results)
	if !ok {
		return
	}

	if err := b.SendHTML(ctx, text); err != nil {
		logger(ctx).Warn("trade summary not sent", slog.String(logx.FieldBot, botName), logx.Error(err))
	}
}

// SendHTML отправляет сообщение с HTML-разметкой.
func (b *TelegramBot) SendHTML(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(b.chatID), text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

//nolint:gochecknoglobals
var summaryOrder = []value.Outcome{
	value.OutcomeAccepted,
	value.OutcomeRejected,
	value.OutcomeBlacklisted,
	value.OutcomeIgnored,
}

// FormatResults собирает сводку прохода. Повторные попытки в сводку не
// попадают; если кроме них ничего нет, ok == false.
func FormatResults(botName string, results []entity.TradeResult) (string, bool) {
	counts := make(map[value.Outcome]int, len(summaryOrder))

	var confirmed, donations, given, received int

	for _, r := range results {
		if r.Outcome == value.OutcomeTryAgain {
			continue
		}

		counts[r.Outcome]++

		if r.Outcome != value.OutcomeAccepted {
			continue
		}

		if r.Confirmed {
			confirmed++
			given += len(r.ItemsToGive)
			received += len(r.ItemsToReceive)
		}

		if r.IsDonation() {
			donations++
		}
	}

	if len(counts) == 0 {
		return "", false
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "🔁 <b>%s</b>\n\n", botName)

	for _, outcome := range summaryOrder {
		if n := counts[outcome]; n > 0 {
			fmt.Fprintf(&sb, "%s: %d\n", outcome, n)
		}
	}

	if counts[value.OutcomeAccepted] > 0 {
		fmt.Fprintf(&sb, "\n✅ Подтверждено: %d\n📤 Отдано: %d\n📥 Получено: %d\n", confirmed, given, received)
	}

	if donations > 0 {
		fmt.Fprintf(&sb, "🎁 Донатов: %d\n", donations)
	}

	return sb.String(), true
}
