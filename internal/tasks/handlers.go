package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/application/modules"
	"trade_exchange/pkg/logx"
)

type Waker interface {
	OnNewTrade(ctx context.Context) error
}

type InventorySender interface {
	SendInventory(ctx context.Context, recipientID uint64, types value.ItemTypes) (int, error)
}

type TradingLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LootTarget: куда и что отправляет бот после получения добычи.
type LootTarget struct {
	Sender      InventorySender
	Lock        TradingLock
	RecipientID uint64
	Types       value.ItemTypes
}

type Handlers struct {
	wakers  map[string]Waker
	looters map[string]LootTarget
	// nothingToSend: ошибка отправителя, означающая пустой инвентарь.
	nothingToSend error
}

func NewHandlers() *Handlers {
	return &Handlers{
		wakers:  make(map[string]Waker),
		looters: make(map[string]LootTarget),
	}
}

func (h *Handlers) WithWaker(botName string, waker Waker) *Handlers {
	h.wakers[botName] = waker
	return h
}

func (h *Handlers) WithLootTarget(botName string, target LootTarget) *Handlers {
	h.looters[botName] = target
	return h
}

func (h *Handlers) WithNothingToSendError(err error) *Handlers {
	h.nothingToSend = err
	return h
}

// AsynqHandlers: обработчики для сервера очереди.
func (h *Handlers) AsynqHandlers() []modules.AsynqHandler {
	return []modules.AsynqHandler{
		{Pattern: TypeWake, Handle: h.HandleWake},
		{Pattern: TypeLoot, Handle: h.HandleLoot},
	}
}

func (h *Handlers) HandleWake(ctx context.Context, task *asynq.Task) error {
	botName, err := botFromTask(task)
	if err != nil {
		return err
	}

	waker, ok := h.wakers[botName]
	if !ok {
		return fmt.Errorf("%s %q: %w: %w", TypeWake, botName, ErrUnknownBot, asynq.SkipRetry)
	}

	// проход не состоялся: задача повторится и запустит его заново
	if err := waker.OnNewTrade(ctx); err != nil {
		return fmt.Errorf("%s %q: %w", TypeWake, botName, err)
	}

	return nil
}

func (h *Handlers) HandleLoot(ctx context.Context, task *asynq.Task) error {
	botName, err := botFromTask(task)
	if err != nil {
		return err
	}

	target, ok := h.looters[botName]
	if !ok {
		// бот не настроен на отправку
		logger(ctx).Debug("loot skipped", slog.String(logx.FieldBot, botName))
		return nil
	}

	release, err := target.Lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("loot %q: %w", botName, err)
	}
	defer release()

	sent, err := target.Sender.SendInventory(ctx, target.RecipientID, target.Types)
	if err != nil {
		if h.nothingToSend != nil && errors.Is(err, h.nothingToSend) {
			logger(ctx).Info("nothing to loot", slog.String(logx.FieldBot, botName))
			return nil
		}

		return fmt.Errorf("loot %q: %w", botName, err)
	}

	logger(ctx).Info("loot sent", slog.String(logx.FieldBot, botName), slog.Int("items", sent))

	return nil
}
