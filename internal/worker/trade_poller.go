// Package worker содержит фоновые циклы процесса.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"trade_exchange/pkg/logx"
)

var ErrPollerRunning = errors.New("poller is already running")

type Waker interface {
	Wake(ctx context.Context, botName string) error
}

// TradePoller периодически будит координаторы ботов, даже если площадка
// не прислала уведомление о новом оффере.
type TradePoller struct {
	waker    Waker
	interval time.Duration

	mu         sync.Mutex
	bots       []string
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewTradePoller(waker Waker, interval time.Duration) *TradePoller {
	return &TradePoller{
		waker:    waker,
		interval: interval,
	}
}

func (w *TradePoller) WithBots(names ...string) *TradePoller {
	w.AddBots(names...)
	return w
}

// AddBots добавляет ботов в опрос, дубли пропускаются.
func (w *TradePoller) AddBots(names ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, name := range names {
		if !slices.Contains(w.bots, name) {
			w.bots = append(w.bots, name)
		}
	}
}

func (w *TradePoller) RemoveBot(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.bots = slices.DeleteFunc(w.bots, func(b string) bool { return b == name })
}

// Bots возвращает копию списка ботов.
func (w *TradePoller) Bots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.bots)
}

func (w *TradePoller) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return ErrPollerRunning
	}

	pollCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		w.Run(pollCtx)
	}()

	return nil
}

func (w *TradePoller) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *TradePoller) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

// Run будит всех ботов сразу и затем раз в interval до отмены ctx.
func (w *TradePoller) Run(ctx context.Context) {
	logger(ctx).Info("trade poller started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.wakeAll(ctx)

		select {
		case <-ctx.Done():
			logger(ctx).Info("trade poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *TradePoller) wakeAll(ctx context.Context) {
	for _, bot := range w.Bots() {
		if ctx.Err() != nil {
			return
		}

		if err := w.waker.Wake(ctx, bot); err != nil {
			logger(ctx).Warn("wake failed", slog.String(logx.FieldBot, bot), logx.Error(err))
		}
	}
}
