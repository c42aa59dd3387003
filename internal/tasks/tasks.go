// Package tasks описывает фоновые задачи обменов, которые ходят через очередь
// asynq: пробуждение координатора и отправку добычи мастеру.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
)

const (
	TypeWake = "trade:wake"
	TypeLoot = "trade:loot"

	Queue = "trades"

	lootUniqueTTL = time.Minute
	wakeMaxRetry  = 3
	lootMaxRetry  = 3
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

var ErrUnknownBot = errors.New("unknown bot")

type botPayload struct {
	Bot string `json:"bot"`
}

func newBotTask(taskType, botName string, opts ...asynq.Option) (*asynq.Task, error) {
	if botName == "" {
		return nil, fmt.Errorf("%s: %w", taskType, ErrUnknownBot)
	}

	payload, err := json.Marshal(botPayload{Bot: botName})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	return asynq.NewTask(taskType, payload, opts...), nil
}

// NewWakeTask: повтор нужен, только если запланированный проход не смог
// начаться; обычный проход ошибку не возвращает.
func NewWakeTask(botName string) (*asynq.Task, error) {
	return newBotTask(TypeWake, botName, asynq.Queue(Queue), asynq.MaxRetry(wakeMaxRetry))
}

// NewLootTask: одна отправка на бота в минуту, повторные сигналы схлопываются.
func NewLootTask(botName string) (*asynq.Task, error) {
	return newBotTask(TypeLoot, botName, asynq.Queue(Queue), asynq.MaxRetry(lootMaxRetry), asynq.Unique(lootUniqueTTL))
}

func botFromTask(task *asynq.Task) (string, error) {
	var payload botPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return "", fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	if payload.Bot == "" {
		return "", fmt.Errorf("%s: %w: %w", task.Type(), ErrUnknownBot, asynq.SkipRetry)
	}

	return payload.Bot, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer ставит задачи в очередь.
type Enqueuer struct {
	client enqueuer
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) Wake(ctx context.Context, botName string) error {
	task, err := NewWakeTask(botName)
	if err != nil {
		return err
	}

	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeWake, err)
	}

	return nil
}

// OnLootableReceived ставит отправку добычи. Уже стоящая задача не ошибка.
func (e *Enqueuer) OnLootableReceived(ctx context.Context, botName string) error {
	task, err := NewLootTask(botName)
	if err != nil {
		return err
	}

	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}

		return fmt.Errorf("enqueue %s: %w", TypeLoot, err)
	}

	return nil
}
