package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}

	q.tasks = append(q.tasks, task)

	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestEnqueuer(t *testing.T) {
	rq := require.New(t)

	queue := &fakeQueue{}
	e := &Enqueuer{client: queue}

	rq.NoError(e.Wake(context.Background(), "alpha"))
	rq.NoError(e.OnLootableReceived(context.Background(), "alpha"))
	rq.Len(queue.tasks, 2)
	rq.Equal(TypeWake, queue.tasks[0].Type())
	rq.Equal(TypeLoot, queue.tasks[1].Type())

	bot, err := botFromTask(queue.tasks[1])
	rq.NoError(err)
	rq.Equal("alpha", bot)

	queue.err = asynq.ErrDuplicateTask
	rq.NoError(e.OnLootableReceived(context.Background(), "alpha"))
	rq.ErrorIs(e.Wake(context.Background(), "alpha"), asynq.ErrDuplicateTask)

	queue.err = errors.New("redis down")
	rq.Error(e.OnLootableReceived(context.Background(), "alpha"))
}
