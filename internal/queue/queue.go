package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer is the subset of *asynq.Client used for scheduling.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func EnqueuePublish(ctx context.Context, client Enqueuer, payload PublishContentPayload, at time.Time, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishContent, taskPayload)

	// One task per item and publish time; a repeated request for the same
	// slot is already queued.
	taskID := fmt.Sprintf("%s:%d", payload.ContentID, at.Unix())

	_, err = client.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.TaskID(taskID), asynq.MaxRetry(0))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: %+v in %s", payload, delay.Round(time.Second))
	return nil
}

// Scheduler queues delayed publish tasks for scheduled content.
type Scheduler struct {
	client Enqueuer
	now    func() time.Time
}

func NewScheduler(client Enqueuer) *Scheduler {
	return &Scheduler{client: client, now: time.Now}
}

func (s *Scheduler) SchedulePublish(ctx context.Context, id uuid.UUID, at time.Time) error {
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	return EnqueuePublish(ctx, s.client, PublishContentPayload{ContentID: id.String()}, at, delay)
}
