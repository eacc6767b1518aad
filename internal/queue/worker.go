package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/service"
)

// HandlePublishContentTask dispatches the item named by the task. Tasks left
// behind by a cancel, reschedule or earlier sweep are dropped quietly.
func (j *Queue) HandlePublishContentTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishContentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	id, err := uuid.Parse(payload.ContentID)
	if err != nil {
		return fmt.Errorf("invalid content id %q: %w", payload.ContentID, asynq.SkipRetry)
	}

	err = j.cs.Dispatch(ctx, id)
	switch {
	case err == nil:
		log.Printf("Published content %s", id)
		return nil
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrNotDue),
		errors.Is(err, models.ErrInvalidTransition):
		log.Printf("Skipping stale publish task for %s: %v", id, err)
		return nil
	}

	// The periodic sweep retries failed hand-offs.
	return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
}
