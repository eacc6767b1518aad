package queue

import (
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/contentdesk/internal/service"
)

const TaskTypePublishContent = "content:publish"

type PublishContentPayload struct {
	ContentID string `json:"content_id"`
}

type Queue struct {
	cs service.ContentService
}

func NewQueue(cs service.ContentService) *Queue {
	return &Queue{cs: cs}
}

func (j *Queue) ServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePublishContent, j.HandlePublishContentTask)
	return mux
}
