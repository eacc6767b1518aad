package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentdesk/internal/service"
)

// DispatchJob sweeps for scheduled items whose time has come. It catches
// anything the delayed queue missed, such as tasks lost with a redis restart.
type DispatchJob struct {
	cs      service.ContentService
	timeout time.Duration
	now     func() time.Time
}

func NewDispatchJob(cs service.ContentService) *DispatchJob {
	return &DispatchJob{cs: cs, timeout: 4 * time.Minute, now: time.Now}
}

func (c *DispatchJob) DispatchDue() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	summary, err := c.cs.DispatchDue(ctx, c.now().UTC())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if summary.Failed > 0 {
		slog.Info("due items not dispatched", "failed", summary.Failed, "due", summary.Due)
	}
}
