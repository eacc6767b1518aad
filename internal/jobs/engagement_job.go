package job

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentdesk/internal/service"
)

// EngagementJob refreshes platform counters and then derives new weekday
// preferences from them.
type EngagementJob struct {
	cs      service.ContentService
	ps      service.PreferenceService
	timeout time.Duration
}

func NewEngagementJob(cs service.ContentService, ps service.PreferenceService) *EngagementJob {
	return &EngagementJob{cs: cs, ps: ps, timeout: 15 * time.Minute}
}

func (c *EngagementJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	summary, err := c.cs.SyncEngagement(ctx)
	if err != nil {
		// Stored counters are still usable for the recompute.
		slog.Info("engagement sync failed", "error", err.Error())
	} else {
		log.Printf("Engagement synced: %d checked, %d updated, %d failed", summary.Checked, summary.Updated, summary.Failed)
	}

	hours, err := c.ps.RecomputeFromHistory(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	log.Printf("Preferred hours: %v", hours)
}
