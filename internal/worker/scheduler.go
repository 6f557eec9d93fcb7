package worker

import (
	"context"
	"strings"
	"time"

	"github.com/smarthealthpro/booking-api/internal/service/schedule"
	"github.com/smarthealthpro/booking-api/pkg/logger"
)

// ScheduleWorker runs the slot allocation pass on a fixed interval. Each run
// targets the current weekday, so a daily interval walks the whole week.
type ScheduleWorker struct {
	scheduler *schedule.Service
	interval  time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

func NewScheduleWorker(scheduler *schedule.Service, interval time.Duration, logger *logger.Logger) *ScheduleWorker {
	return &ScheduleWorker{
		scheduler: scheduler,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

func (w *ScheduleWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *ScheduleWorker) run(ctx context.Context) {
	day := strings.ToLower(w.now().Weekday().String())

	summary, err := w.scheduler.RunForDay(ctx, day)
	if err != nil {
		w.logger.Error(err, "scheduling run failed", "day", day)
		return
	}

	w.logger.Info("scheduling run completed",
		"day", day,
		"assigned", len(summary.Assigned),
		"waitlisted", len(summary.WaitingList))
}
