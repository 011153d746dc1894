package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/notekeeper/internal/metrics"
	"github.com/robfig/cron/v3"
)

const reapBatchSize = 500

type sessionReaper interface {
	ReapExpired(ctx context.Context, limit int) (int, error)
}

// Reaper deletes expired sessions on a cron schedule. Expired sessions are
// already rejected on lookup; reaping only keeps the table small.
type Reaper struct {
	sessions sessionReaper
	schedule cron.Schedule
	logger   *slog.Logger
	now      func() time.Time
}

// NewReaper parses spec as a standard cron expression or descriptor ("@every 10m").
func NewReaper(sessions sessionReaper, spec string, logger *slog.Logger) (*Reaper, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse reap schedule %q: %w", spec, err)
	}
	return &Reaper{
		sessions: sessions,
		schedule: sched,
		logger:   logger.With("component", "session_reaper"),
		now:      time.Now,
	}, nil
}

func (r *Reaper) Start(ctx context.Context) {
	r.logger.Info("reaper started", "next_run", r.schedule.Next(r.now()))

	for {
		timer := time.NewTimer(r.schedule.Next(r.now()).Sub(r.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("reaper shut down")
			return
		case <-timer.C:
			r.reap(ctx)
		}
	}
}

// reap drains expired sessions in batches until a short batch signals the end.
func (r *Reaper) reap(ctx context.Context) int {
	start := time.Now()
	defer func() {
		metrics.ReaperCycleDuration.Observe(time.Since(start).Seconds())
	}()

	total := 0
	for ctx.Err() == nil {
		n, err := r.sessions.ReapExpired(ctx, reapBatchSize)
		if err != nil {
			r.logger.Error("reap expired sessions", "error", err)
			break
		}
		total += n
		metrics.SessionsReapedTotal.Add(float64(n))
		if n < reapBatchSize {
			break
		}
	}

	if total > 0 {
		r.logger.Info("reaped expired sessions", "count", total)
	}
	return total
}
