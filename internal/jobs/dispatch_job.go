// Package jobs holds the scheduled background jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/service/dispatch"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Dispatcher runs one batch dispatch
type Dispatcher interface {
	Run(ctx context.Context) (*dispatch.Result, error)
}

// DispatchJob runs batch dispatch on a cron schedule
type DispatchJob struct {
	dispatcher Dispatcher
	schedule   string
	timeout    time.Duration
	cron       *cron.Cron
	logger     *logger.Logger
}

// NewDispatchJob creates the job. schedule is a cron spec with a leading
// seconds field, e.g. "*/30 * * * * *". Each run is bounded by timeout.
func NewDispatchJob(d Dispatcher, schedule string, timeout time.Duration, log *logger.Logger) *DispatchJob {
	return &DispatchJob{
		dispatcher: d,
		schedule:   schedule,
		timeout:    timeout,
		cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:     log.Named("dispatch_job"),
	}
}

func (j *DispatchJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.runOnce); err != nil {
		return fmt.Errorf("schedule dispatch job %q: %w", j.schedule, err)
	}
	j.cron.Start()
	j.logger.Info("Dispatch job started", logger.String("schedule", j.schedule))
	return nil
}

// Stop stops scheduling and waits for a running dispatch to finish or ctx to
// expire
func (j *DispatchJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("Dispatch job still running at shutdown")
	}
	j.logger.Info("Dispatch job stopped")
}

func (j *DispatchJob) runOnce() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	res, err := j.dispatcher.Run(ctx)
	switch {
	case errors.Is(err, dispatch.ErrDispatchInProgress):
		// another instance holds the lock
		j.logger.Debug("Dispatch skipped, lock held elsewhere")
	case err != nil:
		fields := []logger.Field{logger.Err(err)}
		if res != nil {
			fields = append(fields,
				logger.Stringer("run_id", res.RunID),
				logger.Int("committed", len(res.Assignments)),
			)
		}
		j.logger.Error("Scheduled dispatch failed", fields...)
	case len(res.Assignments) > 0:
		j.logger.Info("Scheduled dispatch assigned orders",
			logger.Stringer("run_id", res.RunID),
			logger.Int("assigned", len(res.Assignments)),
		)
	}
}
