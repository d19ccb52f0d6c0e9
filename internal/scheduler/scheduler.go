package scheduler

import (
	"context"
	"log/slog"
	"time"

	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/usecase/jobs"

	"github.com/robfig/cron/v3"
)

// Specs is the cadence of every periodic job.
var Specs = map[job.Kind]string{
	job.KindExpireStale:   "@every 1h",
	job.KindDailyReport:   "@every 24h",
	job.KindOptimize:      "@every 6h",
	job.KindReminders:     "@every 15m",
	job.KindMonthlyReport: "0 0 1 * *",
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    jobs.JobUseCase
	entries map[job.Kind]cron.EntryID
}

func New(cfg config.SchedulerConfig, uc jobs.JobUseCase, logger *slog.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	cl := newCronLogger(logger)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:    uc,
		entries: make(map[job.Kind]cron.EntryID, len(Specs)),
	}

	for _, kind := range job.Kinds {
		id, err := s.cron.AddJob(Specs[kind], s.tick(kind))
		if err != nil {
			return nil, err
		}
		s.entries[kind] = id
	}
	return s, nil
}

func (s *Scheduler) tick(kind job.Kind) cron.Job {
	return cron.FuncJob(func() {
		started := time.Now()
		j, err := s.jobs.Execute(context.Background(), kind, nil)
		if err != nil {
			slog.Error("scheduled job could not be recorded", "kind", kind.String(), "error", err.Error())
			return
		}
		slog.Info("scheduled job finished",
			"kind", kind.String(),
			"job_id", j.ID(),
			"status", j.Status().String(),
			"elapsed_ms", time.Since(started).Milliseconds(),
		)
	})
}

func (s *Scheduler) Start() {
	slog.Info("starting scheduler", "jobs", len(s.entries), "location", s.cron.Location().String())
	s.cron.Start()
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports when kind fires after from, in the scheduler's location.
// Zero if kind is not scheduled.
func (s *Scheduler) Next(kind job.Kind, from time.Time) time.Time {
	id, ok := s.entries[kind]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Schedule.Next(from.In(s.cron.Location()))
}

// RunNow fires kind's tick on the caller's goroutine, wrapped like a scheduled run.
func (s *Scheduler) RunNow(kind job.Kind) {
	id, ok := s.entries[kind]
	if !ok {
		return
	}
	s.cron.Entry(id).WrappedJob.Run()
}
