package components

import (
	"context"
	"log/slog"

	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/scheduler"
	"parking-lot-manager/internal/usecase/jobs"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Invoke(StartScheduler),
)

// StartScheduler registers the periodic jobs unless SCHEDULER_ENABLED=false.
func StartScheduler(lc fx.Lifecycle, cfg config.Config, uc jobs.JobUseCase, logger *slog.Logger) error {
	if !cfg.Scheduler.Enabled {
		slog.Info("scheduler disabled")
		return nil
	}
	s, err := scheduler.New(cfg.Scheduler, uc, logger)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start()
			return nil
		},
		OnStop: s.Stop,
	})
	return nil
}
