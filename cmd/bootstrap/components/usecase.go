package components

import (
	"context"

	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/infra/notifier"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/password"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/jobs"
	"parking-lot-manager/internal/usecase/queries"
	"parking-lot-manager/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
	usecaseJobsModule,
)

var usecaseBaseOption = fx.Provide(
	func(cfg config.Config) reservation.PriceCalculator {
		return reservation.NewDefaultPriceCalculator(cfg.Parking.MinimumBillingUnit)
	},
	func() commands.PasswordHasher { return password.HashPassword },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewCatalogUseCase,
		commands.NewUserUseCase,
		func(uow shared.UnitOfWork, clk clock.Clock, calc reservation.PriceCalculator, events shared.EventPublisher, cfg config.Config) commands.ReservationCommands {
			return commands.NewReservationUseCase(uow, clk, calc, events, cfg.Parking)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewJobQueries,
		func(uow shared.UnitOfWork, index shared.CacheIndex, cfg config.Config) queries.CatalogQueries {
			return queries.NewCatalogQueries(uow, index, cfg.Cache.DefaultTTL)
		},
		func(uow shared.UnitOfWork, index shared.CacheIndex, cfg config.Config) queries.ReservationQueries {
			return queries.NewReservationQueries(uow, index, cfg.Cache.DefaultTTL)
		},
		func(uow shared.UnitOfWork, index shared.CacheIndex, clk clock.Clock, cfg config.Config) queries.AnalyticsQueries {
			return queries.NewAnalyticsQueries(uow, index, clk, cfg.Cache.AnalyticsTTL)
		},
	),
)

var usecaseJobsModule = fx.Module("usecase/jobs",
	fx.Provide(
		jobs.NewActions,
		NewJobUseCase,
	),
	fx.Invoke(RunJobs),
)

func NewJobUseCase(uow shared.UnitOfWork, actions *jobs.Actions, clk clock.Clock, events shared.EventPublisher, cfg config.Config) jobs.JobUseCase {
	runner := jobs.NewRunner(actions.Registry(), cfg.Scheduler.JobTimeout)
	return jobs.NewJobUseCase(uow, runner, clk, events, cfg.Scheduler.JobQueueSize)
}

// RunJobs starts the job worker. Taking the notifier makes its hooks
// register first, so on shutdown running jobs drain before the notifier
// flushes.
func RunJobs(lc fx.Lifecycle, uc jobs.JobUseCase, _ *notifier.Notifier) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			uc.Start()
			return nil
		},
		OnStop: uc.Stop,
	})
}
