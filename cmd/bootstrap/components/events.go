package components

import (
	"context"
	"log/slog"

	"parking-lot-manager/internal/infra/cache"
	"parking-lot-manager/internal/infra/eventbus"
	"parking-lot-manager/internal/infra/notifier"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/usecase/jobs"
	"parking-lot-manager/internal/usecase/shared"

	"go.uber.org/fx"
)

// EventsModule fans committed events out to the cache invalidator and the
// notifier. The notifier depends on the job use case for failure
// bookkeeping, which itself publishes onto the bus, so subscriptions are
// made in an Invoke once both exist.
var EventsModule = fx.Module("events",
	fx.Provide(
		func() *eventbus.Bus { return eventbus.New() },
		func(b *eventbus.Bus) shared.EventPublisher { return b },
		notifier.NewHub,
		NewNotifier,
	),
	fx.Invoke(SubscribeEvents),
)

func NewNotifier(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger, hub *notifier.Hub, jobUC jobs.JobUseCase) (*notifier.Notifier, error) {
	sinks := []notifier.Sink{notifier.NewLogSink(logger), hub}

	var amqpSink *notifier.AMQPSink
	if cfg.AMQP.URL != "" {
		s, err := notifier.DialAMQP(cfg.AMQP)
		if err != nil {
			return nil, err
		}
		amqpSink = s
		sinks = append(sinks, amqpSink)
	}

	n := notifier.New(cfg.Notifier, clk, jobUC, sinks...)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			n.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := n.Stop(ctx)
			hub.Close()
			if amqpSink != nil {
				if cerr := amqpSink.Close(); cerr != nil {
					slog.Warn("failed to close amqp sink", "error", cerr.Error())
				}
			}
			return err
		},
	})
	return n, nil
}

func SubscribeEvents(bus *eventbus.Bus, index shared.CacheIndex, n *notifier.Notifier) {
	// Invalidate before notifying so readers reacting to an event see fresh data.
	bus.Subscribe(cache.NewInvalidator(index))
	bus.Subscribe(n)
}
