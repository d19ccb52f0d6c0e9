package bootstrap

import (
	"time"

	"parking-lot-manager/cmd/bootstrap/components"

	"go.uber.org/fx"
)

const dbConnectTimeout = 10 * time.Second

// CoreModule wires everything except the HTTP surface and background loops.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	components.PersistenceModule,
	components.EventsModule,
	components.UseCaseModule,
)

var Module = fx.Options(
	CoreModule,
	components.HandlerModule,
	components.SchedulerModule,
	SeedModule,
)
