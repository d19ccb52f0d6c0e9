package components

import (
	"parking-lot-manager/internal/handler"
	"parking-lot-manager/internal/handler/api"
	"parking-lot-manager/internal/handler/middleware"
	"parking-lot-manager/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCatalogHandler,
		api.NewReservationHandler,
		api.NewUserHandler,
		api.NewJobHandler,
		api.NewAnalyticsHandler,
		api.NewEventsHandler,
		NewHandlers,
		func(s *jwt.Service) middleware.TokenValidator { return s },
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	auth *api.AuthHandler,
	catalog *api.CatalogHandler,
	reservation *api.ReservationHandler,
	user *api.UserHandler,
	job *api.JobHandler,
	analytics *api.AnalyticsHandler,
	events *api.EventsHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:        auth,
		Catalog:     catalog,
		Reservation: reservation,
		User:        user,
		Job:         job,
		Analytics:   analytics,
		Events:      events,
	}
}
