package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"parking-lot-manager/internal/handler/api"
	"parking-lot-manager/internal/handler/middleware"
	"parking-lot-manager/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *api.AuthHandler
	Catalog     *api.CatalogHandler
	Reservation *api.ReservationHandler
	User        *api.UserHandler
	Job         *api.JobHandler
	Analytics   *api.AnalyticsHandler
	Events      *api.EventsHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	if logger != nil {
		engine.Use(logger.LoggingMiddleware())
	} else {
		engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	}
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := authMiddleware.RequireAuth()
	requireAdmin := authMiddleware.RequireAdmin()

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me, Mw: []gin.HandlerFunc{requireAuth}},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/lots", Handler: h.Catalog.ListLots},
			{Method: http.MethodGet, Path: "/lots/:id", Handler: h.Catalog.GetLot},
			{Method: http.MethodGet, Path: "/lots/:id/spots", Handler: h.Catalog.ListLotSpots},
			{Method: http.MethodGet, Path: "/spots", Handler: h.Catalog.ListSpots},
		})

		reservations := apiGroup.Group("/reservations")
		reservations.Use(requireAuth)
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Reservation.Reserve},
				{Method: http.MethodGet, Path: "", Handler: h.Reservation.History},
				{Method: http.MethodGet, Path: "/active", Handler: h.Reservation.Active},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.Get},
				{Method: http.MethodPost, Path: "/:id/park", Handler: h.Reservation.Park},
				{Method: http.MethodPost, Path: "/:id/release", Handler: h.Reservation.Release},
			})
		}

		me := apiGroup.Group("/me")
		me.Use(requireAuth)
		{
			addRoutes(me, []route{
				{Method: http.MethodPut, Path: "/preferences", Handler: h.User.SetPreferences},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/lots", Handler: h.Catalog.CreateLot},
				{Method: http.MethodPatch, Path: "/lots/:id", Handler: h.Catalog.UpdateLot},
				{Method: http.MethodDelete, Path: "/lots/:id", Handler: h.Catalog.DeleteLot},
				{Method: http.MethodPost, Path: "/spots/:id/free", Handler: h.Reservation.FreeSpot},
				{Method: http.MethodPost, Path: "/jobs", Handler: h.Job.Trigger},
				{Method: http.MethodGet, Path: "/jobs", Handler: h.Job.List},
				{Method: http.MethodGet, Path: "/jobs/:id", Handler: h.Job.Get},
				{Method: http.MethodGet, Path: "/analytics/summary", Handler: h.Analytics.Summary},
				{Method: http.MethodDelete, Path: "/users/:id", Handler: h.User.DeleteUser},
			})
		}
	}

	ws := engine.Group("/ws")
	{
		addRoutes(ws, []route{
			{Method: http.MethodGet, Path: "/events", Handler: h.Events.Stream, Mw: []gin.HandlerFunc{requireAuth, requireAdmin}},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
