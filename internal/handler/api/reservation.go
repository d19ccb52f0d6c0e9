package api

import (
	"net/http"
	"strconv"

	reqdto "parking-lot-manager/internal/handler/dto/request"
	resdto "parking-lot-manager/internal/handler/dto/response"
	"parking-lot-manager/internal/handler/httperr"
	"parking-lot-manager/internal/handler/middleware"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 20

type ReservationHandler struct {
	cmds commands.ReservationCommands
	q    queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{
		cmds: cmds,
		q:    q,
	}
}

// @Summary Reserve a spot
// @Description Claim the first available spot in a lot
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request format")
		return
	}

	ctx := c.Request.Context()
	id, err := h.cmds.Reserve(ctx, caller, req.LotID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	view, err := h.q.GetByID(ctx, caller, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/reservations/"+strconv.FormatInt(id, 10))
	c.JSON(http.StatusCreated, resdto.FromReservationView(view))
}

// @Summary Park
// @Description Mark the reserved vehicle as parked
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/park [post]
func (h *ReservationHandler) Park(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.cmds.Park(ctx, caller, id); err != nil {
		httperr.Abort(c, err)
		return
	}

	view, err := h.q.GetByID(ctx, caller, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Release
// @Description Release the spot and compute the cost
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReleaseResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.cmds.Release(c.Request.Context(), caller, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReleaseResult(result))
}

// @Summary Active reservation
// @Description The caller's current reservation, if any
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/active [get]
func (h *ReservationHandler) Active(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}

	view, err := h.q.Active(c.Request.Context(), caller)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Reservation history
// @Description The caller's own reservations, newest first
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows"
// @Success 200 {array} resdto.ReservationResponse
// @Router /api/reservations [get]
func (h *ReservationHandler) History(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	limit, ok := queryInt(c, "limit", defaultHistoryLimit)
	if !ok {
		return
	}

	views, err := h.q.History(c.Request.Context(), caller, limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

// @Summary Free spot
// @Description Force-free a spot, completing its active reservation (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Spot ID"
// @Success 200 {object} resdto.FreeSpotResponse
// @Failure 404 {object} httperr.Response
// @Router /api/admin/spots/{id}/free [post]
func (h *ReservationHandler) FreeSpot(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.cmds.FreeSpot(c.Request.Context(), caller, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromFreeSpotResult(result))
}
