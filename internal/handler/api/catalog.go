package api

import (
	"fmt"
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

type CatalogHandler struct {
	cmds commands.CatalogCommands
	q    queries.CatalogQueries
}

func NewCatalogHandler(cmds commands.CatalogCommands, q queries.CatalogQueries) *CatalogHandler {
	return &CatalogHandler{
		cmds: cmds,
		q:    q,
	}
}

// @Summary List lots
// @Description List every lot with its live occupancy
// @Tags lots
// @Produce json
// @Success 200 {array} resdto.LotResponse
// @Router /api/lots [get]
func (h *CatalogHandler) ListLots(c *gin.Context) {
	views, err := h.q.ListLots(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLotViews(views))
}

// @Summary Get lot
// @Tags lots
// @Produce json
// @Param id path int true "Lot ID"
// @Success 200 {object} resdto.LotResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/lots/{id} [get]
func (h *CatalogHandler) GetLot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.q.GetLot(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLotView(view))
}

// @Summary List spots of a lot
// @Tags lots
// @Produce json
// @Param id path int true "Lot ID"
// @Success 200 {array} resdto.SpotResponse
// @Failure 404 {object} httperr.Response
// @Router /api/lots/{id}/spots [get]
func (h *CatalogHandler) ListLotSpots(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.listSpots(c, id)
}

// @Summary List spots
// @Description List spots across all lots, or of one lot with ?lot_id
// @Tags lots
// @Produce json
// @Param lot_id query int false "Lot ID"
// @Success 200 {array} resdto.SpotResponse
// @Router /api/spots [get]
func (h *CatalogHandler) ListSpots(c *gin.Context) {
	var lotID int64
	if raw := c.Query("lot_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			httperr.BadRequest(c, fmt.Errorf("lot_id %q", raw), "Invalid lot_id")
			return
		}
		lotID = v
	}
	h.listSpots(c, lotID)
}

func (h *CatalogHandler) listSpots(c *gin.Context, lotID int64) {
	views, err := h.q.ListSpots(c.Request.Context(), lotID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSpotViews(views))
}

// @Summary Create lot
// @Description Create a lot and its spots (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateLotRequest true "Lot"
// @Success 201 {object} resdto.CreatedResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/admin/lots [post]
func (h *CatalogHandler) CreateLot(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}

	var req reqdto.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request format")
		return
	}

	id, err := h.cmds.CreateLot(c.Request.Context(), caller, req.ToCommand())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/lots/"+strconv.FormatInt(id, 10))
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

// @Summary Update lot
// @Description Partially update a lot; capacity changes add or remove spots (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lot ID"
// @Param request body reqdto.UpdateLotRequest true "Changes"
// @Success 200 {object} resdto.LotResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/admin/lots/{id} [patch]
func (h *CatalogHandler) UpdateLot(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reqdto.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request format")
		return
	}

	ctx := c.Request.Context()
	if err := h.cmds.UpdateLot(ctx, caller, id, req.ToCommand()); err != nil {
		httperr.Abort(c, err)
		return
	}

	view, err := h.q.GetLot(ctx, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLotView(view))
}

// @Summary Delete lot
// @Description Delete a lot with no active reservations (admin only)
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Lot ID"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/admin/lots/{id} [delete]
func (h *CatalogHandler) DeleteLot(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cmds.DeleteLot(c.Request.Context(), caller, id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
