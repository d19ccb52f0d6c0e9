package api

import (
	"net/http"
	"strconv"

	reqdto "parking-lot-manager/internal/handler/dto/request"
	resdto "parking-lot-manager/internal/handler/dto/response"
	"parking-lot-manager/internal/handler/httperr"
	"parking-lot-manager/internal/handler/middleware"
	"parking-lot-manager/internal/usecase/jobs"
	"parking-lot-manager/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const defaultJobLimit = 50

type JobHandler struct {
	jobs jobs.JobUseCase
	q    queries.JobQueries
}

func NewJobHandler(uc jobs.JobUseCase, q queries.JobQueries) *JobHandler {
	return &JobHandler{
		jobs: uc,
		q:    q,
	}
}

// @Summary Trigger job
// @Description Queue a background job; poll its status via GET /api/admin/jobs/{id}
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.TriggerJobRequest true "Job"
// @Success 202 {object} resdto.CreatedResponse
// @Failure 400 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/admin/jobs [post]
func (h *JobHandler) Trigger(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}

	var req reqdto.TriggerJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request format")
		return
	}

	id, err := h.jobs.TriggerJob(c.Request.Context(), caller, req.Kind, req.Params)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/admin/jobs/"+strconv.FormatInt(id, 10))
	c.JSON(http.StatusAccepted, resdto.CreatedResponse{ID: id})
}

// @Summary Get job
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} resdto.JobResponse
// @Failure 404 {object} httperr.Response
// @Router /api/admin/jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.q.GetJob(c.Request.Context(), caller, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromJobView(view))
}

// @Summary List jobs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows"
// @Success 200 {array} resdto.JobResponse
// @Router /api/admin/jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}
	limit, ok := queryInt(c, "limit", defaultJobLimit)
	if !ok {
		return
	}

	views, err := h.q.ListJobs(c.Request.Context(), caller, limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromJobViews(views))
}
