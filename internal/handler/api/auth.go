package api

import (
	"net/http"
	"strconv"

	reqdto "parking-lot-manager/internal/handler/dto/request"
	resdto "parking-lot-manager/internal/handler/dto/response"
	"parking-lot-manager/internal/handler/httperr"
	"parking-lot-manager/internal/handler/middleware"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/cookie"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth      commands.AuthCommands
	users     commands.UserCommands
	q         queries.UserQueries
	cookieCfg config.CookieConfig
}

func NewAuthHandler(auth commands.AuthCommands, users commands.UserCommands, q queries.UserQueries, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		users:     users,
		q:         q,
		cookieCfg: cfg.Cookie,
	}
}

// @Summary Register
// @Description Create a non-admin account with default reminder preferences
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RegisterRequest true "Register request"
// @Success 201 {object} resdto.CreatedResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req reqdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request format")
		return
	}

	id, err := h.users.Register(c.Request.Context(), req.ToCommand())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

// @Summary User login
// @Description Login with name and password; the token is also set as an HttpOnly cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request format")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.ToCommand())
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	cookie.SetAccessToken(c, h.cookieCfg, result.AccessToken, result.ExpiresAt)
	c.JSON(http.StatusOK, resdto.FromLoginResult(result))
}

// @Summary User logout
// @Description Clear the access token cookie
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie.ClearAccessToken(c, h.cookieCfg)
	c.Status(http.StatusNoContent)
}

// @Summary Get current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.UserResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}

	view, err := h.q.GetCurrentUser(c.Request.Context(), caller)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("X-User-ID", strconv.FormatInt(view.ID, 10))
	c.JSON(http.StatusOK, resdto.FromUserView(view))
}
