package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"parking-lot-manager/internal/handler/httperr"
	"parking-lot-manager/internal/pkg/cookie"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/pkg/jwt"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

// TokenValidator is satisfied by *jwt.Service.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const (
	ctxUserIDKey  = "user_id"
	ctxIsAdminKey = "is_admin"
)

var errAdminRequired = errs.Wrap(errs.ErrPermissionDenied, "admin role required")

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.GetAccessToken(c)
		if token == "" {
			token = bearerToken(c)
		}

		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errs.ErrUnauthenticated, "Access token required", nil)
			return
		}

		claims, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxIsAdminKey, claims.IsAdmin)
		c.Set("jwt_claims", map[string]any{
			"user_id":  strconv.FormatInt(claims.UserID, 10),
			"is_admin": claims.IsAdmin,
		})
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusUnauthorized, errs.ErrUnauthenticated, "Access token required", nil)
			return
		}
		if !caller.IsAdmin {
			httperr.Abort(c, errAdminRequired)
			return
		}
		c.Next()
	}
}

// bearerToken also accepts ?token= so browser WebSocket clients, which
// cannot set headers, can authenticate.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return c.Query("token")
}

// GetCaller returns the authenticated identity set by RequireAuth.
func GetCaller(c *gin.Context) (shared.Caller, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return shared.Caller{}, false
	}
	id, ok := userID.(int64)
	if !ok {
		return shared.Caller{}, false
	}
	isAdmin := c.GetBool(ctxIsAdminKey)
	return shared.Caller{UserID: id, IsAdmin: isAdmin}, true
}
