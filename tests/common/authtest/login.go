//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"

	"parking-lot-manager/internal/handler/dto/request"
	"parking-lot-manager/internal/pkg/cookie"
	"parking-lot-manager/tests/common/dbtest"
	"parking-lot-manager/tests/common/httptest"

	"github.com/stretchr/testify/require"
)

// LoginUser logs in through the API and returns the access token cookie value.
func LoginUser(t *testing.T, router http.Handler, name, password string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		request.LoginRequest{Name: name, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	accessCookie := httptest.ExtractCookie(w, cookie.AccessTokenCookieName)
	require.NotNil(t, accessCookie, "Access token not found in cookies")
	require.NotEmpty(t, accessCookie.Value, "Access token cookie is empty")

	return accessCookie.Value
}

// CreateAndLogin returns the new user's id and token.
func CreateAndLogin(t *testing.T, db dbtest.DBLike, router http.Handler, name string, isAdmin bool) (int64, string) {
	t.Helper()
	id := dbtest.CreateTestUser(t, db, name, isAdmin)
	return id, LoginUser(t, router, name, dbtest.DefaultPassword)
}
