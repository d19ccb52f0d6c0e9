//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID int64, isAdmin bool) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, _, err := jwt.NewService(h.cfg.Secret, duration).GenerateToken(userID, isAdmin)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID int64, isAdmin bool) string {
	t.Helper()
	token, _, err := jwt.NewService(h.cfg.Secret, time.Millisecond).GenerateToken(userID, isAdmin)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}
