package commands

import (
	"context"
	"log/slog"
	"time"

	"parking-lot-manager/internal/domain/auth"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/pkg/jwt"
	"parking-lot-manager/internal/pkg/password"
	"parking-lot-manager/internal/usecase/shared"
)

type LoginRequest struct {
	Name     string
	Password string
}

type LoginResult struct {
	UserID      int64
	IsAdmin     bool
	AccessToken string
	ExpiresAt   time.Time
}

type AuthCommands interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	credentials, err := auth.NewCredentials(req.Name, req.Password)
	if err != nil {
		return nil, err
	}

	principal, err := a.validateUser(ctx, credentials)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := a.jwtService.GenerateToken(principal.UserID, principal.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		UserID:      principal.UserID,
		IsAdmin:     principal.IsAdmin,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (a *authCommandsImpl) validateUser(ctx context.Context, credentials auth.Credentials) (auth.Principal, error) {
	var (
		principal auth.Principal
		hash      string
	)
	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		u, err := tx.Users().FindByName(ctx, credentials.Name())
		if err != nil {
			return err
		}
		principal = auth.PrincipalOf(u)
		hash = u.PasswordHash()
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// Same error as a password mismatch to prevent user enumeration
			return auth.Principal{}, auth.ErrInvalidCredentials
		}
		return auth.Principal{}, err
	}

	if err := password.ComparePassword(hash, credentials.Password()); err != nil {
		if !errs.Is(err, password.ErrComparisonFailed) {
			slog.Warn("password comparison failed unexpectedly", "user_id", principal.UserID, "error", err.Error())
		}
		return auth.Principal{}, auth.ErrInvalidCredentials
	}

	return principal, nil
}
