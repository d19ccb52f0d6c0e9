package auth

import (
	"errors"
	"strings"

	"parking-lot-manager/internal/domain/user"
	"parking-lot-manager/internal/pkg/errs"
)

var (
	ErrInvalidCredentials = errs.Mark(errors.New("invalid name or password"), errs.ErrUnauthenticated)
)

// Credentials only require non-empty fields; malformed logins fail as bad credentials.
type Credentials struct {
	name     string
	password string
}

func NewCredentials(name, password string) (Credentials, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return Credentials{}, ErrInvalidCredentials
	}
	return Credentials{name: name, password: password}, nil
}

func (c Credentials) Name() string {
	return c.name
}

func (c Credentials) Password() string {
	return c.password
}

// Principal is what a successful login resolves to.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

func PrincipalOf(u *user.User) Principal {
	return Principal{UserID: u.ID(), IsAdmin: u.IsAdmin()}
}
