package user

import (
	"time"
)

type User struct {
	id           int64
	name         Name
	email        Email
	phone        Phone
	passwordHash string
	isAdmin      bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser builds a user that is not yet persisted; the store assigns the id.
// isAdmin is fixed here and never changes afterwards.
func NewUser(name Name, email Email, phone Phone, passwordHash string, isAdmin bool, now time.Time) *User {
	return &User{
		name:         name,
		email:        email,
		phone:        phone,
		passwordHash: passwordHash,
		isAdmin:      isAdmin,
		createdAt:    now,
		updatedAt:    now,
	}
}

func ReconstructUser(
	id int64,
	name Name,
	email Email,
	phone Phone,
	passwordHash string,
	isAdmin bool,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:           id,
		name:         name,
		email:        email,
		phone:        phone,
		passwordHash: passwordHash,
		isAdmin:      isAdmin,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) AssignID(id int64) { u.id = id }

func (u *User) ID() int64            { return u.id }
func (u *User) Name() Name           { return u.name }
func (u *User) Email() Email         { return u.email }
func (u *User) Phone() Phone         { return u.phone }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) IsAdmin() bool        { return u.isAdmin }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
