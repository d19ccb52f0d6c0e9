package response

import (
	"time"

	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      int64     `json:"user_id"`
	IsAdmin     bool      `json:"is_admin"`
}

func FromLoginResult(r *commands.LoginResult) LoginResponse {
	var res LoginResponse
	_ = copier.Copy(&res, r)
	return res
}

type UserResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	IsAdmin         bool      `json:"is_admin"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderTime    string    `json:"reminder_time,omitempty"`
	Channel         string    `json:"channel,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func FromUserView(v *queries.UserView) UserResponse {
	var res UserResponse
	_ = copier.Copy(&res, v)
	return res
}
