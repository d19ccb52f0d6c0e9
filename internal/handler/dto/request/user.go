package request

import "parking-lot-manager/internal/usecase/commands"

type SetPreferencesRequest struct {
	ReminderEnabled *bool  `json:"reminder_enabled" binding:"required"`
	ReminderTime    string `json:"reminder_time" binding:"required"`
	Channel         string `json:"channel" binding:"required,oneof=email chat"`
}

func (r *SetPreferencesRequest) ToCommand() commands.SetPreferencesRequest {
	return commands.SetPreferencesRequest{
		ReminderEnabled: *r.ReminderEnabled,
		ReminderTime:    r.ReminderTime,
		Channel:         r.Channel,
	}
}
