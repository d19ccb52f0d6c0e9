package user

import "time"

// Preferences exists once per non-admin user.
type Preferences struct {
	userID          int64
	reminderEnabled bool
	reminderTime    ReminderTime
	channel         Channel
	updatedAt       time.Time
}

func DefaultPreferences(userID int64, now time.Time) *Preferences {
	return &Preferences{
		userID:          userID,
		reminderEnabled: true,
		reminderTime:    ReminderTime{hour: 18},
		channel:         ChannelEmail,
		updatedAt:       now,
	}
}

func NewPreferences(userID int64, enabled bool, at ReminderTime, channel Channel, now time.Time) *Preferences {
	return &Preferences{
		userID:          userID,
		reminderEnabled: enabled,
		reminderTime:    at,
		channel:         channel,
		updatedAt:       now,
	}
}

func (p *Preferences) UserID() int64              { return p.userID }
func (p *Preferences) ReminderEnabled() bool      { return p.reminderEnabled }
func (p *Preferences) ReminderTime() ReminderTime { return p.reminderTime }
func (p *Preferences) Channel() Channel           { return p.channel }
func (p *Preferences) UpdatedAt() time.Time       { return p.updatedAt }

// DueWithin reports whether today's reminder instant falls in (from, to].
// from and to must already be in the scheduler timezone.
func (p *Preferences) DueWithin(from, to time.Time) bool {
	if !p.reminderEnabled {
		return false
	}
	at := p.reminderTime.On(to)
	if at.After(from) && !at.After(to) {
		return true
	}
	// window crossing midnight
	if from.YearDay() != to.YearDay() {
		at = p.reminderTime.On(from)
		return at.After(from) && !at.After(to)
	}
	return false
}
