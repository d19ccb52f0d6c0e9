package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"parking-lot-manager/internal/pkg/errs"
)

var (
	ErrInvalidEmail        = errs.Mark(errors.New("invalid email format"), errs.ErrInvalidArgument)
	ErrInvalidName         = errs.Mark(errors.New("name must be 3-64 characters"), errs.ErrInvalidArgument)
	ErrInvalidPhone        = errs.Mark(errors.New("invalid phone number"), errs.ErrInvalidArgument)
	ErrPasswordTooWeak     = errs.Mark(errors.New("password must be at least 8 characters long"), errs.ErrInvalidArgument)
	ErrInvalidReminderTime = errs.Mark(errors.New("reminder time must be HH:MM"), errs.ErrInvalidArgument)
	ErrInvalidChannel      = errs.Mark(errors.New("invalid notification channel"), errs.ErrInvalidArgument)
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	if !emailRegex.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: s}, nil
}

func (e Email) Value() string {
	return e.value
}

type Name struct {
	value string
}

func NewName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 64 {
		return Name{}, ErrInvalidName
	}
	return Name{value: s}, nil
}

func (n Name) Value() string {
	return n.value
}

// Phone is optional; the zero value means "not provided".
type Phone struct {
	value string
}

func NewPhone(s string) (Phone, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Phone{}, nil
	}
	if !phoneRegex.MatchString(s) {
		return Phone{}, ErrInvalidPhone
	}
	return Phone{value: s}, nil
}

func (p Phone) Value() string {
	return p.value
}

type Password struct {
	value string
}

func NewPassword(s string) (Password, error) {
	if len(s) < 8 {
		return Password{}, ErrPasswordTooWeak
	}
	return Password{value: s}, nil
}

func (p Password) Value() string {
	return p.value
}

// ReminderTime is a wall-clock time of day in the scheduler timezone.
type ReminderTime struct {
	hour   int
	minute int
}

func NewReminderTime(s string) (ReminderTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ReminderTime{}, ErrInvalidReminderTime
	}
	return ReminderTime{hour: t.Hour(), minute: t.Minute()}, nil
}

func (r ReminderTime) Hour() int   { return r.hour }
func (r ReminderTime) Minute() int { return r.minute }

func (r ReminderTime) String() string {
	return time.Date(0, 1, 1, r.hour, r.minute, 0, 0, time.UTC).Format("15:04")
}

// On returns the reminder instant on the calendar day of day, in day's location.
func (r ReminderTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, r.hour, r.minute, 0, 0, day.Location())
}

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
)

func (c Channel) String() string {
	return string(c)
}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelChat:
		return true
	default:
		return false
	}
}

func NewChannel(s string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !ch.IsValid() {
		return "", ErrInvalidChannel
	}
	return ch, nil
}
