package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ReservationCreated       Type = "ReservationCreated"
	ReservationParked        Type = "ReservationParked"
	ReservationReleased      Type = "ReservationReleased"
	ReservationForceReleased Type = "ReservationForceReleased"
	ReservationExpired       Type = "ReservationExpired"
	CatalogChanged           Type = "CatalogChanged"
	UserChanged              Type = "UserChanged"
	JobStarted               Type = "JobStarted"
	JobCompleted             Type = "JobCompleted"
	JobFailed                Type = "JobFailed"

	// Notifications produced by scheduled jobs.
	ReminderDue          Type = "ReminderDue"
	DailyReportReady     Type = "DailyReportReady"
	MonthlyReportReady   Type = "MonthlyReportReady"
	OptimizationAdvisory Type = "OptimizationAdvisory"
	NotificationDropped  Type = "NotificationDropped"
)

func (t Type) String() string {
	return string(t)
}

// Invalidates reports whether the event changes data behind cached reads.
func (t Type) Invalidates() bool {
	switch t {
	case CatalogChanged, ReservationCreated, ReservationParked, ReservationReleased,
		ReservationForceReleased, ReservationExpired, UserChanged:
		return true
	default:
		return false
	}
}

// Event is a domain fact published after the transaction that produced it commits.
// Zero ids mean "not applicable".
type Event struct {
	ID            uuid.UUID       `json:"id"`
	Type          Type            `json:"type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	LotID         int64           `json:"lot_id,omitempty"`
	SpotID        int64           `json:"spot_id,omitempty"`
	ReservationID int64           `json:"reservation_id,omitempty"`
	UserID        int64           `json:"user_id,omitempty"`
	JobID         int64           `json:"job_id,omitempty"`
	Channel       string          `json:"channel,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

func New(t Type, at time.Time) Event {
	return Event{ID: uuid.New(), Type: t, OccurredAt: at}
}

func (e Event) WithLot(id int64) Event         { e.LotID = id; return e }
func (e Event) WithSpot(id int64) Event        { e.SpotID = id; return e }
func (e Event) WithReservation(id int64) Event { e.ReservationID = id; return e }
func (e Event) WithUser(id int64) Event        { e.UserID = id; return e }
func (e Event) WithJob(id int64) Event         { e.JobID = id; return e }
func (e Event) WithChannel(ch string) Event    { e.Channel = ch; return e }

// WithPayload marshals v into the event; marshal failures leave the payload empty.
func (e Event) WithPayload(v any) Event {
	if b, err := json.Marshal(v); err == nil {
		e.Payload = b
	}
	return e
}
