package shared

import (
	"context"

	"parking-lot-manager/internal/domain/event"

	"github.com/shopspring/decimal"
)

// Caller is the identity every core operation acts on behalf of.
type Caller struct {
	UserID  int64
	IsAdmin bool
}

// SystemCaller is used by the scheduler.
var SystemCaller = Caller{IsAdmin: true}

type EventPublisher interface {
	// Publish must not block on slow consumers.
	Publish(ctx context.Context, events ...event.Event)
}

// LotActivity aggregates reservations per lot over [From, To).
// Reservations counts rows created in the window; Completed and Revenue
// count rows released in it.
type LotActivity struct {
	LotID        int64
	Reservations int
	Completed    int
	Revenue      decimal.Decimal
}

type UserActivity struct {
	UserID       int64
	Reservations int
	Completed    int
	Spent        decimal.Decimal
	HoursParked  float64
}
