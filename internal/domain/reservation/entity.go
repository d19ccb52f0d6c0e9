package reservation

import (
	"errors"
	"time"

	"parking-lot-manager/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrNotOwner      = errs.Mark(errors.New("reservation belongs to another user"), errs.ErrPermissionDenied)
	ErrNotActive     = errs.Mark(errors.New("reservation is no longer active"), errs.ErrInvalidState)
	ErrAlreadyParked = errs.Mark(errors.New("reservation is already parked"), errs.ErrInvalidState)
	ErrNotParked     = errs.Mark(errors.New("reservation has not been parked"), errs.ErrNotParked)
	ErrNotStale      = errs.Mark(errors.New("reservation is not stale"), errs.ErrInvalidState)
	ErrInvalidStatus = errs.Mark(errors.New("invalid reservation status"), errs.ErrInvalidArgument)
)

// Bill is returned by a completed release.
type Bill struct {
	Cost          decimal.Decimal
	DurationHours float64
	ReleasedAt    time.Time
}

type Reservation struct {
	id         int64
	spotID     int64
	lotID      int64
	userID     int64
	status     Status
	parkedAt   *time.Time
	releasedAt *time.Time
	cost       *decimal.Decimal
	createdAt  time.Time
	updatedAt  time.Time
}

func NewReservation(userID, lotID, spotID int64, now time.Time) *Reservation {
	return &Reservation{
		spotID:    spotID,
		lotID:     lotID,
		userID:    userID,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

func ReconstructReservation(
	id, spotID, lotID, userID int64,
	status Status,
	parkedAt, releasedAt *time.Time,
	cost *decimal.Decimal,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:         id,
		spotID:     spotID,
		lotID:      lotID,
		userID:     userID,
		status:     status,
		parkedAt:   parkedAt,
		releasedAt: releasedAt,
		cost:       cost,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (r *Reservation) Park(userID int64, now time.Time) error {
	if !r.Belongs(userID) {
		return ErrNotOwner
	}
	if r.status != StatusActive {
		return ErrNotActive
	}
	if r.parkedAt != nil {
		return ErrAlreadyParked
	}
	at := notBefore(now, r.createdAt)
	r.parkedAt = &at
	r.updatedAt = at
	return nil
}

func (r *Reservation) Release(userID int64, now time.Time, calc PriceCalculator, pricePerHour decimal.Decimal) (Bill, error) {
	if !r.Belongs(userID) {
		return Bill{}, ErrNotOwner
	}
	if r.status != StatusActive {
		return Bill{}, ErrNotActive
	}
	if r.parkedAt == nil {
		return Bill{}, ErrNotParked
	}
	at := notBefore(now, *r.parkedAt)
	charge := calc.Charge(*r.parkedAt, at, pricePerHour)
	r.complete(at, charge.Cost)
	return Bill{Cost: charge.Cost, DurationHours: charge.DurationHours, ReleasedAt: at}, nil
}

// ForceRelease completes an active reservation on behalf of an admin.
// The parked interval is billed only when bill is set; an unparked
// reservation always costs zero.
func (r *Reservation) ForceRelease(now time.Time, bill bool, calc PriceCalculator, pricePerHour decimal.Decimal) (Bill, error) {
	if r.status != StatusActive {
		return Bill{}, ErrNotActive
	}
	if r.parkedAt == nil {
		// Never release before the reservation was created.
		at := notBefore(now, r.createdAt)
		r.complete(at, decimal.Zero)
		return Bill{Cost: decimal.Zero, ReleasedAt: at}, nil
	}
	at := notBefore(now, *r.parkedAt)
	charge := calc.Charge(*r.parkedAt, at, pricePerHour)
	if !bill {
		charge.Cost = decimal.Zero
	}
	r.complete(at, charge.Cost)
	return Bill{Cost: charge.Cost, DurationHours: charge.DurationHours, ReleasedAt: at}, nil
}

// IsStale reports an active, never-parked reservation created at or before now-threshold.
func (r *Reservation) IsStale(now time.Time, threshold time.Duration) bool {
	return r.status == StatusActive && r.parkedAt == nil && !r.createdAt.After(now.Add(-threshold))
}

func (r *Reservation) Expire(now time.Time, threshold time.Duration) error {
	if !r.IsStale(now, threshold) {
		return ErrNotStale
	}
	r.status = StatusExpired
	r.updatedAt = now
	return nil
}

func (r *Reservation) complete(at time.Time, cost decimal.Decimal) {
	r.status = StatusCompleted
	r.releasedAt = &at
	r.cost = &cost
	r.updatedAt = at
}

func (r *Reservation) Belongs(userID int64) bool {
	return r.userID == userID
}

func (r *Reservation) IsActive() bool {
	return r.status == StatusActive
}

func (r *Reservation) IsParked() bool {
	return r.parkedAt != nil
}

func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}

func (r *Reservation) AssignID(id int64) { r.id = id }

func (r *Reservation) ID() int64              { return r.id }
func (r *Reservation) SpotID() int64          { return r.spotID }
func (r *Reservation) LotID() int64           { return r.lotID }
func (r *Reservation) UserID() int64          { return r.userID }
func (r *Reservation) Status() Status         { return r.status }
func (r *Reservation) ParkedAt() *time.Time   { return r.parkedAt }
func (r *Reservation) ReleasedAt() *time.Time { return r.releasedAt }
func (r *Reservation) Cost() *decimal.Decimal { return r.cost }
func (r *Reservation) CreatedAt() time.Time   { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time   { return r.updatedAt }
