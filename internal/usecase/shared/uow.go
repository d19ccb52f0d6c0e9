package shared

import (
	"context"
	"time"

	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/domain/user"
)

type UnitOfWork interface {
	// Within: Serializable read-write transaction. fn may run more than once
	// when the backend retries a serialization failure, so it must not have
	// side effects outside tx.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Consistent snapshot for multi-table reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Users() UserRepository
	Preferences() PreferencesRepository
	Lots() LotRepository
	Spots() SpotRepository
	Reservations() ReservationRepository
	Jobs() JobRepository
}

// Lookups return (nil, error of kind NOT_FOUND) when the row does not exist,
// except the FindActive* methods which return (nil, nil).

type UserRepository interface {
	Create(ctx context.Context, u *user.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByName(ctx context.Context, name string) (*user.User, error)
	ExistsAdmin(ctx context.Context) (bool, error)
	ListNonAdmin(ctx context.Context) ([]*user.User, error)
	Delete(ctx context.Context, id int64) error
}

type PreferencesRepository interface {
	Upsert(ctx context.Context, p *user.Preferences) error
	FindByUser(ctx context.Context, userID int64) (*user.Preferences, error)
	ListReminderEnabled(ctx context.Context) ([]*user.Preferences, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

type LotRepository interface {
	Create(ctx context.Context, l *lot.Lot) (int64, error)
	FindByID(ctx context.Context, id int64) (*lot.Lot, error)
	Update(ctx context.Context, l *lot.Lot) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*lot.Lot, error)
}

type SpotRepository interface {
	CreateOrdinals(ctx context.Context, lotID int64, ordinals []int, now time.Time) error
	FindByID(ctx context.Context, id int64) (*lot.Spot, error)
	// List returns spots ordered by (lot_id, ordinal); lotID 0 means all lots.
	List(ctx context.Context, lotID int64) ([]lot.Spot, error)
	// ClaimFirstAvailable flips the smallest-ordinal available spot of the lot
	// to occupied with a conditional update. It returns (nil, nil) when none is left.
	ClaimFirstAvailable(ctx context.Context, lotID int64, now time.Time) (*lot.Spot, error)
	// SetStatus is a conditional update; it reports whether the row was in from.
	SetStatus(ctx context.Context, spotID int64, from, to lot.SpotStatus, now time.Time) (bool, error)
	// DeleteAvailableAbove removes available spots with ordinal > capacity and returns the count.
	DeleteAvailableAbove(ctx context.Context, lotID int64, capacity int) (int64, error)
	Occupancy(ctx context.Context) ([]lot.Occupancy, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *reservation.Reservation) (int64, error)
	FindByID(ctx context.Context, id int64) (*reservation.Reservation, error)
	FindActiveByUser(ctx context.Context, userID int64) (*reservation.Reservation, error)
	FindActiveBySpot(ctx context.Context, spotID int64) (*reservation.Reservation, error)
	CountActiveBySpots(ctx context.Context, spotIDs []int64) (int, error)
	// Update persists r only while the stored row is still active.
	Update(ctx context.Context, r *reservation.Reservation) error
	ListStale(ctx context.Context, cutoff time.Time) ([]*reservation.Reservation, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*reservation.Reservation, error)
	CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error)
	LotActivity(ctx context.Context, from, to time.Time) ([]LotActivity, error)
	UserActivity(ctx context.Context, from, to time.Time) ([]UserActivity, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

type JobRepository interface {
	Create(ctx context.Context, j *job.Job) (int64, error)
	FindByID(ctx context.Context, id int64) (*job.Job, error)
	Update(ctx context.Context, j *job.Job) error
	List(ctx context.Context, limit int) ([]*job.Job, error)
}
