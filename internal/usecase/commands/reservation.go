package commands

import (
	"context"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

type ReleaseResult struct {
	Cost          decimal.Decimal
	DurationHours float64
	ReleasedAt    time.Time
}

type FreeSpotResult struct {
	SpotID int64
	// ReservationID is 0 when the spot had no active reservation.
	ReservationID int64
	Cost          decimal.Decimal
}

type ExpireResult struct {
	Expired []int64
}

type ReservationCommands interface {
	Reserve(ctx context.Context, caller shared.Caller, lotID int64) (int64, error)
	Park(ctx context.Context, caller shared.Caller, reservationID int64) error
	Release(ctx context.Context, caller shared.Caller, reservationID int64) (*ReleaseResult, error)
	FreeSpot(ctx context.Context, caller shared.Caller, spotID int64) (*FreeSpotResult, error)
	ExpireStale(ctx context.Context, threshold time.Duration) (*ExpireResult, error)
}

type reservationUseCaseImpl struct {
	uow              shared.UnitOfWork
	clock            clock.Clock
	priceCalculator  reservation.PriceCalculator
	events           shared.EventPublisher
	forceFreeBilling bool
}

func NewReservationUseCase(
	uow shared.UnitOfWork,
	clk clock.Clock,
	priceCalculator reservation.PriceCalculator,
	events shared.EventPublisher,
	cfg config.ParkingConfig,
) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:              uow,
		clock:            clk,
		priceCalculator:  priceCalculator,
		events:           events,
		forceFreeBilling: cfg.ForceFreeBilling,
	}
}

func (uc *reservationUseCaseImpl) Reserve(ctx context.Context, caller shared.Caller, lotID int64) (int64, error) {
	if caller.IsAdmin {
		return 0, errs.Wrap(errs.ErrPermissionDenied, "admins cannot reserve")
	}

	now := uc.clock.Now()
	var created *reservation.Reservation
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		u, err := tx.Users().FindByID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			return errs.Wrap(errs.ErrPermissionDenied, "admins cannot reserve")
		}

		active, err := tx.Reservations().FindActiveByUser(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if active != nil {
			return errs.Wrapf(errs.ErrUserHasActive, "reservation %d", active.ID())
		}

		if _, err := tx.Lots().FindByID(ctx, lotID); err != nil {
			return err
		}

		spot, err := tx.Spots().ClaimFirstAvailable(ctx, lotID, now)
		if err != nil {
			return err
		}
		if spot == nil {
			return errs.Wrapf(errs.ErrNoSpotAvailable, "lot %d", lotID)
		}

		res := reservation.NewReservation(caller.UserID, lotID, spot.ID, now)
		id, err := tx.Reservations().Create(ctx, res)
		if err != nil {
			return translateConflict(err)
		}
		res.AssignID(id)
		created = res
		return nil
	})
	if err != nil {
		return 0, err
	}

	uc.events.Publish(ctx, event.New(event.ReservationCreated, now).
		WithUser(created.UserID()).
		WithLot(created.LotID()).
		WithSpot(created.SpotID()).
		WithReservation(created.ID()))
	return created.ID(), nil
}

func (uc *reservationUseCaseImpl) Park(ctx context.Context, caller shared.Caller, reservationID int64) error {
	now := uc.clock.Now()
	var parked *reservation.Reservation
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := res.Park(caller.UserID, now); err != nil {
			return err
		}
		if err := updateActive(ctx, tx, res); err != nil {
			return err
		}
		parked = res
		return nil
	})
	if err != nil {
		return err
	}

	uc.events.Publish(ctx, reservationEvent(event.ReservationParked, parked, *parked.ParkedAt()))
	return nil
}

func (uc *reservationUseCaseImpl) Release(ctx context.Context, caller shared.Caller, reservationID int64) (*ReleaseResult, error) {
	now := uc.clock.Now()
	var (
		released *reservation.Reservation
		bill     reservation.Bill
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !res.Belongs(caller.UserID) {
			return reservation.ErrNotOwner
		}
		entity, err := tx.Lots().FindByID(ctx, res.LotID())
		if err != nil {
			return err
		}

		bill, err = res.Release(caller.UserID, now, uc.priceCalculator, entity.Price())
		if err != nil {
			return err
		}
		if err := updateActive(ctx, tx, res); err != nil {
			return err
		}
		if err := freeSpot(ctx, tx, res.SpotID(), now); err != nil {
			return err
		}
		released = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, reservationEvent(event.ReservationReleased, released, bill.ReleasedAt).
		WithPayload(map[string]any{"cost": bill.Cost, "duration_hours": bill.DurationHours}))

	return &ReleaseResult{
		Cost:          bill.Cost,
		DurationHours: bill.DurationHours,
		ReleasedAt:    bill.ReleasedAt,
	}, nil
}

func (uc *reservationUseCaseImpl) FreeSpot(ctx context.Context, caller shared.Caller, spotID int64) (*FreeSpotResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var (
		result   FreeSpotResult
		released *reservation.Reservation
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = FreeSpotResult{SpotID: spotID, Cost: decimal.Zero}
		released = nil

		spot, err := tx.Spots().FindByID(ctx, spotID)
		if err != nil {
			return err
		}

		res, err := tx.Reservations().FindActiveBySpot(ctx, spot.ID)
		if err != nil {
			return err
		}
		if res != nil {
			entity, err := tx.Lots().FindByID(ctx, res.LotID())
			if err != nil {
				return err
			}
			bill, err := res.ForceRelease(now, uc.forceFreeBilling, uc.priceCalculator, entity.Price())
			if err != nil {
				return err
			}
			if err := updateActive(ctx, tx, res); err != nil {
				return err
			}
			result.ReservationID = res.ID()
			result.Cost = bill.Cost
			released = res
		}

		// A spot without an active reservation is already available; freeing it is a no-op.
		if _, err := tx.Spots().SetStatus(ctx, spot.ID, lot.SpotOccupied, lot.SpotAvailable, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if released != nil {
		uc.events.Publish(ctx, reservationEvent(event.ReservationForceReleased, released, now).
			WithPayload(map[string]any{"cost": result.Cost}))
	}
	return &result, nil
}

func (uc *reservationUseCaseImpl) ExpireStale(ctx context.Context, threshold time.Duration) (*ExpireResult, error) {
	now := uc.clock.Now()
	result := &ExpireResult{}
	box := &outbox{}
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result.Expired = result.Expired[:0]
		box.reset()

		stale, err := tx.Reservations().ListStale(ctx, now.Add(-threshold))
		if err != nil {
			return err
		}
		for _, res := range stale {
			if err := res.Expire(now, threshold); err != nil {
				return err
			}
			if err := updateActive(ctx, tx, res); err != nil {
				return err
			}
			if err := freeSpot(ctx, tx, res.SpotID(), now); err != nil {
				return err
			}
			result.Expired = append(result.Expired, res.ID())
			box.add(reservationEvent(event.ReservationExpired, res, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	box.flush(ctx, uc.events)
	return result, nil
}

// updateActive persists res, reporting INVALID_STATE if the stored row
// stopped being active underneath us.
func updateActive(ctx context.Context, tx shared.Tx, res *reservation.Reservation) error {
	err := tx.Reservations().Update(ctx, res)
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Wrapf(reservation.ErrNotActive, "reservation %d", res.ID())
	}
	return err
}

// freeSpot flips an occupied spot back to available. The spot must be
// occupied because the reservation being closed was active on it.
func freeSpot(ctx context.Context, tx shared.Tx, spotID int64, now time.Time) error {
	ok, err := tx.Spots().SetStatus(ctx, spotID, lot.SpotOccupied, lot.SpotAvailable, now)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Wrapf(errs.ErrInternal, "spot %d was not occupied by its active reservation", spotID)
	}
	return nil
}

func reservationEvent(t event.Type, res *reservation.Reservation, at time.Time) event.Event {
	return event.New(t, at).
		WithUser(res.UserID()).
		WithLot(res.LotID()).
		WithSpot(res.SpotID()).
		WithReservation(res.ID())
}
