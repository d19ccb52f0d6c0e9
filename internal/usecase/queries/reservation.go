package queries

import (
	"context"
	"time"

	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"
)

type ReservationQueries interface {
	// Active returns the caller's active reservation, NOT_FOUND when there is none.
	Active(ctx context.Context, caller shared.Caller) (*ReservationView, error)
	GetByID(ctx context.Context, caller shared.Caller, id int64) (*ReservationView, error)
	// History is newest first and cached per user.
	History(ctx context.Context, caller shared.Caller, limit int) ([]ReservationView, error)
}

type reservationQueriesImpl struct {
	uow   shared.UnitOfWork
	cache shared.CacheIndex
	ttl   time.Duration
}

func NewReservationQueries(uow shared.UnitOfWork, cache shared.CacheIndex, ttl time.Duration) ReservationQueries {
	return &reservationQueriesImpl{uow: uow, cache: cache, ttl: ttl}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, caller shared.Caller, id int64) (*ReservationView, error) {
	var view ReservationView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !caller.IsAdmin && !res.Belongs(caller.UserID) {
			return reservation.ErrNotOwner
		}
		view = toReservationView(res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (q *reservationQueriesImpl) Active(ctx context.Context, caller shared.Caller) (*ReservationView, error) {
	var view *ReservationView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindActiveByUser(ctx, caller.UserID)
		if err != nil || res == nil {
			return err
		}
		v := toReservationView(res)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, errs.Wrap(errs.ErrNotFound, "no active reservation")
	}
	return view, nil
}

func (q *reservationQueriesImpl) History(ctx context.Context, caller shared.Caller, limit int) ([]ReservationView, error) {
	limit = clampLimit(limit)
	key := shared.CacheKey{
		Prefix:   shared.UserCachePrefix(caller.UserID),
		Function: "history",
		Args:     limit,
	}
	return shared.ReadThrough(ctx, q.cache, key, q.ttl, func(ctx context.Context) ([]ReservationView, error) {
		var views []ReservationView
		err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			rows, err := tx.Reservations().ListByUser(ctx, caller.UserID, limit)
			if err != nil {
				return err
			}
			views = make([]ReservationView, 0, len(rows))
			for _, r := range rows {
				views = append(views, toReservationView(r))
			}
			return nil
		})
		return views, err
	})
}
