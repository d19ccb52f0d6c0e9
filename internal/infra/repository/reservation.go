package repository

import (
	"context"
	"errors"
	"time"

	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/pkg/pgconv"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var reservationColumns = []string{
	"id", "spot_id", "lot_id", "user_id", "status",
	"parked_at", "released_at", "cost", "created_at", "updated_at",
}

const (
	createdIn  = "created_at >= ? AND created_at < ?"
	releasedIn = "status = 'completed' AND released_at >= ? AND released_at < ?"
)

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (int64, error) {
	q := psql.Insert("reservations").
		Columns("spot_id", "lot_id", "user_id", "status", "parked_at", "released_at", "cost", "created_at", "updated_at").
		Values(
			res.SpotID(),
			res.LotID(),
			res.UserID(),
			res.Status().String(),
			pgconv.TimePtrToPgtype(res.ParkedAt()),
			pgconv.TimePtrToPgtype(res.ReleasedAt()),
			pgconv.DecimalPtrToNumeric(res.Cost()),
			res.CreatedAt(),
			res.UpdatedAt(),
		).
		Suffix("RETURNING id")

	var id int64
	if err := queryRow(ctx, r.db, q).Scan(&id); err != nil {
		return 0, infra.WrapRepoErr("failed to create reservation", err)
	}
	return id, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (*reservation.Reservation, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id}, false)
}

func (r *ReservationRepository) FindActiveByUser(ctx context.Context, userID int64) (*reservation.Reservation, error) {
	return r.findOne(ctx, squirrel.Eq{"user_id": userID, "status": reservation.StatusActive.String()}, true)
}

func (r *ReservationRepository) FindActiveBySpot(ctx context.Context, spotID int64) (*reservation.Reservation, error) {
	return r.findOne(ctx, squirrel.Eq{"spot_id": spotID, "status": reservation.StatusActive.String()}, true)
}

func (r *ReservationRepository) findOne(ctx context.Context, where squirrel.Eq, optional bool) (*reservation.Reservation, error) {
	q := psql.Select(reservationColumns...).From("reservations").Where(where)
	res, err := scanReservation(queryRow(ctx, r.db, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if optional {
				return nil, nil
			}
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) CountActiveBySpots(ctx context.Context, spotIDs []int64) (int, error) {
	if len(spotIDs) == 0 {
		return 0, nil
	}
	q := psql.Select("COUNT(*)").From("reservations").Where(squirrel.Eq{
		"spot_id": spotIDs,
		"status":  reservation.StatusActive.String(),
	})
	var n int
	if err := queryRow(ctx, r.db, q).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count active reservations", err)
	}
	return n, nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	q := psql.Update("reservations").SetMap(map[string]any{
		"status":      res.Status().String(),
		"parked_at":   pgconv.TimePtrToPgtype(res.ParkedAt()),
		"released_at": pgconv.TimePtrToPgtype(res.ReleasedAt()),
		"cost":        pgconv.DecimalPtrToNumeric(res.Cost()),
		"updated_at":  res.UpdatedAt(),
	}).Where(squirrel.Eq{"id": res.ID(), "status": reservation.StatusActive.String()})

	tag, err := exec(ctx, r.db, q)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("active reservation not found")
	}
	return nil
}

// ListStale returns active, never-parked reservations created at or before cutoff.
func (r *ReservationRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*reservation.Reservation, error) {
	q := psql.Select(reservationColumns...).From("reservations").
		Where(squirrel.Eq{"status": reservation.StatusActive.String(), "parked_at": nil}).
		Where(squirrel.LtOrEq{"created_at": cutoff}).
		OrderBy("id")
	return r.list(ctx, q)
}

// ListByUser returns newest first; limit <= 0 means no limit.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*reservation.Reservation, error) {
	q := psql.Select(reservationColumns...).From("reservations").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.list(ctx, q)
}

func (r *ReservationRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*reservation.Reservation, error) {
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	out, err := collect(rows, scanReservation)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan reservations", err)
	}
	return out, nil
}

func (r *ReservationRepository) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	q := psql.Select("COUNT(*)").From("reservations").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"created_at": since})
	var n int
	if err := queryRow(ctx, r.db, q).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count reservations", err)
	}
	return n, nil
}

func (r *ReservationRepository) LotActivity(ctx context.Context, from, to time.Time) ([]shared.LotActivity, error) {
	q := activity("lot_id", from, to)
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate lot activity", err)
	}
	out, err := collect(rows, func(row pgx.Row) (shared.LotActivity, error) {
		var (
			a       shared.LotActivity
			revenue pgtype.Numeric
			hours   float64
		)
		if err := row.Scan(&a.LotID, &a.Reservations, &a.Completed, &revenue, &hours); err != nil {
			return a, err
		}
		var err error
		a.Revenue, err = pgconv.DecimalFromNumeric(revenue)
		return a, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan lot activity", err)
	}
	if out == nil {
		out = []shared.LotActivity{}
	}
	return out, nil
}

func (r *ReservationRepository) UserActivity(ctx context.Context, from, to time.Time) ([]shared.UserActivity, error) {
	q := activity("user_id", from, to)
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate user activity", err)
	}
	out, err := collect(rows, func(row pgx.Row) (shared.UserActivity, error) {
		var (
			a     shared.UserActivity
			spent pgtype.Numeric
		)
		if err := row.Scan(&a.UserID, &a.Reservations, &a.Completed, &spent, &a.HoursParked); err != nil {
			return a, err
		}
		var err error
		a.Spent, err = pgconv.DecimalFromNumeric(spent)
		return a, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan user activity", err)
	}
	if out == nil {
		out = []shared.UserActivity{}
	}
	return out, nil
}

// activity groups reservations by key over [from, to): rows created in the
// window, rows released in it, their summed cost and parked hours.
func activity(key string, from, to time.Time) squirrel.SelectBuilder {
	return psql.Select(key).
		Column("COUNT(*) FILTER (WHERE "+createdIn+")", from, to).
		Column("COUNT(*) FILTER (WHERE "+releasedIn+")", from, to).
		Column("COALESCE(SUM(cost) FILTER (WHERE "+releasedIn+"), 0)", from, to).
		Column("COALESCE(SUM(EXTRACT(EPOCH FROM released_at - parked_at) / 3600) FILTER (WHERE "+releasedIn+" AND parked_at IS NOT NULL), 0)::float8", from, to).
		From("reservations").
		Where(squirrel.Or{
			squirrel.Expr(createdIn, from, to),
			squirrel.Expr(releasedIn, from, to),
		}).
		GroupBy(key).
		OrderBy(key)
}

func (r *ReservationRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := exec(ctx, r.db, psql.Delete("reservations").Where(squirrel.Eq{"user_id": userID}))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete reservations", err)
	}
	return tag.RowsAffected(), nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, spotID, lotID, userID int64
		status                    string
		parkedAt, releasedAt      pgtype.Timestamptz
		cost                      pgtype.Numeric
		createdAt, updatedAt      time.Time
	)
	if err := row.Scan(&id, &spotID, &lotID, &userID, &status, &parkedAt, &releasedAt, &cost, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	st := reservation.Status(status)
	if !st.IsValid() {
		return nil, reservation.ErrInvalidStatus
	}
	c, err := pgconv.DecimalPtrFromNumeric(cost)
	if err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		id, spotID, lotID, userID,
		st,
		pgconv.TimePtrFromPgtype(parkedAt),
		pgconv.TimePtrFromPgtype(releasedAt),
		c,
		createdAt.UTC(),
		updatedAt.UTC(),
	), nil
}
