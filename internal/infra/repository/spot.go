package repository

import (
	"context"
	"errors"
	"time"

	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/infra"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var spotColumns = []string{"id", "lot_id", "ordinal", "status", "updated_at"}

type SpotRepository struct {
	db DBTX
}

func NewSpotRepository(db DBTX) *SpotRepository {
	return &SpotRepository{db: db}
}

func (r *SpotRepository) CreateOrdinals(ctx context.Context, lotID int64, ordinals []int, now time.Time) error {
	if len(ordinals) == 0 {
		return nil
	}
	q := psql.Insert("spots").Columns("lot_id", "ordinal", "status", "updated_at")
	for _, ord := range ordinals {
		q = q.Values(lotID, ord, lot.SpotAvailable.String(), now)
	}
	if _, err := exec(ctx, r.db, q); err != nil {
		return infra.WrapRepoErr("failed to create spots", err)
	}
	return nil
}

func (r *SpotRepository) FindByID(ctx context.Context, id int64) (*lot.Spot, error) {
	q := psql.Select(spotColumns...).From("spots").Where(squirrel.Eq{"id": id})
	s, err := scanSpot(queryRow(ctx, r.db, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("spot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find spot", err)
	}
	return &s, nil
}

func (r *SpotRepository) List(ctx context.Context, lotID int64) ([]lot.Spot, error) {
	q := psql.Select(spotColumns...).From("spots").OrderBy("lot_id", "ordinal")
	if lotID != 0 {
		q = q.Where(squirrel.Eq{"lot_id": lotID})
	}
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list spots", err)
	}
	spots, err := collect(rows, scanSpot)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan spots", err)
	}
	if spots == nil {
		spots = []lot.Spot{}
	}
	return spots, nil
}

// ClaimFirstAvailable locks the lowest free ordinal, skipping rows another
// transaction is already claiming, and flips it only if it is still available.
func (r *SpotRepository) ClaimFirstAvailable(ctx context.Context, lotID int64, now time.Time) (*lot.Spot, error) {
	candidate := squirrel.Select("id").From("spots").
		Where(squirrel.Eq{"lot_id": lotID, "status": lot.SpotAvailable.String()}).
		OrderBy("ordinal").
		Limit(1).
		Suffix("FOR UPDATE SKIP LOCKED")

	q := psql.Update("spots").
		Set("status", lot.SpotOccupied.String()).
		Set("updated_at", now).
		Where(squirrel.Expr("id = (?)", candidate)).
		Where(squirrel.Eq{"status": lot.SpotAvailable.String()}).
		Suffix("RETURNING id, lot_id, ordinal, status, updated_at")

	s, err := scanSpot(queryRow(ctx, r.db, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to claim spot", err)
	}
	return &s, nil
}

func (r *SpotRepository) SetStatus(ctx context.Context, spotID int64, from, to lot.SpotStatus, now time.Time) (bool, error) {
	q := psql.Update("spots").
		Set("status", to.String()).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": spotID, "status": from.String()})

	tag, err := exec(ctx, r.db, q)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update spot status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SpotRepository) DeleteAvailableAbove(ctx context.Context, lotID int64, capacity int) (int64, error) {
	q := psql.Delete("spots").Where(squirrel.And{
		squirrel.Eq{"lot_id": lotID, "status": lot.SpotAvailable.String()},
		squirrel.Gt{"ordinal": capacity},
	})
	tag, err := exec(ctx, r.db, q)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete spots", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SpotRepository) Occupancy(ctx context.Context) ([]lot.Occupancy, error) {
	q := psql.Select(
		"l.id",
		"l.capacity",
		"COUNT(s.id) FILTER (WHERE s.status = 'occupied')",
		"COUNT(s.id) FILTER (WHERE s.status = 'available')",
	).
		From("lots l").
		LeftJoin("spots s ON s.lot_id = l.id").
		GroupBy("l.id", "l.capacity").
		OrderBy("l.id")

	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count occupancy", err)
	}
	out, err := collect(rows, func(row pgx.Row) (lot.Occupancy, error) {
		var o lot.Occupancy
		err := row.Scan(&o.LotID, &o.Capacity, &o.Occupied, &o.Available)
		return o, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan occupancy", err)
	}
	return out, nil
}

func scanSpot(row pgx.Row) (lot.Spot, error) {
	var (
		s      lot.Spot
		status string
	)
	if err := row.Scan(&s.ID, &s.LotID, &s.Ordinal, &status, &s.UpdatedAt); err != nil {
		return lot.Spot{}, err
	}
	s.Status = lot.SpotStatus(status)
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
