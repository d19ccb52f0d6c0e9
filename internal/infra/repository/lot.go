package repository

import (
	"context"
	"errors"
	"time"

	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var lotColumns = []string{"id", "name", "price", "address", "pin", "capacity", "created_at", "updated_at"}

type LotRepository struct {
	db DBTX
}

func NewLotRepository(db DBTX) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) Create(ctx context.Context, l *lot.Lot) (int64, error) {
	q := psql.Insert("lots").
		Columns("name", "price", "address", "pin", "capacity", "created_at", "updated_at").
		Values(l.Name(), pgconv.DecimalToNumeric(l.Price()), l.Address(), l.Pin(), l.Capacity(), l.CreatedAt(), l.UpdatedAt()).
		Suffix("RETURNING id")

	var id int64
	if err := queryRow(ctx, r.db, q).Scan(&id); err != nil {
		return 0, infra.WrapRepoErr("failed to create lot", err)
	}
	return id, nil
}

func (r *LotRepository) FindByID(ctx context.Context, id int64) (*lot.Lot, error) {
	q := psql.Select(lotColumns...).From("lots").Where(squirrel.Eq{"id": id})
	l, err := scanLot(queryRow(ctx, r.db, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("lot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find lot", err)
	}
	return l, nil
}

func (r *LotRepository) Update(ctx context.Context, l *lot.Lot) error {
	q := psql.Update("lots").SetMap(map[string]any{
		"name":       l.Name(),
		"price":      pgconv.DecimalToNumeric(l.Price()),
		"address":    l.Address(),
		"pin":        l.Pin(),
		"capacity":   l.Capacity(),
		"updated_at": l.UpdatedAt(),
	}).Where(squirrel.Eq{"id": l.ID()})

	tag, err := exec(ctx, r.db, q)
	if err != nil {
		return infra.WrapRepoErr("failed to update lot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("lot not found")
	}
	return nil
}

// Delete fails with FOREIGN_KEY_VIOLATED while the lot still has spots.
func (r *LotRepository) Delete(ctx context.Context, id int64) error {
	tag, err := exec(ctx, r.db, psql.Delete("lots").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return infra.WrapRepoErr("failed to delete lot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("lot not found")
	}
	return nil
}

func (r *LotRepository) List(ctx context.Context) ([]*lot.Lot, error) {
	rows, err := query(ctx, r.db, psql.Select(lotColumns...).From("lots").OrderBy("id"))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list lots", err)
	}
	lots, err := collect(rows, scanLot)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan lots", err)
	}
	return lots, nil
}

func scanLot(row pgx.Row) (*lot.Lot, error) {
	var (
		id                   int64
		name, address, pin   string
		price                pgtype.Numeric
		capacity             int
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &price, &address, &pin, &capacity, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p, err := pgconv.DecimalFromNumeric(price)
	if err != nil {
		return nil, err
	}
	return lot.ReconstructLot(id, name, p, address, pin, capacity, createdAt.UTC(), updatedAt.UTC()), nil
}
