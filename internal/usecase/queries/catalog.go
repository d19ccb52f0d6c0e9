package queries

import (
	"context"
	"time"

	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/usecase/shared"
)

const catalogPrefix = "catalog:lots"

type CatalogQueries interface {
	ListLots(ctx context.Context) ([]LotView, error)
	GetLot(ctx context.Context, lotID int64) (*LotView, error)
	// ListSpots lists every spot when lotID is 0.
	ListSpots(ctx context.Context, lotID int64) ([]SpotView, error)
}

type catalogQueriesImpl struct {
	uow   shared.UnitOfWork
	cache shared.CacheIndex
	ttl   time.Duration
}

func NewCatalogQueries(uow shared.UnitOfWork, cache shared.CacheIndex, ttl time.Duration) CatalogQueries {
	return &catalogQueriesImpl{uow: uow, cache: cache, ttl: ttl}
}

func (q *catalogQueriesImpl) ListLots(ctx context.Context) ([]LotView, error) {
	key := shared.CacheKey{Prefix: catalogPrefix, Function: "list"}
	return shared.ReadThrough(ctx, q.cache, key, q.ttl, func(ctx context.Context) ([]LotView, error) {
		var views []LotView
		err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			lots, err := tx.Lots().List(ctx)
			if err != nil {
				return err
			}
			occ, err := tx.Spots().Occupancy(ctx)
			if err != nil {
				return err
			}
			byLot := occupancyByLot(occ)
			views = make([]LotView, 0, len(lots))
			for _, l := range lots {
				views = append(views, toLotView(l, byLot[l.ID()]))
			}
			return nil
		})
		return views, err
	})
}

func (q *catalogQueriesImpl) GetLot(ctx context.Context, lotID int64) (*LotView, error) {
	key := shared.CacheKey{Prefix: catalogPrefix, Function: "get", Args: lotID}
	view, err := shared.ReadThrough(ctx, q.cache, key, q.ttl, func(ctx context.Context) (LotView, error) {
		var view LotView
		err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			l, err := tx.Lots().FindByID(ctx, lotID)
			if err != nil {
				return err
			}
			spots, err := tx.Spots().List(ctx, lotID)
			if err != nil {
				return err
			}
			occ := lot.Occupancy{LotID: lotID, Capacity: l.Capacity()}
			for _, s := range spots {
				if s.IsAvailable() {
					occ.Available++
				} else {
					occ.Occupied++
				}
			}
			view = toLotView(l, occ)
			return nil
		})
		return view, err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (q *catalogQueriesImpl) ListSpots(ctx context.Context, lotID int64) ([]SpotView, error) {
	key := shared.CacheKey{Prefix: catalogPrefix, Function: "spots", Args: lotID}
	return shared.ReadThrough(ctx, q.cache, key, q.ttl, func(ctx context.Context) ([]SpotView, error) {
		var views []SpotView
		err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			if lotID != 0 {
				if _, err := tx.Lots().FindByID(ctx, lotID); err != nil {
					return err
				}
			}
			spots, err := tx.Spots().List(ctx, lotID)
			if err != nil {
				return err
			}
			views = make([]SpotView, 0, len(spots))
			for _, s := range spots {
				views = append(views, toSpotView(s))
			}
			return nil
		})
		return views, err
	})
}
