package queries

import (
	"context"
	"time"

	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

const analyticsPrefix = "analytics"

type AnalyticsQueries interface {
	Summary(ctx context.Context, caller shared.Caller) (*AnalyticsSummary, error)
}

type analyticsQueriesImpl struct {
	uow   shared.UnitOfWork
	cache shared.CacheIndex
	clock clock.Clock
	ttl   time.Duration
}

func NewAnalyticsQueries(uow shared.UnitOfWork, cache shared.CacheIndex, clk clock.Clock, ttl time.Duration) AnalyticsQueries {
	return &analyticsQueriesImpl{uow: uow, cache: cache, clock: clk, ttl: ttl}
}

func (q *analyticsQueriesImpl) Summary(ctx context.Context, caller shared.Caller) (*AnalyticsSummary, error) {
	if !caller.IsAdmin {
		return nil, errs.Wrap(errs.ErrPermissionDenied, "admin only")
	}

	key := shared.CacheKey{Prefix: analyticsPrefix, Function: "summary"}
	summary, err := shared.ReadThrough(ctx, q.cache, key, q.ttl, q.loadSummary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (q *analyticsQueriesImpl) loadSummary(ctx context.Context) (AnalyticsSummary, error) {
	now := q.clock.Now()
	summary := AnalyticsSummary{GeneratedAt: now, TotalRevenue: decimal.Zero}

	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		lots, err := tx.Lots().List(ctx)
		if err != nil {
			return err
		}
		occ, err := tx.Spots().Occupancy(ctx)
		if err != nil {
			return err
		}
		activity, err := tx.Reservations().LotActivity(ctx, time.Time{}, now.Add(time.Nanosecond))
		if err != nil {
			return err
		}

		byLot := occupancyByLot(occ)
		act := make(map[int64]shared.LotActivity, len(activity))
		for _, a := range activity {
			act[a.LotID] = a
		}

		summary.Lots = make([]LotSummary, 0, len(lots))
		for _, l := range lots {
			o, a := byLot[l.ID()], act[l.ID()]
			revenue := decimal.Zero.Add(a.Revenue)
			summary.Lots = append(summary.Lots, LotSummary{
				LotID:     l.ID(),
				Name:      l.Name(),
				Capacity:  l.Capacity(),
				Occupied:  o.Occupied,
				Available: o.Available,
				Completed: a.Completed,
				Revenue:   revenue,
			})
			summary.TotalCapacity += l.Capacity()
			summary.TotalOccupied += o.Occupied
			summary.TotalCompleted += a.Completed
			summary.TotalRevenue = summary.TotalRevenue.Add(revenue)
		}
		return nil
	})
	return summary, err
}
