package queries

import (
	"context"

	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"
)

type JobQueries interface {
	GetJob(ctx context.Context, caller shared.Caller, id int64) (*JobView, error)
	ListJobs(ctx context.Context, caller shared.Caller, limit int) ([]JobView, error)
}

type jobQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewJobQueries(uow shared.UnitOfWork) JobQueries {
	return &jobQueriesImpl{uow: uow}
}

func (q *jobQueriesImpl) GetJob(ctx context.Context, caller shared.Caller, id int64) (*JobView, error) {
	if !caller.IsAdmin {
		return nil, errs.Wrap(errs.ErrPermissionDenied, "admin only")
	}
	var view JobView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		j, err := tx.Jobs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		view = toJobView(j)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (q *jobQueriesImpl) ListJobs(ctx context.Context, caller shared.Caller, limit int) ([]JobView, error) {
	if !caller.IsAdmin {
		return nil, errs.Wrap(errs.ErrPermissionDenied, "admin only")
	}
	var views []JobView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		rows, err := tx.Jobs().List(ctx, clampLimit(limit))
		if err != nil {
			return err
		}
		views = make([]JobView, 0, len(rows))
		for _, j := range rows {
			views = append(views, toJobView(j))
		}
		return nil
	})
	return views, err
}
