package queries

import (
	"context"

	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/usecase/shared"
)

type UserQueries interface {
	GetCurrentUser(ctx context.Context, caller shared.Caller) (*UserView, error)
}

type userQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewUserQueries(uow shared.UnitOfWork) UserQueries {
	return &userQueriesImpl{uow: uow}
}

func (q *userQueriesImpl) GetCurrentUser(ctx context.Context, caller shared.Caller) (*UserView, error) {
	var view UserView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		u, err := tx.Users().FindByID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		view = UserView{
			ID:        u.ID(),
			Name:      u.Name().Value(),
			Email:     u.Email().Value(),
			Phone:     u.Phone().Value(),
			IsAdmin:   u.IsAdmin(),
			CreatedAt: u.CreatedAt(),
		}
		if u.IsAdmin() {
			return nil
		}

		prefs, err := tx.Preferences().FindByUser(ctx, u.ID())
		if err != nil {
			// Users created before preferences existed have none yet.
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		view.ReminderEnabled = prefs.ReminderEnabled()
		view.ReminderTime = prefs.ReminderTime().String()
		view.Channel = prefs.Channel().String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}
