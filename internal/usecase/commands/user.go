package commands

import (
	"context"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/domain/user"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"
)

type RegisterRequest struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type SetPreferencesRequest struct {
	ReminderEnabled bool
	ReminderTime    string
	Channel         string
}

// PasswordHasher is satisfied by the bcrypt helpers in pkg/password.
type PasswordHasher func(plain string) (string, error)

type UserCommands interface {
	Register(ctx context.Context, req RegisterRequest) (int64, error)
	SeedAdmin(ctx context.Context, req RegisterRequest) (bool, error)
	SetPreferences(ctx context.Context, caller shared.Caller, req SetPreferencesRequest) error
	DeleteUser(ctx context.Context, caller shared.Caller, userID int64) error
}

type userUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	hasher PasswordHasher
	events shared.EventPublisher
}

func NewUserUseCase(uow shared.UnitOfWork, clk clock.Clock, hasher PasswordHasher, events shared.EventPublisher) UserCommands {
	return &userUseCaseImpl{uow: uow, clock: clk, hasher: hasher, events: events}
}

func (uc *userUseCaseImpl) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	id, err := uc.create(ctx, req, false)
	if err != nil {
		return 0, err
	}
	uc.events.Publish(ctx, event.New(event.UserChanged, uc.clock.Now()).WithUser(id))
	return id, nil
}

// SeedAdmin creates the admin account unless one already exists.
func (uc *userUseCaseImpl) SeedAdmin(ctx context.Context, req RegisterRequest) (bool, error) {
	var exists bool
	err := uc.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		exists, err = tx.Users().ExistsAdmin(ctx)
		return err
	})
	if err != nil || exists {
		return false, err
	}

	if _, err := uc.create(ctx, req, true); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *userUseCaseImpl) create(ctx context.Context, req RegisterRequest, isAdmin bool) (int64, error) {
	name, err := user.NewName(req.Name)
	if err != nil {
		return 0, err
	}
	email, err := user.NewEmail(req.Email)
	if err != nil {
		return 0, err
	}
	phone, err := user.NewPhone(req.Phone)
	if err != nil {
		return 0, err
	}
	pw, err := user.NewPassword(req.Password)
	if err != nil {
		return 0, err
	}
	hash, err := uc.hasher(pw.Value())
	if err != nil {
		return 0, errs.Wrap(err, "hash password")
	}

	now := uc.clock.Now()
	entity := user.NewUser(name, email, phone, hash, isAdmin, now)

	var id int64
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created, err := tx.Users().Create(ctx, entity)
		if err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Wrapf(errs.ErrDuplicate, "user name %q is taken", name.Value())
			}
			return err
		}
		if !isAdmin {
			if err := tx.Preferences().Upsert(ctx, user.DefaultPreferences(created, now)); err != nil {
				return err
			}
		}
		id = created
		return nil
	})
	return id, err
}

func (uc *userUseCaseImpl) SetPreferences(ctx context.Context, caller shared.Caller, req SetPreferencesRequest) error {
	if caller.IsAdmin {
		return errs.Wrap(errs.ErrPermissionDenied, "admins have no preferences")
	}
	at, err := user.NewReminderTime(req.ReminderTime)
	if err != nil {
		return err
	}
	channel, err := user.NewChannel(req.Channel)
	if err != nil {
		return err
	}

	now := uc.clock.Now()
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		u, err := tx.Users().FindByID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			return errs.Wrap(errs.ErrPermissionDenied, "admins have no preferences")
		}
		return tx.Preferences().Upsert(ctx, user.NewPreferences(u.ID(), req.ReminderEnabled, at, channel, now))
	})
	if err != nil {
		return err
	}

	uc.events.Publish(ctx, event.New(event.UserChanged, now).WithUser(caller.UserID))
	return nil
}

// DeleteUser cascades to the user's reservations and preferences, freeing
// the spot of an active reservation first.
func (uc *userUseCaseImpl) DeleteUser(ctx context.Context, caller shared.Caller, userID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	now := uc.clock.Now()
	var freedLot int64
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		freedLot = 0

		u, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			return errs.Wrap(errs.ErrPermissionDenied, "admin accounts cannot be deleted")
		}

		active, err := tx.Reservations().FindActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			if _, err := tx.Spots().SetStatus(ctx, active.SpotID(), lot.SpotOccupied, lot.SpotAvailable, now); err != nil {
				return err
			}
			freedLot = active.LotID()
		}

		if _, err := tx.Reservations().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Preferences().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	box := &outbox{}
	box.add(event.New(event.UserChanged, now).WithUser(userID))
	if freedLot != 0 {
		box.add(event.New(event.CatalogChanged, now).WithLot(freedLot))
	}
	box.flush(ctx, uc.events)
	return nil
}
