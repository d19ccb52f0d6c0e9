package commands

import (
	"context"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

type CreateLotRequest struct {
	Name     string
	Price    decimal.Decimal
	Address  string
	Pin      string
	Capacity int
}

// UpdateLotRequest fields left nil are unchanged.
type UpdateLotRequest struct {
	Name     *string
	Price    *decimal.Decimal
	Address  *string
	Pin      *string
	Capacity *int
}

type CatalogCommands interface {
	CreateLot(ctx context.Context, caller shared.Caller, req CreateLotRequest) (int64, error)
	UpdateLot(ctx context.Context, caller shared.Caller, lotID int64, req UpdateLotRequest) error
	DeleteLot(ctx context.Context, caller shared.Caller, lotID int64) error
}

type catalogUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	events shared.EventPublisher
}

func NewCatalogUseCase(uow shared.UnitOfWork, clk clock.Clock, events shared.EventPublisher) CatalogCommands {
	return &catalogUseCaseImpl{uow: uow, clock: clk, events: events}
}

func (uc *catalogUseCaseImpl) CreateLot(ctx context.Context, caller shared.Caller, req CreateLotRequest) (int64, error) {
	if err := requireAdmin(caller); err != nil {
		return 0, err
	}

	now := uc.clock.Now()
	entity, err := lot.NewLot(req.Name, req.Price, req.Address, req.Pin, req.Capacity, now)
	if err != nil {
		return 0, err
	}

	var lotID int64
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, err := tx.Lots().Create(ctx, entity)
		if err != nil {
			return err
		}
		if err := tx.Spots().CreateOrdinals(ctx, id, lot.Ordinals(0, entity.Capacity()), now); err != nil {
			return err
		}
		lotID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	uc.events.Publish(ctx, event.New(event.CatalogChanged, now).WithLot(lotID))
	return lotID, nil
}

func (uc *catalogUseCaseImpl) UpdateLot(ctx context.Context, caller shared.Caller, lotID int64, req UpdateLotRequest) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	now := uc.clock.Now()
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Lots().FindByID(ctx, lotID)
		if err != nil {
			return err
		}

		change, err := entity.Apply(lot.Patch{
			Name:     req.Name,
			Price:    req.Price,
			Address:  req.Address,
			Pin:      req.Pin,
			Capacity: req.Capacity,
		}, now)
		if err != nil {
			return err
		}

		switch {
		case change.Grows():
			if err := tx.Spots().CreateOrdinals(ctx, lotID, lot.Ordinals(change.From, change.To), now); err != nil {
				return err
			}
		case change.Shrinks():
			if err := removeSpotsAbove(ctx, tx, lotID, change.To); err != nil {
				return err
			}
		}

		return tx.Lots().Update(ctx, entity)
	})
	if err != nil {
		return err
	}

	uc.events.Publish(ctx, event.New(event.CatalogChanged, now).WithLot(lotID))
	return nil
}

func (uc *catalogUseCaseImpl) DeleteLot(ctx context.Context, caller shared.Caller, lotID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Lots().FindByID(ctx, lotID); err != nil {
			return err
		}
		if err := removeSpotsAbove(ctx, tx, lotID, 0); err != nil {
			return err
		}
		return tx.Lots().Delete(ctx, lotID)
	})
	if err != nil {
		return err
	}

	uc.events.Publish(ctx, event.New(event.CatalogChanged, uc.clock.Now()).WithLot(lotID))
	return nil
}

// removeSpotsAbove deletes every spot with ordinal > keep, refusing with
// CONFLICT_LOT_BUSY if any of them is occupied or still has an active reservation.
func removeSpotsAbove(ctx context.Context, tx shared.Tx, lotID int64, keep int) error {
	spots, err := tx.Spots().List(ctx, lotID)
	if err != nil {
		return err
	}

	var removed []int64
	for _, s := range spots {
		if s.Ordinal <= keep {
			continue
		}
		if !s.IsAvailable() {
			return errs.Wrapf(errs.ErrLotBusy, "spot %d (ordinal %d) is occupied", s.ID, s.Ordinal)
		}
		removed = append(removed, s.ID)
	}
	if len(removed) == 0 {
		return nil
	}

	active, err := tx.Reservations().CountActiveBySpots(ctx, removed)
	if err != nil {
		return err
	}
	if active > 0 {
		return errs.Wrapf(errs.ErrLotBusy, "%d active reservations on removed spots", active)
	}

	n, err := tx.Spots().DeleteAvailableAbove(ctx, lotID, keep)
	if err != nil {
		return err
	}
	if n != int64(len(removed)) {
		return errs.Wrapf(errs.ErrLotBusy, "removed %d of %d spots", n, len(removed))
	}
	return nil
}
