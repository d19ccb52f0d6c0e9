//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/infra/memstore"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/password"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/shared"
	"parking-lot-manager/tests/common/eventtest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	t0    = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	admin = shared.Caller{UserID: 1, IsAdmin: true}
)

type fixture struct {
	store        *memstore.Store
	uow          shared.UnitOfWork
	clock        *clock.MockClock
	events       *eventtest.Recorder
	catalog      commands.CatalogCommands
	reservations commands.ReservationCommands
	users        commands.UserCommands
}

func fastHash(plain string) (string, error) {
	return password.HashPasswordWithCost(plain, bcrypt.MinCost)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	uow := memstore.NewUoW(store)
	clk := clock.NewMockClock(t0)
	rec := eventtest.NewRecorder()
	cfg := config.NewTestConfig()

	f := &fixture{
		store:   store,
		uow:     uow,
		clock:   clk,
		events:  rec,
		catalog: commands.NewCatalogUseCase(uow, clk, rec),
		reservations: commands.NewReservationUseCase(
			uow, clk,
			reservation.NewDefaultPriceCalculator(cfg.Parking.MinimumBillingUnit),
			rec, cfg.Parking,
		),
		users: commands.NewUserUseCase(uow, clk, fastHash, rec),
	}
	return f
}

func (f *fixture) createLot(t *testing.T, price int64, capacity int) int64 {
	t.Helper()
	id, err := f.catalog.CreateLot(context.Background(), admin, commands.CreateLotRequest{
		Name:     "A",
		Price:    decimal.NewFromInt(price),
		Address:  "x",
		Pin:      "1",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) register(t *testing.T, name string) shared.Caller {
	t.Helper()
	id, err := f.users.Register(context.Background(), commands.RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return shared.Caller{UserID: id}
}

func (f *fixture) spots(t *testing.T, lotID int64) []lot.Spot {
	t.Helper()
	var spots []lot.Spot
	err := f.uow.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		spots, err = tx.Spots().List(ctx, lotID)
		return err
	})
	require.NoError(t, err)
	return spots
}

func (f *fixture) reservation(t *testing.T, id int64) *reservation.Reservation {
	t.Helper()
	var res *reservation.Reservation
	err := f.uow.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		res, err = tx.Reservations().FindByID(ctx, id)
		return err
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) occupied(t *testing.T, lotID int64) []int {
	t.Helper()
	var out []int
	for _, s := range f.spots(t, lotID) {
		if !s.IsAvailable() {
			out = append(out, s.Ordinal)
		}
	}
	return out
}

// assertConsistent checks that every occupied spot carries exactly one active
// reservation and that no user holds more than one.
func (f *fixture) assertConsistent(t *testing.T, lotID int64) {
	t.Helper()
	err := f.uow.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		spots, err := tx.Spots().List(ctx, lotID)
		if err != nil {
			return err
		}
		users := map[int64]bool{}
		for _, s := range spots {
			res, err := tx.Reservations().FindActiveBySpot(ctx, s.ID)
			if err != nil {
				return err
			}
			if s.IsAvailable() {
				require.Nil(t, res, "available spot %d has an active reservation", s.Ordinal)
				continue
			}
			require.NotNil(t, res, "occupied spot %d has no active reservation", s.Ordinal)
			require.False(t, users[res.UserID()], "user %d holds two active reservations", res.UserID())
			users[res.UserID()] = true
		}
		return nil
	})
	require.NoError(t, err)
}
