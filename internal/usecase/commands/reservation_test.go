//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservation_ReserveParkRelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 10, 3)
	u1 := f.register(t, "driver01")

	require.Equal(t, int64(1), lotID)
	require.Empty(t, f.occupied(t, lotID))

	resID, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resID)
	assert.Equal(t, []int{1}, f.occupied(t, lotID))

	require.NoError(t, f.reservations.Park(ctx, u1, resID))

	f.clock.Add(30 * time.Minute)
	got, err := f.reservations.Release(ctx, u1, resID)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(got.Cost), "cost = %s", got.Cost)
	assert.Equal(t, 1.0, got.DurationHours)
	assert.Equal(t, t0.Add(30*time.Minute), got.ReleasedAt)
	assert.Empty(t, f.occupied(t, lotID))

	res := f.reservation(t, resID)
	assert.Equal(t, reservation.StatusCompleted, res.Status())
	require.NotNil(t, res.Cost())
	assert.Equal(t, "10", res.Cost().String())

	assert.Equal(t, []event.Type{
		event.CatalogChanged,
		event.UserChanged,
		event.ReservationCreated,
		event.ReservationParked,
		event.ReservationReleased,
	}, f.events.Types())
	f.assertConsistent(t, lotID)
}

func TestReservation_ReleaseFractionalHours(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 5, 1)
	u1 := f.register(t, "driver01")

	resID, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)
	require.NoError(t, f.reservations.Park(ctx, u1, resID))

	f.clock.Add(2*time.Hour + 15*time.Minute)
	got, err := f.reservations.Release(ctx, u1, resID)
	require.NoError(t, err)
	assert.Equal(t, 2.25, got.DurationHours)
	assert.Equal(t, "11.25", got.Cost.StringFixed(2))
}

func TestReservation_LastSpotRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 10, 3)

	// Occupy spots 1 and 2 so only spot 3 is left.
	for _, name := range []string{"holder01", "holder02"} {
		_, err := f.reservations.Reserve(ctx, f.register(t, name), lotID)
		require.NoError(t, err)
	}
	u1 := f.register(t, "driver01")
	u2 := f.register(t, "driver02")

	var (
		wg   sync.WaitGroup
		errc = make(chan error, 2)
	)
	for _, c := range []shared.Caller{u1, u2} {
		wg.Add(1)
		go func(c shared.Caller) {
			defer wg.Done()
			_, err := f.reservations.Reserve(ctx, c, lotID)
			errc <- err
		}(c)
	}
	wg.Wait()
	close(errc)

	var ok, full int
	for err := range errc {
		switch {
		case err == nil:
			ok++
		case errs.IsKind(err, errs.KindNoSpotAvailable):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, full)
	assert.Equal(t, []int{1, 2, 3}, f.occupied(t, lotID))
	f.assertConsistent(t, lotID)
}

func TestReservation_ConcurrentReserveGrantsMinNK(t *testing.T) {
	cases := []struct {
		users    int
		capacity int
	}{
		{users: 8, capacity: 5},
		{users: 3, capacity: 5},
		{users: 5, capacity: 5},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("N=%d,K=%d", tc.users, tc.capacity), func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			lotID := f.createLot(t, 10, tc.capacity)

			callers := make([]shared.Caller, tc.users)
			for i := range callers {
				callers[i] = f.register(t, fmt.Sprintf("driver%02d", i))
			}

			var (
				mu      sync.Mutex
				granted int
				wg      sync.WaitGroup
			)
			for _, c := range callers {
				wg.Add(1)
				go func(c shared.Caller) {
					defer wg.Done()
					_, err := f.reservations.Reserve(ctx, c, lotID)
					if err == nil {
						mu.Lock()
						granted++
						mu.Unlock()
						return
					}
					assert.True(t, errs.IsKind(err, errs.KindNoSpotAvailable), "unexpected error: %v", err)
				}(c)
			}
			wg.Wait()

			assert.Equal(t, min(tc.users, tc.capacity), granted)
			assert.Len(t, f.occupied(t, lotID), granted)
			f.assertConsistent(t, lotID)
		})
	}
}

func TestReservation_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("異常系: 2回目の予約はCONFLICT_USER_HAS_ACTIVE", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 3)
		u1 := f.register(t, "driver01")

		_, err := f.reservations.Reserve(ctx, u1, lotID)
		require.NoError(t, err)
		_, err = f.reservations.Reserve(ctx, u1, lotID)
		assert.Equal(t, errs.KindUserHasActive, errs.KindOf(err))
		assert.Equal(t, []int{1}, f.occupied(t, lotID))
	})

	t.Run("異常系: 管理者は予約できない", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 1)

		_, err := f.reservations.Reserve(ctx, admin, lotID)
		assert.Equal(t, errs.KindPermissionDenied, errs.KindOf(err))
	})

	t.Run("異常系: 存在しない駐車場", func(t *testing.T) {
		f := newFixture(t)
		u1 := f.register(t, "driver01")

		_, err := f.reservations.Reserve(ctx, u1, 99)
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})

	t.Run("正常系: 解放直後に同じ駐車場を再予約できる", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 1)
		u1 := f.register(t, "driver01")

		first, err := f.reservations.Reserve(ctx, u1, lotID)
		require.NoError(t, err)
		require.NoError(t, f.reservations.Park(ctx, u1, first))
		_, err = f.reservations.Release(ctx, u1, first)
		require.NoError(t, err)

		second, err := f.reservations.Reserve(ctx, u1, lotID)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestReservation_Park(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 10, 2)
	u1 := f.register(t, "driver01")
	u2 := f.register(t, "driver02")

	resID, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)

	err = f.reservations.Park(ctx, u2, resID)
	assert.Equal(t, errs.KindPermissionDenied, errs.KindOf(err))

	require.NoError(t, f.reservations.Park(ctx, u1, resID))
	err = f.reservations.Park(ctx, u1, resID)
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))

	err = f.reservations.Park(ctx, u1, 99)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestReservation_ReleaseUnparked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 10, 1)
	u1 := f.register(t, "driver01")

	resID, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)

	_, err = f.reservations.Release(ctx, u1, resID)
	assert.Equal(t, errs.KindNotParked, errs.KindOf(err))

	res := f.reservation(t, resID)
	assert.Equal(t, reservation.StatusActive, res.Status())
	assert.Equal(t, []int{1}, f.occupied(t, lotID))
}

func TestReservation_ReleaseTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 10, 1)
	u1 := f.register(t, "driver01")

	resID, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)
	require.NoError(t, f.reservations.Park(ctx, u1, resID))
	_, err = f.reservations.Release(ctx, u1, resID)
	require.NoError(t, err)

	_, err = f.reservations.Release(ctx, u1, resID)
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestReservation_ExpireStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 10, 2)
	u1 := f.register(t, "driver01")
	u2 := f.register(t, "driver02")

	stale, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)
	parked, err := f.reservations.Reserve(ctx, u2, lotID)
	require.NoError(t, err)
	require.NoError(t, f.reservations.Park(ctx, u2, parked))

	f.clock.Add(24*time.Hour + time.Second)
	f.events.Reset()

	got, err := f.reservations.ExpireStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []int64{stale}, got.Expired)
	assert.Equal(t, reservation.StatusExpired, f.reservation(t, stale).Status())
	assert.Equal(t, reservation.StatusActive, f.reservation(t, parked).Status())
	assert.Equal(t, []int{2}, f.occupied(t, lotID))
	assert.Len(t, f.events.OfType(event.ReservationExpired), 1)

	again, err := f.reservations.ExpireStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, again.Expired)
	assert.Len(t, f.events.OfType(event.ReservationExpired), 1)
	f.assertConsistent(t, lotID)
}

func TestReservation_ExpireStaleBeforeThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.createLot(t, 10, 1)
	u1 := f.register(t, "driver01")

	resID, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)

	f.clock.Add(24*time.Hour - time.Second)
	got, err := f.reservations.ExpireStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, got.Expired)
	assert.Equal(t, reservation.StatusActive, f.reservation(t, resID).Status())
}

func TestReservation_FreeSpot(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 駐車中の予約を強制解放し料金は免除", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 2)
		u1 := f.register(t, "driver01")

		resID, err := f.reservations.Reserve(ctx, u1, lotID)
		require.NoError(t, err)
		require.NoError(t, f.reservations.Park(ctx, u1, resID))
		f.clock.Add(3 * time.Hour)

		spotID := f.reservation(t, resID).SpotID()
		got, err := f.reservations.FreeSpot(ctx, admin, spotID)
		require.NoError(t, err)
		assert.Equal(t, resID, got.ReservationID)
		assert.True(t, got.Cost.IsZero())

		res := f.reservation(t, resID)
		assert.Equal(t, reservation.StatusCompleted, res.Status())
		assert.Empty(t, f.occupied(t, lotID))
		assert.Len(t, f.events.OfType(event.ReservationForceReleased), 1)
	})

	t.Run("正常系: 空き区画の解放は何もしない", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 1)
		spotID := f.spots(t, lotID)[0].ID

		got, err := f.reservations.FreeSpot(ctx, admin, spotID)
		require.NoError(t, err)
		assert.Zero(t, got.ReservationID)
		assert.Empty(t, f.events.OfType(event.ReservationForceReleased))
	})

	t.Run("異常系: 一般ユーザーは強制解放できない", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 1)
		u1 := f.register(t, "driver01")

		_, err := f.reservations.FreeSpot(ctx, u1, f.spots(t, lotID)[0].ID)
		assert.Equal(t, errs.KindPermissionDenied, errs.KindOf(err))
	})

	t.Run("異常系: 存在しない区画", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reservations.FreeSpot(ctx, admin, 42)
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}
