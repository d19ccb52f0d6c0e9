//go:build unit

package commands_test

import (
	"context"
	"testing"

	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordinals(f *fixture, t *testing.T, lotID int64) []int {
	var out []int
	for _, s := range f.spots(t, lotID) {
		out = append(out, s.Ordinal)
	}
	return out
}

func TestCatalog_CreateLot(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 容量分の区画が作成される", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 3)
		assert.Equal(t, []int{1, 2, 3}, ordinals(f, t, lotID))
		assert.Empty(t, f.occupied(t, lotID))
	})

	t.Run("異常系", func(t *testing.T) {
		cases := []struct {
			name   string
			caller shared.Caller
			req    commands.CreateLotRequest
			want   errs.Kind
		}{
			{
				name:   "一般ユーザー",
				caller: shared.Caller{UserID: 5},
				req:    commands.CreateLotRequest{Name: "A", Price: decimal.NewFromInt(10), Capacity: 1},
				want:   errs.KindPermissionDenied,
			},
			{
				name:   "名前が空",
				caller: admin,
				req:    commands.CreateLotRequest{Name: "", Price: decimal.NewFromInt(10), Capacity: 1},
				want:   errs.KindInvalidArgument,
			},
			{
				name:   "価格が0",
				caller: admin,
				req:    commands.CreateLotRequest{Name: "A", Price: decimal.Zero, Capacity: 1},
				want:   errs.KindInvalidArgument,
			},
			{
				name:   "容量が0",
				caller: admin,
				req:    commands.CreateLotRequest{Name: "A", Price: decimal.NewFromInt(10), Capacity: 0},
				want:   errs.KindInvalidArgument,
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				_, err := f.catalog.CreateLot(ctx, tc.caller, tc.req)
				assert.Equal(t, tc.want, errs.KindOf(err))
				assert.Empty(t, f.events.Events())
			})
		}
	})
}

func TestCatalog_UpdateLotCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 容量拡大で区画が追加される", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 2)
		capacity := 4

		require.NoError(t, f.catalog.UpdateLot(ctx, admin, lotID, commands.UpdateLotRequest{Capacity: &capacity}))
		assert.Equal(t, []int{1, 2, 3, 4}, ordinals(f, t, lotID))
	})

	t.Run("正常系: 価格のみ変更", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 2)
		price := decimal.RequireFromString("12.5")

		require.NoError(t, f.catalog.UpdateLot(ctx, admin, lotID, commands.UpdateLotRequest{Price: &price}))
		assert.Equal(t, []int{1, 2}, ordinals(f, t, lotID))
	})

	t.Run("異常系→正常系: 使用中の区画があると縮小できない", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 2)
		u1 := f.register(t, "driver01")
		u2 := f.register(t, "driver02")

		r1, err := f.reservations.Reserve(ctx, u1, lotID)
		require.NoError(t, err)
		r2, err := f.reservations.Reserve(ctx, u2, lotID)
		require.NoError(t, err)
		require.NoError(t, f.reservations.Park(ctx, u1, r1))
		require.NoError(t, f.reservations.Park(ctx, u2, r2))

		capacity := 1
		err = f.catalog.UpdateLot(ctx, admin, lotID, commands.UpdateLotRequest{Capacity: &capacity})
		assert.Equal(t, errs.KindLotBusy, errs.KindOf(err))
		assert.Equal(t, []int{1, 2}, ordinals(f, t, lotID))

		// Spot 2 belongs to the second reservation.
		_, err = f.reservations.Release(ctx, u2, r2)
		require.NoError(t, err)

		require.NoError(t, f.catalog.UpdateLot(ctx, admin, lotID, commands.UpdateLotRequest{Capacity: &capacity}))
		assert.Equal(t, []int{1}, ordinals(f, t, lotID))
		f.assertConsistent(t, lotID)
	})

	t.Run("異常系: 存在しない駐車場", func(t *testing.T) {
		f := newFixture(t)
		capacity := 1
		err := f.catalog.UpdateLot(ctx, admin, 7, commands.UpdateLotRequest{Capacity: &capacity})
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}

func TestCatalog_DeleteLot(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 予約のない駐車場は全て削除される", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 3)

		require.NoError(t, f.catalog.DeleteLot(ctx, admin, lotID))

		err := f.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			lots, err := tx.Lots().List(ctx)
			require.NoError(t, err)
			assert.Empty(t, lots)
			spots, err := tx.Spots().List(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, spots)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("異常系: 予約中の区画がある", func(t *testing.T) {
		f := newFixture(t)
		lotID := f.createLot(t, 10, 3)
		u1 := f.register(t, "driver01")
		_, err := f.reservations.Reserve(ctx, u1, lotID)
		require.NoError(t, err)

		err = f.catalog.DeleteLot(ctx, admin, lotID)
		assert.Equal(t, errs.KindLotBusy, errs.KindOf(err))
		assert.Len(t, f.spots(t, lotID), 3)
	})
}
