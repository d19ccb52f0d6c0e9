//go:build unit

package lot_test

import (
	"testing"
	"time"

	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestNewLot(t *testing.T) {
	tests := []struct {
		name     string
		lotName  string
		price    decimal.Decimal
		capacity int
		errIs    error
	}{
		{name: "valid", lotName: "A", price: decimal.NewFromInt(10), capacity: 3},
		{name: "blank name", lotName: "  ", price: decimal.NewFromInt(10), capacity: 3, errIs: lot.ErrEmptyLotName},
		{name: "zero price", lotName: "A", price: decimal.Zero, capacity: 3, errIs: lot.ErrNonPositivePrice},
		{name: "negative price", lotName: "A", price: decimal.NewFromInt(-1), capacity: 3, errIs: lot.ErrNonPositivePrice},
		{name: "zero capacity", lotName: "A", price: decimal.NewFromInt(10), capacity: 0, errIs: lot.ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := lot.NewLot(tt.lotName, tt.price, "x", "1", tt.capacity, now)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
				assert.Nil(t, l)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.capacity, l.Capacity())
			assert.True(t, tt.price.Equal(l.Price()))
		})
	}
}

func TestLotApply(t *testing.T) {
	newLot := func(t *testing.T) *lot.Lot {
		t.Helper()
		l, err := lot.NewLot("A", decimal.NewFromInt(10), "x", "1", 2, now)
		require.NoError(t, err)
		return l
	}

	t.Run("shrink reports change", func(t *testing.T) {
		l := newLot(t)
		one := 1
		change, err := l.Apply(lot.Patch{Capacity: &one}, now.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, change.Shrinks())
		assert.Equal(t, 1, l.Capacity())
		assert.Equal(t, now.Add(time.Hour), l.UpdatedAt())
	})

	t.Run("invalid patch leaves lot untouched", func(t *testing.T) {
		l := newLot(t)
		zero := decimal.Zero
		newName := "B"
		_, err := l.Apply(lot.Patch{Name: &newName, Price: &zero}, now)
		require.ErrorIs(t, err, lot.ErrNonPositivePrice)
		assert.Equal(t, "A", l.Name())
	})

	t.Run("empty patch is no change", func(t *testing.T) {
		l := newLot(t)
		change, err := l.Apply(lot.Patch{}, now)
		require.NoError(t, err)
		assert.False(t, change.Grows())
		assert.False(t, change.Shrinks())
	})
}

func TestOrdinals(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5}, lot.Ordinals(2, 5))
	assert.Nil(t, lot.Ordinals(5, 2))
}
