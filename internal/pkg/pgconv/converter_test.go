//go:build unit

package pgconv_test

import (
	"math/big"
	"testing"
	"time"

	"parking-lot-manager/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalNumeric(t *testing.T) {
	t.Run("往復で値が保たれる", func(t *testing.T) {
		for _, s := range []string{"0", "12.5", "1999.99", "-3.14"} {
			d := decimal.RequireFromString(s)
			got, err := pgconv.DecimalFromNumeric(pgconv.DecimalToNumeric(d))
			require.NoError(t, err)
			assert.True(t, d.Equal(got), "%s != %s", s, got)
		}
	})

	t.Run("NULL", func(t *testing.T) {
		got, err := pgconv.DecimalPtrFromNumeric(pgtype.Numeric{})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.False(t, pgconv.DecimalPtrToNumeric(nil).Valid)
	})

	t.Run("NaN is rejected", func(t *testing.T) {
		_, err := pgconv.DecimalFromNumeric(pgtype.Numeric{NaN: true, Valid: true})
		require.ErrorIs(t, err, pgconv.ErrInvalidNumeric)
	})

	t.Run("scaled integer", func(t *testing.T) {
		got, err := pgconv.DecimalFromNumeric(pgtype.Numeric{Int: big.NewInt(1250), Exp: -2, Valid: true})
		require.NoError(t, err)
		assert.Equal(t, "12.5", got.String())
	})
}

func TestTimePtr(t *testing.T) {
	assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))

	ist := time.FixedZone("IST", 19800)
	local := time.Date(2025, 1, 6, 9, 0, 0, 0, ist)
	pt := pgconv.TimePtrToPgtype(&local)
	require.True(t, pt.Valid)

	got := pgconv.TimePtrFromPgtype(pt)
	require.NotNil(t, got)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, local.Equal(*got))
}
