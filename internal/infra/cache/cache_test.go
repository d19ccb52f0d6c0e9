//go:build unit

package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/infra/cache"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestMemoryIndex_TTL(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(t0)
	idx := cache.NewMemoryIndex(clk)

	require.NoError(t, idx.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := idx.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clk.Add(time.Minute)
	_, ok, err = idx.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, idx.Len())
}

// hookClock runs hook once, on the next call to Now.
type hookClock struct {
	*clock.MockClock
	hook func()
}

func (c *hookClock) Now() time.Time {
	if h := c.hook; h != nil {
		c.hook = nil
		h()
	}
	return c.MockClock.Now()
}

func TestMemoryIndex_ExpiryKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	clk := &hookClock{MockClock: clock.NewMockClock(t0)}
	idx := cache.NewMemoryIndex(clk)

	require.NoError(t, idx.Set(ctx, "k", []byte("old"), time.Minute))
	clk.Add(time.Minute)

	// The refresh lands after Get saw the stale entry.
	clk.hook = func() {
		require.NoError(t, idx.Set(ctx, "k", []byte("new"), time.Minute))
	}
	_, ok, err := idx.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := idx.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryIndex_Invalidate(t *testing.T) {
	ctx := context.Background()
	idx := cache.NewMemoryIndex(clock.NewMockClock(t0))
	for _, k := range []string{
		"catalog:lots:list:abc",
		"analytics:summary:def",
		"user:1:history:123",
		"user:10:history:456",
		"advisory:optimize:789",
	} {
		require.NoError(t, idx.Set(ctx, k, []byte("{}"), time.Hour))
	}

	n, err := idx.Invalidate(ctx, "*lots*")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = idx.Invalidate(ctx, "user:1:*")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, _ := idx.Get(ctx, "user:10:history:456")
	assert.True(t, ok)

	_, err = idx.Invalidate(ctx, "[")
	assert.Error(t, err)
}

func TestPatterns(t *testing.T) {
	cases := []struct {
		name string
		ev   event.Event
		want []string
	}{
		{
			name: "catalog change",
			ev:   event.New(event.CatalogChanged, t0).WithLot(1),
			want: []string{"*lots*", "*analytics*"},
		},
		{
			name: "reservation with user",
			ev:   event.New(event.ReservationReleased, t0).WithUser(7),
			want: []string{"*lots*", "*analytics*", "user:7:*"},
		},
		{
			name: "job events do not invalidate",
			ev:   event.New(event.JobCompleted, t0).WithJob(3),
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cache.Patterns(tc.ev))
		})
	}
}

func TestInvalidator_Handle(t *testing.T) {
	ctx := context.Background()
	idx := cache.NewMemoryIndex(clock.NewMockClock(t0))
	require.NoError(t, idx.Set(ctx, "catalog:lots:list:x", []byte("1"), time.Hour))
	require.NoError(t, idx.Set(ctx, "user:7:history:x", []byte("1"), time.Hour))
	require.NoError(t, idx.Set(ctx, "user:8:history:x", []byte("1"), time.Hour))
	require.NoError(t, idx.Set(ctx, "advisory:optimize:x", []byte("1"), time.Hour))

	cache.NewInvalidator(idx).Handle(ctx, event.New(event.ReservationCreated, t0).WithUser(7))

	assert.Equal(t, 2, idx.Len())
	_, ok, _ := idx.Get(ctx, "user:8:history:x")
	assert.True(t, ok)
	_, ok, _ = idx.Get(ctx, "advisory:optimize:x")
	assert.True(t, ok)
}

type brokenIndex struct{}

func (brokenIndex) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenIndex) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenIndex) Invalidate(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}

func TestReadThrough(t *testing.T) {
	ctx := context.Background()
	key := shared.CacheKey{Prefix: cache.PrefixCatalog, Function: "list", Args: map[string]int{"page": 1}}

	t.Run("正常系: 2回目はキャッシュから返す", func(t *testing.T) {
		idx := cache.NewMemoryIndex(clock.NewMockClock(t0))
		calls := 0
		loader := func(context.Context) ([]string, error) {
			calls++
			return []string{"A", "B"}, nil
		}

		first, err := shared.ReadThrough(ctx, idx, key, time.Minute, loader)
		require.NoError(t, err)
		second, err := shared.ReadThrough(ctx, idx, key, time.Minute, loader)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)

		raw, ok, err := idx.Get(ctx, key.String())
		require.NoError(t, err)
		require.True(t, ok)
		var stored []string
		require.NoError(t, json.Unmarshal(raw, &stored))
		assert.Equal(t, []string{"A", "B"}, stored)
	})

	t.Run("正常系: キャッシュ障害時もローダーの結果を返す", func(t *testing.T) {
		got, err := shared.ReadThrough(ctx, brokenIndex{}, key, time.Minute, func(context.Context) (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("異常系: ローダーのエラーはキャッシュしない", func(t *testing.T) {
		idx := cache.NewMemoryIndex(clock.NewMockClock(t0))
		boom := errors.New("boom")
		_, err := shared.ReadThrough(ctx, idx, key, time.Minute, func(context.Context) (int, error) {
			return 0, boom
		})
		require.ErrorIs(t, err, boom)
		assert.Zero(t, idx.Len())
	})

	t.Run("キーは引数のフィンガープリントを含む", func(t *testing.T) {
		other := key
		other.Args = map[string]int{"page": 2}
		assert.NotEqual(t, key.String(), other.String())
		assert.Regexp(t, `^catalog:lots:list:[0-9a-f]{40}$`, key.String())
	})
}
