//go:build unit

package eventbus_test

import (
	"context"
	"testing"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/infra/eventbus"

	"github.com/stretchr/testify/assert"
)

func TestBus_Publish(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("正常系: 登録順に全購読者へ配信", func(t *testing.T) {
		var got []string
		bus := eventbus.New(eventbus.SubscriberFunc(func(_ context.Context, e event.Event) {
			got = append(got, "a:"+e.Type.String())
		}))
		bus.Subscribe(eventbus.SubscriberFunc(func(_ context.Context, e event.Event) {
			got = append(got, "b:"+e.Type.String())
		}))

		bus.Publish(context.Background(), event.New(event.CatalogChanged, at), event.New(event.UserChanged, at))

		assert.Equal(t, []string{
			"a:CatalogChanged", "b:CatalogChanged",
			"a:UserChanged", "b:UserChanged",
		}, got)
	})

	t.Run("正常系: パニックした購読者は他の配信を妨げない", func(t *testing.T) {
		var delivered int
		bus := eventbus.New(
			eventbus.SubscriberFunc(func(context.Context, event.Event) { panic("boom") }),
			eventbus.SubscriberFunc(func(context.Context, event.Event) { delivered++ }),
		)

		assert.NotPanics(t, func() {
			bus.Publish(context.Background(), event.New(event.CatalogChanged, at))
		})
		assert.Equal(t, 1, delivered)
	})

	t.Run("正常系: キャンセル済みコンテキストでも配信される", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ctxErr error = context.Canceled
		bus := eventbus.New(eventbus.SubscriberFunc(func(ctx context.Context, _ event.Event) {
			ctxErr = ctx.Err()
		}))
		bus.Publish(ctx, event.New(event.CatalogChanged, at))
		assert.NoError(t, ctxErr)
	})
}
