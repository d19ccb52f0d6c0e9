package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/usecase/shared"
)

// Subscriber handlers run on the publisher's goroutine and must not block.
type Subscriber interface {
	Handle(ctx context.Context, e event.Event)
}

type SubscriberFunc func(ctx context.Context, e event.Event)

func (f SubscriberFunc) Handle(ctx context.Context, e event.Event) { f(ctx, e) }

// Bus fans committed events out to subscribers in registration order.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

var _ shared.EventPublisher = (*Bus)(nil)

func New(subscribers ...Subscriber) *Bus {
	return &Bus{subscribers: subscribers}
}

func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
}

func (b *Bus) Publish(ctx context.Context, events ...event.Event) {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	// Detach from request cancellation; the change has already committed.
	ctx = context.WithoutCancel(ctx)
	for _, e := range events {
		for _, s := range subs {
			b.deliver(ctx, s, e)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, s Subscriber, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event subscriber panicked", "event", e.Type.String(), "panic", r)
		}
	}()
	s.Handle(ctx, e)
}
