package notifier

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/infra/eventbus"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/errs"
)

const deliveryTimeout = 5 * time.Second

// Sink delivers one event to an external channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e event.Event) error
}

// FailureRecorder notes a delivery failure on the job that produced the event.
type FailureRecorder interface {
	RecordDeliveryFailure(ctx context.Context, jobID int64, message string)
}

// Notifier drains a bounded queue of committed events into its sinks on a
// single goroutine. Handle never blocks; a full queue drops the event.
type Notifier struct {
	queue    chan event.Event
	sinks    []Sink
	failures FailureRecorder
	clock    clock.Clock
	dropped  atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

var _ eventbus.Subscriber = (*Notifier)(nil)

func New(cfg config.NotifierConfig, clk clock.Clock, failures FailureRecorder, sinks ...Sink) *Notifier {
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}
	return &Notifier{
		queue:    make(chan event.Event, size),
		sinks:    sinks,
		failures: failures,
		clock:    clk,
		done:     make(chan struct{}),
	}
}

func (n *Notifier) Handle(ctx context.Context, e event.Event) {
	select {
	case n.queue <- e:
	default:
		n.drop(ctx, e)
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

func (n *Notifier) drop(ctx context.Context, e event.Event) {
	total := n.dropped.Add(1)
	slog.Warn("notification queue full, dropping event",
		"event_id", e.ID.String(),
		"type", e.Type.String(),
		"dropped_total", total,
	)

	warning := event.New(event.NotificationDropped, n.clock.Now()).
		WithJob(e.JobID).
		WithUser(e.UserID).
		WithPayload(map[string]string{"event_id": e.ID.String(), "type": e.Type.String()})
	for _, s := range n.sinks {
		if ls, ok := s.(*LogSink); ok {
			_ = ls.Deliver(ctx, warning)
		}
	}
}

func (n *Notifier) Start() {
	n.startOnce.Do(func() {
		n.wg.Add(1)
		go n.loop()
		slog.Info("notifier started", "sinks", len(n.sinks), "queue_size", cap(n.queue))
	})
}

func (n *Notifier) loop() {
	defer n.wg.Done()
	for {
		select {
		case e := <-n.queue:
			n.dispatch(e)
		case <-n.done:
			for {
				select {
				case e := <-n.queue:
					n.dispatch(e)
				default:
					return
				}
			}
		}
	}
}

// Stop flushes queued events, giving up when ctx is done.
func (n *Notifier) Stop(ctx context.Context) error {
	n.stopOnce.Do(func() { close(n.done) })

	finished := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		slog.Info("notifier stopped", "dropped_total", n.Dropped())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) dispatch(e event.Event) {
	for _, s := range n.sinks {
		err := n.deliver(s, e)
		if err == nil {
			continue
		}
		slog.Warn("notification delivery failed",
			"sink", s.Name(),
			"event_id", e.ID.String(),
			"type", e.Type.String(),
			"error", err.Error(),
		)
		if e.JobID != 0 && n.failures != nil {
			n.failures.RecordDeliveryFailure(context.Background(), e.JobID, s.Name()+": "+err.Error())
		}
	}
}

func (n *Notifier) deliver(s Sink, e event.Event) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = errs.Newf("sink panicked: %v", r)
		}
	}()
	return s.Deliver(ctx, e)
}
