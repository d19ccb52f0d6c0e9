//go:build unit

package notifier_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/infra/notifier"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	jobsmock "parking-lot-manager/tests/mock/jobs"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var t0 = time.Date(2025, 1, 6, 3, 30, 0, 0, time.UTC)

type captureSink struct {
	mu     sync.Mutex
	name   string
	err    error
	events []event.Event
}

func (s *captureSink) Name() string { return s.name }

func (s *captureSink) Deliver(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *captureSink) Types() []event.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Type, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNotifier_DeliversInOrder(t *testing.T) {
	ctx := context.Background()
	sink := &captureSink{name: "capture"}
	n := notifier.New(config.NotifierConfig{QueueSize: 8}, clock.NewMockClock(t0), nil, sink)
	n.Start()

	n.Handle(ctx, event.New(event.ReservationCreated, t0))
	n.Handle(ctx, event.New(event.ReservationParked, t0))
	n.Handle(ctx, event.New(event.ReservationReleased, t0))
	require.NoError(t, n.Stop(ctx))

	want := []event.Type{event.ReservationCreated, event.ReservationParked, event.ReservationReleased}
	if diff := cmp.Diff(want, sink.Types()); diff != "" {
		t.Errorf("delivered events mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, n.Dropped())
}

func TestNotifier_OverflowDropsWithWarning(t *testing.T) {
	ctx := context.Background()
	logs := &syncBuffer{}
	logSink := notifier.NewLogSink(slog.New(slog.NewJSONHandler(logs, nil)))
	other := &captureSink{name: "capture"}
	n := notifier.New(config.NotifierConfig{QueueSize: 1}, clock.NewMockClock(t0), nil, logSink, other)

	// Not started: the first event fills the queue.
	n.Handle(ctx, event.New(event.ReservationCreated, t0))
	n.Handle(ctx, event.New(event.ReminderDue, t0).WithUser(9))

	assert.Equal(t, int64(1), n.Dropped())
	assert.Contains(t, logs.String(), `"type":"NotificationDropped"`)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Empty(t, other.Types(), "dropped warning goes to log sinks only")

	n.Start()
	require.NoError(t, n.Stop(ctx))
	assert.Equal(t, []event.Type{event.ReservationCreated}, other.Types())
}

func TestNotifier_RecordsFailureOnJob(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	recorder := jobsmock.NewMockJobUseCase(ctrl)

	failing := &captureSink{name: "flaky", err: errors.New("boom")}
	n := notifier.New(config.NotifierConfig{QueueSize: 4}, clock.NewMockClock(t0), recorder, failing)

	recorder.EXPECT().RecordDeliveryFailure(gomock.Any(), int64(7), "flaky: boom").Times(1)

	n.Start()
	n.Handle(ctx, event.New(event.ReminderDue, t0).WithJob(7).WithChannel("email"))
	n.Handle(ctx, event.New(event.ReservationCreated, t0))
	require.NoError(t, n.Stop(ctx))

	assert.Len(t, failing.Types(), 2)
}

type panicSink struct{}

func (panicSink) Name() string { return "panic" }
func (panicSink) Deliver(context.Context, event.Event) error {
	panic("sink exploded")
}

func TestNotifier_SinkPanicDoesNotStopDelivery(t *testing.T) {
	ctx := context.Background()
	after := &captureSink{name: "after"}
	n := notifier.New(config.NotifierConfig{QueueSize: 4}, clock.NewMockClock(t0), nil, panicSink{}, after)

	n.Start()
	n.Handle(ctx, event.New(event.CatalogChanged, t0))
	n.Handle(ctx, event.New(event.CatalogChanged, t0))
	require.NoError(t, n.Stop(ctx))

	assert.Len(t, after.Types(), 2)
}

type publishCall struct {
	queue string
	msg   amqp.Publishing
}

type fakeChannel struct {
	declared  []string
	published []publishCall
	err       error
	closed    bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	if exchange != "" {
		return errors.New("unexpected exchange")
	}
	f.published = append(f.published, publishCall{queue: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPSink(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: チャネルごとのキューへ永続配信", func(t *testing.T) {
		ch := &fakeChannel{}
		sink := notifier.NewAMQPSink(ch, "parking.notifications")

		reminder := event.New(event.ReminderDue, t0).WithUser(3).WithChannel("email")
		require.NoError(t, sink.Deliver(ctx, reminder))
		require.NoError(t, sink.Deliver(ctx, event.New(event.MonthlyReportReady, t0).WithChannel("email")))
		require.NoError(t, sink.Deliver(ctx, event.New(event.ReminderDue, t0).WithChannel("chat")))

		assert.Equal(t, []string{"parking.notifications.email", "parking.notifications.chat"}, ch.declared)
		require.Len(t, ch.published, 3)

		first := ch.published[0]
		assert.Equal(t, "parking.notifications.email", first.queue)
		assert.Equal(t, amqp.Persistent, first.msg.DeliveryMode)
		assert.Equal(t, "application/json", first.msg.ContentType)
		assert.Equal(t, reminder.ID.String(), first.msg.MessageId)

		var got event.Event
		require.NoError(t, json.Unmarshal(first.msg.Body, &got))
		assert.Equal(t, reminder.UserID, got.UserID)
		assert.Equal(t, event.ReminderDue, got.Type)
	})

	t.Run("チャネルなしのイベントは送らない", func(t *testing.T) {
		ch := &fakeChannel{}
		sink := notifier.NewAMQPSink(ch, "parking.notifications")
		require.NoError(t, sink.Deliver(ctx, event.New(event.ReservationCreated, t0)))
		assert.Empty(t, ch.published)
		assert.Empty(t, ch.declared)
	})

	t.Run("異常系: 送信失敗はエラーを返す", func(t *testing.T) {
		ch := &fakeChannel{err: amqp.ErrClosed}
		sink := notifier.NewAMQPSink(ch, "parking.notifications")
		err := sink.Deliver(ctx, event.New(event.ReminderDue, t0).WithChannel("chat"))
		require.Error(t, err)
		assert.ErrorIs(t, err, amqp.ErrClosed)

		require.NoError(t, sink.Close())
		assert.True(t, ch.closed)
	})
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := notifier.NewHub()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	sent := event.New(event.ReservationCreated, t0).WithLot(4).WithSpot(2)
	require.NoError(t, hub.Deliver(context.Background(), sent))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, int64(4), got.LotID)

	hub.Close()
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.Zero(t, hub.Clients())
}
