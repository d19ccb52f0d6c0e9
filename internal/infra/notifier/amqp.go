package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the subset of *amqp.Channel the sink publishes through.
type AMQPChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink routes user-facing notifications to one durable queue per
// delivery channel, e.g. parking.notifications.email. Events without a
// channel are not published.
type AMQPSink struct {
	mu       sync.Mutex
	ch       AMQPChannel
	conn     io.Closer
	prefix   string
	declared map[string]bool
}

func NewAMQPSink(ch AMQPChannel, queuePrefix string) *AMQPSink {
	return &AMQPSink{
		ch:       ch,
		prefix:   queuePrefix,
		declared: make(map[string]bool),
	}
}

// DialAMQP opens one connection and channel for the lifetime of the sink.
func DialAMQP(cfg config.AMQPConfig) (*AMQPSink, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errs.Wrap(err, "dial amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "open amqp channel")
	}
	sink := NewAMQPSink(ch, cfg.QueuePrefix)
	sink.conn = conn
	slog.Info("connected to amqp broker", "queue_prefix", cfg.QueuePrefix)
	return sink, nil
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) QueueName(channel string) string {
	return s.prefix + "." + channel
}

func (s *AMQPSink) Deliver(ctx context.Context, e event.Event) error {
	if e.Channel == "" {
		return nil
	}
	body, err := json.Marshal(e)
	if err != nil {
		return errs.Wrap(err, "encode event")
	}

	queue := s.QueueName(e.Channel)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.declared[queue] {
		if _, err := s.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return errs.Wrapf(err, "declare queue %s", queue)
		}
		s.declared[queue] = true
	}

	err = s.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID.String(),
		Type:         e.Type.String(),
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return errs.Wrapf(err, "publish to %s", queue)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ch.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
