package notifier

import (
	"context"
	"log/slog"

	"parking-lot-manager/internal/domain/event"
)

// LogSink writes every event as a structured log line.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{log: l.With("component", "notifier")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, e event.Event) error {
	level := slog.LevelInfo
	if e.Type == event.NotificationDropped || e.Type == event.JobFailed {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("event_id", e.ID.String()),
		slog.String("type", e.Type.String()),
		slog.Time("occurred_at", e.OccurredAt),
	}
	for _, f := range []struct {
		key string
		id  int64
	}{
		{"lot_id", e.LotID},
		{"spot_id", e.SpotID},
		{"reservation_id", e.ReservationID},
		{"user_id", e.UserID},
		{"job_id", e.JobID},
	} {
		if f.id != 0 {
			attrs = append(attrs, slog.Int64(f.key, f.id))
		}
	}
	if e.Channel != "" {
		attrs = append(attrs, slog.String("channel", e.Channel))
	}
	if len(e.Payload) > 0 {
		attrs = append(attrs, slog.String("payload", string(e.Payload)))
	}

	s.log.LogAttrs(ctx, level, "event", attrs...)
	return nil
}
