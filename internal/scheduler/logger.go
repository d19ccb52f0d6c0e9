package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's internal logging to slog. Info is demoted to
// debug because cron logs every wake-up.
type cronLogger struct {
	log *slog.Logger
}

var _ cron.Logger = cronLogger{}

func newCronLogger(l *slog.Logger) cronLogger {
	return cronLogger{log: l.With("component", "cron")}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error(msg, append(keysAndValues, "error", err)...)
}
