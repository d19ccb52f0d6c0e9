package job

import (
	"errors"

	"parking-lot-manager/internal/pkg/errs"
)

var ErrUnknownKind = errs.Mark(errors.New("unknown job kind"), errs.ErrInvalidArgument)

type Kind string

const (
	KindExpireStale   Kind = "expire-stale"
	KindDailyReport   Kind = "daily-report"
	KindOptimize      Kind = "optimize"
	KindReminders     Kind = "reminders"
	KindMonthlyReport Kind = "monthly-report"
)

// Kinds lists every job variant in scheduling order.
var Kinds = []Kind{KindExpireStale, KindDailyReport, KindOptimize, KindReminders, KindMonthlyReport}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindExpireStale, KindDailyReport, KindOptimize, KindReminders, KindMonthlyReport:
		return true
	default:
		return false
	}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", errs.Wrapf(ErrUnknownKind, "%q", s)
	}
	return k, nil
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo enforces pending -> running -> completed|failed.
// A pending job may fail directly when it never gets to run.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning || next == StatusFailed
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}
