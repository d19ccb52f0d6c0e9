package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/domain/user"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

const (
	optimizeWindowDays = 7
	optimizeCacheTTL   = time.Hour
	dailyReportTTL     = 24 * time.Hour
	reminderSweep      = 15 * time.Minute
)

var ErrInvalidParams = errs.Mark(errs.New("invalid job params"), errs.ErrInvalidArgument)

// Action runs one job kind. The returned value is stored as the job result.
type Action func(ctx context.Context, params json.RawMessage) (any, error)

type Actions struct {
	uow          shared.UnitOfWork
	reservations commands.ReservationCommands
	cache        shared.CacheIndex
	clock        clock.Clock
	events       shared.EventPublisher
	location     *time.Location
	parking      config.ParkingConfig
	highUtil     float64
	lowUtil      float64
}

func NewActions(
	uow shared.UnitOfWork,
	reservations commands.ReservationCommands,
	cache shared.CacheIndex,
	clk clock.Clock,
	events shared.EventPublisher,
	cfg config.Config,
) (*Actions, error) {
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}
	return &Actions{
		uow:          uow,
		reservations: reservations,
		cache:        cache,
		clock:        clk,
		events:       events,
		location:     loc,
		parking:      cfg.Parking,
		highUtil:     cfg.Scheduler.OptimizeHighThreshold,
		lowUtil:      cfg.Scheduler.OptimizeLowThreshold,
	}, nil
}

func (a *Actions) Registry() map[job.Kind]Action {
	return map[job.Kind]Action{
		job.KindExpireStale:   a.ExpireStale,
		job.KindDailyReport:   a.DailyReport,
		job.KindOptimize:      a.Optimize,
		job.KindReminders:     a.Reminders,
		job.KindMonthlyReport: a.MonthlyReport,
	}
}

type jobIDKey struct{}

func withJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey{}, id)
}

// notification builds an event tagged with the running job, so delivery
// failures can be recorded against it.
func notification(ctx context.Context, t event.Type, at time.Time) event.Event {
	id, _ := ctx.Value(jobIDKey{}).(int64)
	return event.New(t, at).WithJob(id)
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errs.Wrapf(ErrInvalidParams, "%s", err.Error())
	}
	return nil
}

func (a *Actions) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(a.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.location)
}

type expireParams struct {
	ThresholdSeconds int64 `json:"threshold_seconds"`
}

func (a *Actions) ExpireStale(ctx context.Context, params json.RawMessage) (any, error) {
	var p expireParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	threshold := a.parking.StaleReservationThreshold
	if p.ThresholdSeconds > 0 {
		threshold = time.Duration(p.ThresholdSeconds) * time.Second
	}

	res, err := a.reservations.ExpireStale(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return ExpireResult{Expired: append([]int64{}, res.Expired...)}, nil
}

type dailyParams struct {
	Date string `json:"date"`
}

// DailyReport aggregates the previous local day unless params name a date.
func (a *Actions) DailyReport(ctx context.Context, params json.RawMessage) (any, error) {
	var p dailyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	from := a.startOfDay(a.clock.Now()).AddDate(0, 0, -1)
	if p.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, p.Date, a.location)
		if err != nil {
			return nil, errs.Wrapf(ErrInvalidParams, "date %q", p.Date)
		}
		from = d
	}
	to := from.AddDate(0, 0, 1)
	date := from.Format(time.DateOnly)

	key := shared.CacheKey{Prefix: "report", Function: "daily", Args: date}
	return shared.ReadThrough(ctx, a.cache, key, dailyReportTTL, func(ctx context.Context) (DailyReport, error) {
		report := DailyReport{Date: date, From: from.UTC(), To: to.UTC(), TotalRevenue: decimal.Zero}
		err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			lots, err := tx.Lots().List(ctx)
			if err != nil {
				return err
			}
			activity, err := tx.Reservations().LotActivity(ctx, from, to)
			if err != nil {
				return err
			}
			byLot := make(map[int64]shared.LotActivity, len(activity))
			for _, act := range activity {
				byLot[act.LotID] = act
			}

			report.Lots = make([]LotDailyStats, 0, len(lots))
			for _, l := range lots {
				act := byLot[l.ID()]
				stats := LotDailyStats{
					LotID:        l.ID(),
					Name:         l.Name(),
					Reservations: act.Reservations,
					Completed:    act.Completed,
					Revenue:      decimal.Zero.Add(act.Revenue),
				}
				report.Lots = append(report.Lots, stats)
				report.TotalReservations += stats.Reservations
				report.TotalRevenue = report.TotalRevenue.Add(stats.Revenue)
			}
			return nil
		})
		if err != nil {
			return report, err
		}
		a.events.Publish(ctx, notification(ctx, event.DailyReportReady, a.clock.Now()).WithPayload(report))
		return report, nil
	})
}

// Optimize rates each lot by reservations per spot per day over the last week.
// The advisory is cached, so re-running within the hour returns the same payload.
func (a *Actions) Optimize(ctx context.Context, _ json.RawMessage) (any, error) {
	key := shared.CacheKey{Prefix: "advisory", Function: "optimize"}
	return shared.ReadThrough(ctx, a.cache, key, optimizeCacheTTL, a.computeOptimize)
}

func (a *Actions) computeOptimize(ctx context.Context) (OptimizeReport, error) {
	now := a.clock.Now()
	from := now.AddDate(0, 0, -optimizeWindowDays)
	report := OptimizeReport{GeneratedAt: now, WindowDays: optimizeWindowDays, Recommendations: []Recommendation{}}

	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		lots, err := tx.Lots().List(ctx)
		if err != nil {
			return err
		}
		activity, err := tx.Reservations().LotActivity(ctx, from, now.Add(time.Nanosecond))
		if err != nil {
			return err
		}
		counts := make(map[int64]int, len(activity))
		for _, act := range activity {
			counts[act.LotID] = act.Reservations
		}

		for _, l := range lots {
			n := counts[l.ID()]
			util := UtilizationRate(n, l.Capacity(), optimizeWindowDays)
			rec := Recommendation{
				LotID:        l.ID(),
				Name:         l.Name(),
				Capacity:     l.Capacity(),
				Reservations: n,
				Utilization:  math.Round(util*1000) / 1000,
			}
			switch {
			case util > a.highUtil:
				rec.Action, rec.Priority = ActionIncreaseCapacity, PriorityHigh
			case util < a.lowUtil:
				rec.Action, rec.Priority = ActionPromote, PriorityMedium
			default:
				continue
			}
			report.Recommendations = append(report.Recommendations, rec)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for _, rec := range report.Recommendations {
		a.events.Publish(ctx, notification(ctx, event.OptimizationAdvisory, now).WithLot(rec.LotID).WithPayload(rec))
	}
	return report, nil
}

func UtilizationRate(reservations, capacity, days int) float64 {
	if capacity <= 0 || days <= 0 {
		return 0
	}
	return float64(reservations) / float64(capacity*days)
}

type reminderParams struct {
	WindowSeconds int64 `json:"window_seconds"`
}

// Reminders notifies users whose reminder time fell in the last sweep window
// and who have neither reserved today nor hold an active reservation.
func (a *Actions) Reminders(ctx context.Context, params json.RawMessage) (any, error) {
	var p reminderParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	window := reminderSweep
	if p.WindowSeconds > 0 {
		window = time.Duration(p.WindowSeconds) * time.Second
	}

	to := a.clock.Now().In(a.location)
	from := to.Add(-window)
	dayStart := a.startOfDay(to)
	result := ReminderResult{From: from.UTC(), To: to.UTC(), Notified: []int64{}}

	var due []event.Event
	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		prefs, err := tx.Preferences().ListReminderEnabled(ctx)
		if err != nil {
			return err
		}
		for _, pref := range prefs {
			if !pref.DueWithin(from, to) {
				continue
			}
			active, err := tx.Reservations().FindActiveByUser(ctx, pref.UserID())
			if err != nil {
				return err
			}
			if active != nil {
				continue
			}
			today, err := tx.Reservations().CountByUserSince(ctx, pref.UserID(), dayStart)
			if err != nil {
				return err
			}
			if today > 0 {
				continue
			}
			result.Notified = append(result.Notified, pref.UserID())
			due = append(due, notification(ctx, event.ReminderDue, to.UTC()).
				WithUser(pref.UserID()).
				WithChannel(pref.Channel().String()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.events.Publish(ctx, due...)
	return result, nil
}

type monthlyParams struct {
	Month string `json:"month"`
}

// MonthlyReport summarizes the previous local calendar month per user.
func (a *Actions) MonthlyReport(ctx context.Context, params json.RawMessage) (any, error) {
	var p monthlyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	y, m, _ := a.clock.Now().In(a.location).Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, a.location).AddDate(0, -1, 0)
	if p.Month != "" {
		d, err := time.ParseInLocation("2006-01", p.Month, a.location)
		if err != nil {
			return nil, errs.Wrapf(ErrInvalidParams, "month %q", p.Month)
		}
		from = d
	}
	to := from.AddDate(0, 1, 0)
	report := MonthlyReport{Month: from.Format("2006-01"), Users: []UserMonthlySummary{}}

	var ready []event.Event
	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		activity, err := tx.Reservations().UserActivity(ctx, from, to)
		if err != nil {
			return err
		}
		for _, act := range activity {
			summary := UserMonthlySummary{
				UserID:       act.UserID,
				Reservations: act.Reservations,
				Completed:    act.Completed,
				Spent:        decimal.Zero.Add(act.Spent),
				HoursParked:  math.Round(act.HoursParked*100) / 100,
			}
			report.Users = append(report.Users, summary)

			channel := user.ChannelEmail
			prefs, err := tx.Preferences().FindByUser(ctx, act.UserID)
			switch {
			case err == nil:
				channel = prefs.Channel()
			case !infra.IsKind(err, infra.KindNotFound):
				return err
			}
			ready = append(ready, notification(ctx, event.MonthlyReportReady, a.clock.Now()).
				WithUser(act.UserID).
				WithChannel(channel.String()).
				WithPayload(summary))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.events.Publish(ctx, ready...)
	return report, nil
}
