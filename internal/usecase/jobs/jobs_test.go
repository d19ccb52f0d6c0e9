//go:build unit

package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/infra/cache"
	"parking-lot-manager/internal/infra/eventbus"
	"parking-lot-manager/internal/infra/memstore"
	"parking-lot-manager/internal/infra/notifier"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/pkg/password"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/jobs"
	"parking-lot-manager/internal/usecase/shared"
	"parking-lot-manager/tests/common/eventtest"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Monday 2025-01-06 09:00 in Asia/Kolkata.
var t0 = time.Date(2025, 1, 6, 3, 30, 0, 0, time.UTC)

var admin = shared.Caller{UserID: 1, IsAdmin: true}

type fixture struct {
	uow          shared.UnitOfWork
	clock        *clock.MockClock
	events       *eventtest.Recorder
	index        *cache.MemoryIndex
	catalog      commands.CatalogCommands
	reservations commands.ReservationCommands
	users        commands.UserCommands
	actions      *jobs.Actions
	service      jobs.JobUseCase
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func newFixture(t *testing.T, registry ...map[job.Kind]jobs.Action) *fixture {
	t.Helper()
	cfg := config.NewTestConfig()
	uow := memstore.NewUoW(memstore.New())
	clk := clock.NewMockClock(t0)
	rec := eventtest.NewRecorder()
	idx := cache.NewMemoryIndex(clk)
	hash := func(p string) (string, error) { return password.HashPasswordWithCost(p, bcrypt.MinCost) }

	reservations := commands.NewReservationUseCase(
		uow, clk, reservation.NewDefaultPriceCalculator(cfg.Parking.MinimumBillingUnit), rec, cfg.Parking,
	)
	actions, err := jobs.NewActions(uow, reservations, idx, clk, rec, cfg)
	require.NoError(t, err)

	reg := actions.Registry()
	if len(registry) > 0 {
		reg = registry[0]
	}
	runner := jobs.NewRunner(reg, cfg.Scheduler.JobTimeout, jobs.WithBackOff(zeroBackOff))

	return &fixture{
		uow:          uow,
		clock:        clk,
		events:       rec,
		index:        idx,
		catalog:      commands.NewCatalogUseCase(uow, clk, rec),
		reservations: reservations,
		users:        commands.NewUserUseCase(uow, clk, hash, rec),
		actions:      actions,
		service:      jobs.NewJobUseCase(uow, runner, clk, rec, 4),
	}
}

func (f *fixture) lot(t *testing.T, price int64, capacity int) int64 {
	t.Helper()
	id, err := f.catalog.CreateLot(context.Background(), admin, commands.CreateLotRequest{
		Name: "A", Price: decimal.NewFromInt(price), Address: "x", Pin: "1", Capacity: capacity,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) user(t *testing.T, name string) shared.Caller {
	t.Helper()
	id, err := f.users.Register(context.Background(), commands.RegisterRequest{
		Name: name, Email: name + "@example.com", Password: "password123",
	})
	require.NoError(t, err)
	return shared.Caller{UserID: id}
}

// cycle reserves, parks for an hour and releases.
func (f *fixture) cycle(t *testing.T, c shared.Caller, lotID int64) {
	t.Helper()
	ctx := context.Background()
	id, err := f.reservations.Reserve(ctx, c, lotID)
	require.NoError(t, err)
	require.NoError(t, f.reservations.Park(ctx, c, id))
	f.clock.Add(time.Hour)
	_, err = f.reservations.Release(ctx, c, id)
	require.NoError(t, err)
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestOptimize_HighUtilizationIsCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.lot(t, 10, 10)
	u1 := f.user(t, "driver01")

	for i := 0; i < 60; i++ {
		f.cycle(t, u1, lotID)
	}

	first, err := f.service.Execute(ctx, job.KindOptimize, nil)
	require.NoError(t, err)
	require.Equal(t, job.StatusCompleted, first.Status())

	report := decode[jobs.OptimizeReport](t, first.Result())
	require.Len(t, report.Recommendations, 1)
	rec := report.Recommendations[0]
	assert.Equal(t, lotID, rec.LotID)
	assert.Equal(t, 60, rec.Reservations)
	assert.Equal(t, 0.857, rec.Utilization)
	assert.Equal(t, jobs.PriorityHigh, rec.Priority)
	assert.Equal(t, jobs.ActionIncreaseCapacity, rec.Action)
	assert.Len(t, f.events.OfType(event.OptimizationAdvisory), 1)

	// More traffic within the hour does not change the cached advisory.
	f.clock.Add(10 * time.Minute)
	_, err = f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)
	second, err := f.service.Execute(ctx, job.KindOptimize, nil)
	require.NoError(t, err)
	assert.JSONEq(t, string(first.Result()), string(second.Result()))
	assert.Len(t, f.events.OfType(event.OptimizationAdvisory), 1)

	f.clock.Add(time.Hour)
	third, err := f.service.Execute(ctx, job.KindOptimize, nil)
	require.NoError(t, err)
	assert.NotEqual(t, string(first.Result()), string(third.Result()))
}

func TestOptimize_Thresholds(t *testing.T) {
	cases := []struct {
		name         string
		reservations int
		want         string
	}{
		{name: "低稼働は販促を推奨", reservations: 2, want: jobs.ActionPromote},
		{name: "中間は推奨なし", reservations: 10, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			lotID := f.lot(t, 10, 2)
			u1 := f.user(t, "driver01")
			for i := 0; i < tc.reservations; i++ {
				f.cycle(t, u1, lotID)
			}

			out, err := f.actions.Optimize(context.Background(), nil)
			require.NoError(t, err)
			report := out.(jobs.OptimizeReport)
			if tc.want == "" {
				assert.Empty(t, report.Recommendations)
				return
			}
			require.Len(t, report.Recommendations, 1)
			assert.Equal(t, tc.want, report.Recommendations[0].Action)
			assert.Equal(t, jobs.PriorityMedium, report.Recommendations[0].Priority)
		})
	}
}

func TestUtilizationRate(t *testing.T) {
	assert.InDelta(t, 0.857, jobs.UtilizationRate(60, 10, 7), 0.001)
	assert.Zero(t, jobs.UtilizationRate(5, 0, 7))
}

func TestExpireStale_Job(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.lot(t, 10, 3)
	u1 := f.user(t, "driver01")

	resID, err := f.reservations.Reserve(ctx, u1, lotID)
	require.NoError(t, err)

	f.clock.Add(24*time.Hour + time.Second)
	done, err := f.service.Execute(ctx, job.KindExpireStale, nil)
	require.NoError(t, err)
	require.Equal(t, job.StatusCompleted, done.Status())
	assert.Equal(t, []int64{resID}, decode[jobs.ExpireResult](t, done.Result()).Expired)

	again, err := f.service.Execute(ctx, job.KindExpireStale, nil)
	require.NoError(t, err)
	assert.Empty(t, decode[jobs.ExpireResult](t, again.Result()).Expired)

	err = f.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, resID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusExpired, res.Status())
		spots, err := tx.Spots().List(ctx, lotID)
		require.NoError(t, err)
		for _, s := range spots {
			assert.True(t, s.IsAvailable())
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []event.Type{event.JobStarted, event.ReservationExpired, event.JobCompleted},
		typesSince(f.events.Types(), event.JobStarted)[:3])
}

func typesSince(all []event.Type, first event.Type) []event.Type {
	for i, tp := range all {
		if tp == first {
			return all[i:]
		}
	}
	return nil
}

func TestDailyReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.lot(t, 10, 2)
	u1 := f.user(t, "driver01")

	f.cycle(t, u1, lotID)
	f.cycle(t, u1, lotID)
	f.clock.Add(24 * time.Hour)

	done, err := f.service.Execute(ctx, job.KindDailyReport, nil)
	require.NoError(t, err)
	report := decode[jobs.DailyReport](t, done.Result())
	assert.Equal(t, "2025-01-06", report.Date)
	assert.Equal(t, 2, report.TotalReservations)
	assert.Equal(t, "20.00", report.TotalRevenue.StringFixed(2))
	require.Len(t, report.Lots, 1)
	assert.Equal(t, 2, report.Lots[0].Completed)
	assert.Len(t, f.events.OfType(event.DailyReportReady), 1)

	failed, err := f.service.Execute(ctx, job.KindDailyReport, json.RawMessage(`{"date":"yesterday"}`))
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, failed.Status())
	assert.Equal(t, string(errs.KindInvalidArgument), failed.ErrorCode())
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.lot(t, 10, 5)

	idle := f.user(t, "idle01")
	busy := f.user(t, "busy01")
	reservedToday := f.user(t, "today01")
	later := f.user(t, "later01")

	set := func(c shared.Caller, at string) {
		require.NoError(t, f.users.SetPreferences(ctx, c, commands.SetPreferencesRequest{
			ReminderEnabled: true, ReminderTime: at, Channel: "chat",
		}))
	}
	// Local time at t0 is 09:00; the sweep covers (08:45, 09:00].
	set(idle, "08:50")
	set(busy, "08:55")
	set(reservedToday, "09:00")
	set(later, "09:10")

	_, err := f.reservations.Reserve(ctx, busy, lotID)
	require.NoError(t, err)
	f.clock.Set(t0.Add(-2 * time.Hour))
	f.cycle(t, reservedToday, lotID)
	f.clock.Set(t0)

	out, err := f.actions.Reminders(ctx, nil)
	require.NoError(t, err)
	result := out.(jobs.ReminderResult)
	assert.Equal(t, []int64{idle.UserID}, result.Notified)

	due := f.events.OfType(event.ReminderDue)
	require.Len(t, due, 1)
	assert.Equal(t, idle.UserID, due[0].UserID)
	assert.Equal(t, "chat", due[0].Channel)
}

func TestMonthlyReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.lot(t, 10, 2)
	u1 := f.user(t, "driver01")
	f.cycle(t, u1, lotID)

	f.clock.Set(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	out, err := f.actions.MonthlyReport(ctx, nil)
	require.NoError(t, err)
	report := out.(jobs.MonthlyReport)
	assert.Equal(t, "2025-01", report.Month)
	require.Len(t, report.Users, 1)
	assert.Equal(t, 1, report.Users[0].Completed)
	assert.Equal(t, 1.0, report.Users[0].HoursParked)

	ready := f.events.OfType(event.MonthlyReportReady)
	require.Len(t, ready, 1)
	assert.Equal(t, "email", ready[0].Channel)
}

func TestRunner_RetriesTransientStore(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 2回失敗後に成功", func(t *testing.T) {
		var calls atomic.Int32
		f := newFixture(t, map[job.Kind]jobs.Action{
			job.KindOptimize: func(context.Context, json.RawMessage) (any, error) {
				if calls.Add(1) < 3 {
					return nil, errs.Wrap(errs.ErrTransientStore, "connection reset")
				}
				return map[string]bool{"ok": true}, nil
			},
		})

		done, err := f.service.Execute(ctx, job.KindOptimize, nil)
		require.NoError(t, err)
		assert.Equal(t, job.StatusCompleted, done.Status())
		assert.Equal(t, 3, done.Attempts())
	})

	t.Run("異常系: 3回で諦める", func(t *testing.T) {
		var calls atomic.Int32
		f := newFixture(t, map[job.Kind]jobs.Action{
			job.KindOptimize: func(context.Context, json.RawMessage) (any, error) {
				calls.Add(1)
				return nil, errs.Wrap(errs.ErrTransientStore, "connection reset")
			},
		})

		done, err := f.service.Execute(ctx, job.KindOptimize, nil)
		require.NoError(t, err)
		assert.Equal(t, job.StatusFailed, done.Status())
		assert.Equal(t, string(errs.KindTransientStore), done.ErrorCode())
		assert.Equal(t, int32(jobs.MaxAttempts), calls.Load())
		assert.Len(t, f.events.OfType(event.JobFailed), 1)
	})

	t.Run("異常系: 恒久的なエラーは再試行しない", func(t *testing.T) {
		var calls atomic.Int32
		f := newFixture(t, map[job.Kind]jobs.Action{
			job.KindOptimize: func(context.Context, json.RawMessage) (any, error) {
				calls.Add(1)
				return nil, errs.Wrap(errs.ErrInvalidState, "nope")
			},
		})

		done, err := f.service.Execute(ctx, job.KindOptimize, nil)
		require.NoError(t, err)
		assert.Equal(t, job.StatusFailed, done.Status())
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestRunner_Timeout(t *testing.T) {
	runner := jobs.NewRunner(map[job.Kind]jobs.Action{
		job.KindOptimize: func(ctx context.Context, _ json.RawMessage) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}, 20*time.Millisecond, jobs.WithBackOff(zeroBackOff))

	_, attempts, err := runner.Run(context.Background(), job.KindOptimize, nil)
	assert.Equal(t, errs.KindTimeout, errs.KindOf(err))
	assert.Equal(t, 1, attempts)

	t.Run("締切を過ぎて成功しても TIMEOUT", func(t *testing.T) {
		slow := jobs.NewRunner(map[job.Kind]jobs.Action{
			job.KindOptimize: func(context.Context, json.RawMessage) (any, error) {
				time.Sleep(50 * time.Millisecond)
				return "ok", nil
			},
		}, 10*time.Millisecond, jobs.WithBackOff(zeroBackOff))

		out, attempts, err := slow.Run(context.Background(), job.KindOptimize, nil)
		require.Error(t, err)
		assert.Equal(t, errs.KindTimeout, errs.KindOf(err))
		assert.Nil(t, out)
		assert.Equal(t, 1, attempts)
	})
}

func TestExecute_LateSuccessIsRecordedAsTimeout(t *testing.T) {
	f := newFixture(t)
	runner := jobs.NewRunner(map[job.Kind]jobs.Action{
		job.KindReminders: func(context.Context, json.RawMessage) (any, error) {
			time.Sleep(30 * time.Millisecond)
			return "sent", nil
		},
	}, 5*time.Millisecond, jobs.WithBackOff(zeroBackOff))
	service := jobs.NewJobUseCase(f.uow, runner, f.clock, f.events, 1)

	done, err := service.Execute(context.Background(), job.KindReminders, nil)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, done.Status())
	assert.Equal(t, string(errs.KindTimeout), done.ErrorCode())
	assert.Len(t, f.events.OfType(event.JobFailed), 1)
}

func TestRunner_UnknownKind(t *testing.T) {
	runner := jobs.NewRunner(map[job.Kind]jobs.Action{}, time.Second)
	_, _, err := runner.Run(context.Background(), job.KindOptimize, nil)
	assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
}

func TestTriggerJob(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: キューに積まれワーカーが完了させる", func(t *testing.T) {
		f := newFixture(t)
		f.service.Start()
		defer func() { require.NoError(t, f.service.Stop(ctx)) }()

		id, err := f.service.TriggerJob(ctx, admin, "optimize", nil)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			var status job.Status
			_ = f.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
				j, err := tx.Jobs().FindByID(ctx, id)
				if err == nil {
					status = j.Status()
				}
				return err
			})
			return status == job.StatusCompleted
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("異常系: 一般ユーザー", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.TriggerJob(ctx, shared.Caller{UserID: 3}, "optimize", nil)
		assert.Equal(t, errs.KindPermissionDenied, errs.KindOf(err))
	})

	t.Run("異常系: 不明な種類", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.TriggerJob(ctx, admin, "defrag", nil)
		assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
	})

	t.Run("異常系: キューが満杯なら失敗として記録", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 4; i++ {
			_, err := f.service.TriggerJob(ctx, admin, "optimize", nil)
			require.NoError(t, err)
		}
		id, err := f.service.TriggerJob(ctx, admin, "optimize", nil)
		assert.Equal(t, errs.KindTransientStore, errs.KindOf(err))

		err = f.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			j, err := tx.Jobs().FindByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, job.StatusFailed, j.Status())
			return nil
		})
		require.NoError(t, err)
	})
}

func TestRecordDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	done, err := f.service.Execute(ctx, job.KindOptimize, nil)
	require.NoError(t, err)

	f.service.RecordDeliveryFailure(ctx, done.ID(), "amqp: channel closed")

	err = f.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		j, err := tx.Jobs().FindByID(ctx, done.ID())
		require.NoError(t, err)
		assert.Equal(t, job.StatusCompleted, j.Status())
		assert.Equal(t, "amqp: channel closed", j.ErrorMessage())
		return nil
	})
	require.NoError(t, err)
}

type closedSink struct{}

func (closedSink) Name() string { return "amqp" }
func (closedSink) Deliver(context.Context, event.Event) error {
	return errors.New("channel closed")
}

func TestExecute_KeepsDeliveryFailuresRecordedWhileRunning(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewTestConfig()
	uow := memstore.NewUoW(memstore.New())
	clk := clock.NewMockClock(t0)
	bus := eventbus.New()

	errorMessage := func(id int64) string {
		var msg string
		_ = uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			j, err := tx.Jobs().FindByID(ctx, id)
			if err == nil {
				msg = j.ErrorMessage()
			}
			return err
		})
		return msg
	}

	// Job ids start at 1 in a fresh store.
	runner := jobs.NewRunner(map[job.Kind]jobs.Action{
		job.KindOptimize: func(ctx context.Context, _ json.RawMessage) (any, error) {
			deadline := time.Now().Add(2 * time.Second)
			for errorMessage(1) == "" && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			return map[string]int{"advisories": 0}, nil
		},
	}, time.Minute, jobs.WithBackOff(zeroBackOff))
	service := jobs.NewJobUseCase(uow, runner, clk, bus, 4)

	n := notifier.New(cfg.Notifier, clk, service, closedSink{})
	bus.Subscribe(n)
	n.Start()

	done, err := service.Execute(ctx, job.KindOptimize, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), done.ID())
	assert.Equal(t, job.StatusCompleted, done.Status())
	assert.Equal(t, "amqp: channel closed", done.ErrorMessage(), "failure of JobStarted survives completion")

	require.NoError(t, n.Stop(ctx))
	assert.Equal(t, "amqp: channel closed; amqp: channel closed", errorMessage(done.ID()))
}

func TestExecute_NotificationsCarryJobID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lotID := f.lot(t, 10, 2)
	u1 := f.user(t, "driver01")
	f.cycle(t, u1, lotID)

	f.clock.Set(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	done, err := f.service.Execute(ctx, job.KindMonthlyReport, nil)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, done.Status())

	ready := f.events.OfType(event.MonthlyReportReady)
	require.Len(t, ready, 1)
	assert.Equal(t, done.ID(), ready[0].JobID)
}
