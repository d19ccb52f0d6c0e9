package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"
)

var ErrQueueFull = errs.Mark(errs.New("job queue is full"), errs.ErrTransientStore)

type JobUseCase interface {
	// TriggerJob records a Pending job, queues it and returns its id.
	TriggerJob(ctx context.Context, caller shared.Caller, kind string, params json.RawMessage) (int64, error)
	// Execute records and runs a job synchronously; the scheduler and CLI use it.
	Execute(ctx context.Context, kind job.Kind, params json.RawMessage) (*job.Job, error)
	RecordDeliveryFailure(ctx context.Context, jobID int64, message string)
	Start()
	Stop(ctx context.Context) error
}

type jobUseCaseImpl struct {
	uow    shared.UnitOfWork
	runner *Runner
	clock  clock.Clock
	events shared.EventPublisher

	queue    chan int64
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewJobUseCase(uow shared.UnitOfWork, runner *Runner, clk clock.Clock, events shared.EventPublisher, queueSize int) JobUseCase {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &jobUseCaseImpl{
		uow:    uow,
		runner: runner,
		clock:  clk,
		events: events,
		queue:  make(chan int64, queueSize),
		done:   make(chan struct{}),
	}
}

func (s *jobUseCaseImpl) TriggerJob(ctx context.Context, caller shared.Caller, kind string, params json.RawMessage) (int64, error) {
	if !caller.IsAdmin {
		return 0, errs.Wrap(errs.ErrPermissionDenied, "admin only")
	}
	k, err := job.ParseKind(kind)
	if err != nil {
		return 0, err
	}

	j, err := s.create(ctx, k, params)
	if err != nil {
		return 0, err
	}

	select {
	case s.queue <- j.ID():
		return j.ID(), nil
	default:
		if _, err := s.finish(ctx, j.ID(), nil, 0, ErrQueueFull); err != nil {
			slog.Warn("failed to mark rejected job", "job_id", j.ID(), "error", err.Error())
		}
		return j.ID(), errs.Wrapf(ErrQueueFull, "job %d", j.ID())
	}
}

func (s *jobUseCaseImpl) Execute(ctx context.Context, kind job.Kind, params json.RawMessage) (*job.Job, error) {
	j, err := s.create(ctx, kind, params)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, j.ID())
}

func (s *jobUseCaseImpl) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.done:
				return
			case id := <-s.queue:
				if _, err := s.run(context.Background(), id); err != nil {
					slog.Error("queued job could not be run", "job_id", id, "error", err.Error())
				}
			}
		}
	}()
}

// Stop lets the running job finish; jobs still queued stay Pending.
func (s *jobUseCaseImpl) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *jobUseCaseImpl) RecordDeliveryFailure(ctx context.Context, jobID int64, message string) {
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		j, err := tx.Jobs().FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		j.RecordDeliveryFailure(message, s.clock.Now())
		return tx.Jobs().Update(ctx, j)
	})
	if err != nil {
		slog.Warn("failed to record delivery failure", "job_id", jobID, "error", err.Error())
	}
}

func (s *jobUseCaseImpl) create(ctx context.Context, kind job.Kind, params json.RawMessage) (*job.Job, error) {
	j, err := job.NewJob(kind, params, s.clock.Now())
	if err != nil {
		return nil, err
	}
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, err := tx.Jobs().Create(ctx, j)
		if err != nil {
			return err
		}
		j.AssignID(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// run moves a Pending job through Running to a terminal state. The job's own
// failure is recorded on the row; only bookkeeping errors are returned.
func (s *jobUseCaseImpl) run(ctx context.Context, id int64) (*job.Job, error) {
	var j *job.Job
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		j, err = tx.Jobs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := j.Start(s.clock.Now()); err != nil {
			return err
		}
		return tx.Jobs().Update(ctx, j)
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, event.New(event.JobStarted, s.clock.Now()).WithJob(id).WithPayload(map[string]string{"kind": j.Kind().String()}))

	result, attempts, runErr := s.runner.Run(withJobID(ctx, id), j.Kind(), j.Params())
	return s.finish(ctx, id, result, attempts, runErr)
}

// finish applies the outcome to the stored row so that delivery failures
// recorded while the action ran are kept.
func (s *jobUseCaseImpl) finish(ctx context.Context, id int64, result json.RawMessage, attempts int, runErr error) (*job.Job, error) {
	now := s.clock.Now()
	ctx = context.WithoutCancel(ctx)

	var j *job.Job
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		j, err = tx.Jobs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if runErr != nil {
			err = j.Fail(string(errs.KindOf(runErr)), runErr.Error(), attempts, now)
		} else {
			err = j.Complete(result, attempts, now)
		}
		if err != nil {
			return err
		}
		return tx.Jobs().Update(ctx, j)
	})
	if err != nil {
		return nil, err
	}

	var ev event.Event
	if runErr != nil {
		kind := errs.KindOf(runErr)
		slog.Error("job failed", "job_id", j.ID(), "kind", j.Kind().String(), "code", string(kind), "attempts", attempts, "error", runErr.Error())
		ev = event.New(event.JobFailed, now).WithJob(j.ID()).WithPayload(map[string]string{
			"kind":  j.Kind().String(),
			"code":  string(kind),
			"error": runErr.Error(),
		})
	} else {
		slog.Info("job completed", "job_id", j.ID(), "kind", j.Kind().String(), "attempts", attempts)
		ev = event.New(event.JobCompleted, now).WithJob(j.ID()).WithPayload(map[string]string{"kind": j.Kind().String()})
	}
	s.events.Publish(ctx, ev)
	return j, nil
}
