package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

const MaxAttempts = 3

// Runner executes job actions under a deadline, retrying TRANSIENT_STORE failures.
type Runner struct {
	actions    map[job.Kind]Action
	timeout    time.Duration
	newBackOff func() backoff.BackOff
}

type RunnerOption func(*Runner)

// WithBackOff replaces the exponential retry policy.
func WithBackOff(f func() backoff.BackOff) RunnerOption {
	return func(r *Runner) { r.newBackOff = f }
}

func NewRunner(actions map[job.Kind]Action, timeout time.Duration, opts ...RunnerOption) *Runner {
	r := &Runner{
		actions: actions,
		timeout: timeout,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run returns the encoded result and the number of attempts made.
func (r *Runner) Run(ctx context.Context, kind job.Kind, params json.RawMessage) (json.RawMessage, int, error) {
	action, ok := r.actions[kind]
	if !ok {
		return nil, 0, errs.Wrapf(job.ErrUnknownKind, "%s", kind)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	attempts := 0
	op := func() (any, error) {
		attempts++
		out, err := r.invoke(ctx, action, params)
		if ctx.Err() != nil {
			return nil, backoff.Permanent(errs.Wrapf(errs.ErrTimeout, "%s exceeded %s", kind, r.timeout))
		}
		if err == nil {
			return out, nil
		}
		if errs.IsKind(err, errs.KindTransientStore) {
			slog.Warn("job attempt failed, will retry", "kind", kind.String(), "attempt", attempts, "error", err.Error())
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), MaxAttempts-1), ctx)
	out, err := backoff.RetryWithData(op, policy)
	if err != nil {
		if ctx.Err() != nil && !errs.IsKind(err, errs.KindTimeout) {
			err = errs.Wrapf(errs.ErrTimeout, "%s exceeded %s", kind, r.timeout)
		}
		return nil, attempts, err
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, attempts, errs.Wrap(err, "encode job result")
	}
	return raw, attempts, nil
}

func (r *Runner) invoke(ctx context.Context, action Action, params json.RawMessage) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errs.Wrapf(errs.ErrInternal, "job panicked: %v", rec)
		}
	}()
	return action(ctx, params)
}
