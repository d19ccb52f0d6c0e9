package job

import (
	"encoding/json"
	"errors"
	"time"

	"parking-lot-manager/internal/pkg/errs"
)

var ErrInvalidTransition = errs.Mark(errors.New("invalid job status transition"), errs.ErrInvalidState)

type Job struct {
	id           int64
	kind         Kind
	status       Status
	params       json.RawMessage
	result       json.RawMessage
	errorCode    string
	errorMessage string
	attempts     int
	createdAt    time.Time
	updatedAt    time.Time
}

func NewJob(kind Kind, params json.RawMessage, now time.Time) (*Job, error) {
	if !kind.IsValid() {
		return nil, ErrUnknownKind
	}
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	return &Job{
		kind:      kind,
		status:    StatusPending,
		params:    params,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructJob(
	id int64,
	kind Kind,
	status Status,
	params, result json.RawMessage,
	errorCode, errorMessage string,
	attempts int,
	createdAt, updatedAt time.Time,
) *Job {
	return &Job{
		id:           id,
		kind:         kind,
		status:       status,
		params:       params,
		result:       result,
		errorCode:    errorCode,
		errorMessage: errorMessage,
		attempts:     attempts,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (j *Job) Start(now time.Time) error {
	if err := j.transition(StatusRunning, now); err != nil {
		return err
	}
	j.attempts = 0
	return nil
}

func (j *Job) Complete(result json.RawMessage, attempts int, now time.Time) error {
	if err := j.transition(StatusCompleted, now); err != nil {
		return err
	}
	j.result = result
	j.attempts = attempts
	return nil
}

func (j *Job) Fail(code, message string, attempts int, now time.Time) error {
	if err := j.transition(StatusFailed, now); err != nil {
		return err
	}
	j.errorCode = code
	if j.errorMessage != "" {
		message += "; " + j.errorMessage
	}
	j.errorMessage = message
	j.attempts = attempts
	return nil
}

// RecordDeliveryFailure notes a notifier failure without touching the status.
func (j *Job) RecordDeliveryFailure(message string, now time.Time) {
	if j.errorMessage != "" {
		j.errorMessage += "; "
	}
	j.errorMessage += message
	j.updatedAt = now
}

func (j *Job) transition(next Status, now time.Time) error {
	if !j.status.CanTransitionTo(next) {
		return errs.Wrapf(ErrInvalidTransition, "%s -> %s", j.status, next)
	}
	j.status = next
	j.updatedAt = now
	return nil
}

func (j *Job) AssignID(id int64) { j.id = id }

func (j *Job) ID() int64               { return j.id }
func (j *Job) Kind() Kind              { return j.kind }
func (j *Job) Status() Status          { return j.status }
func (j *Job) Params() json.RawMessage { return j.params }
func (j *Job) Result() json.RawMessage { return j.result }
func (j *Job) ErrorCode() string       { return j.errorCode }
func (j *Job) ErrorMessage() string    { return j.errorMessage }
func (j *Job) Attempts() int           { return j.attempts }
func (j *Job) CreatedAt() time.Time    { return j.createdAt }
func (j *Job) UpdatedAt() time.Time    { return j.updatedAt }
