//go:build unit

package job_test

import (
	"encoding/json"
	"testing"
	"time"

	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestJobLifecycle(t *testing.T) {
	t.Run("pending to completed", func(t *testing.T) {
		j, err := job.NewJob(job.KindOptimize, nil, now)
		require.NoError(t, err)
		assert.Equal(t, job.StatusPending, j.Status())
		assert.JSONEq(t, `{}`, string(j.Params()))

		require.NoError(t, j.Start(now.Add(time.Second)))
		require.NoError(t, j.Complete(json.RawMessage(`{"ok":true}`), 1, now.Add(2*time.Second)))
		assert.Equal(t, job.StatusCompleted, j.Status())
		assert.Equal(t, 1, j.Attempts())
		assert.Equal(t, now.Add(2*time.Second), j.UpdatedAt())
	})

	t.Run("terminal states are final", func(t *testing.T) {
		j, err := job.NewJob(job.KindExpireStale, nil, now)
		require.NoError(t, err)
		require.NoError(t, j.Start(now))
		require.NoError(t, j.Fail(string(errs.KindTimeout), "deadline exceeded", 1, now))

		err = j.Start(now)
		require.ErrorIs(t, err, job.ErrInvalidTransition)
		assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
		require.Error(t, j.Complete(nil, 1, now))
		assert.Equal(t, job.StatusFailed, j.Status())
		assert.Equal(t, "TIMEOUT", j.ErrorCode())
	})

	t.Run("pending cannot complete without running", func(t *testing.T) {
		j, err := job.NewJob(job.KindReminders, nil, now)
		require.NoError(t, err)
		require.Error(t, j.Complete(nil, 0, now))
		require.NoError(t, j.Fail("INTERNAL", "queue full", 0, now))
	})

	t.Run("delivery failures keep status", func(t *testing.T) {
		j, err := job.NewJob(job.KindDailyReport, nil, now)
		require.NoError(t, err)
		require.NoError(t, j.Start(now))
		require.NoError(t, j.Complete(nil, 1, now))
		j.RecordDeliveryFailure("amqp: channel closed", now)
		assert.Equal(t, job.StatusCompleted, j.Status())
		assert.Equal(t, "amqp: channel closed", j.ErrorMessage())
	})

	t.Run("failure keeps earlier delivery failures", func(t *testing.T) {
		j, err := job.NewJob(job.KindReminders, nil, now)
		require.NoError(t, err)
		require.NoError(t, j.Start(now))
		j.RecordDeliveryFailure("amqp: channel closed", now)
		require.NoError(t, j.Fail(string(errs.KindInternal), "boom", 1, now))
		assert.Equal(t, "boom; amqp: channel closed", j.ErrorMessage())
	})
}

func TestParseKind(t *testing.T) {
	for _, k := range job.Kinds {
		got, err := job.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := job.ParseKind("defrag")
	require.ErrorIs(t, err, job.ErrUnknownKind)
}
