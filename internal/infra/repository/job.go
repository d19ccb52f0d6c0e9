package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/infra"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var jobColumns = []string{
	"id", "kind", "status", "params", "result",
	"error_code", "error_message", "attempts", "created_at", "updated_at",
}

type JobRepository struct {
	db DBTX
}

func NewJobRepository(db DBTX) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j *job.Job) (int64, error) {
	q := psql.Insert("jobs").
		Columns(jobColumns[1:]...).
		Values(
			j.Kind().String(),
			j.Status().String(),
			[]byte(j.Params()),
			[]byte(j.Result()),
			j.ErrorCode(),
			j.ErrorMessage(),
			j.Attempts(),
			j.CreatedAt(),
			j.UpdatedAt(),
		).
		Suffix("RETURNING id")

	var id int64
	if err := queryRow(ctx, r.db, q).Scan(&id); err != nil {
		return 0, infra.WrapRepoErr("failed to create job", err)
	}
	return id, nil
}

func (r *JobRepository) FindByID(ctx context.Context, id int64) (*job.Job, error) {
	q := psql.Select(jobColumns...).From("jobs").Where(squirrel.Eq{"id": id})
	j, err := scanJob(queryRow(ctx, r.db, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("job not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find job", err)
	}
	return j, nil
}

func (r *JobRepository) Update(ctx context.Context, j *job.Job) error {
	q := psql.Update("jobs").SetMap(map[string]any{
		"status":        j.Status().String(),
		"result":        []byte(j.Result()),
		"error_code":    j.ErrorCode(),
		"error_message": j.ErrorMessage(),
		"attempts":      j.Attempts(),
		"updated_at":    j.UpdatedAt(),
	}).Where(squirrel.Eq{"id": j.ID()})

	tag, err := exec(ctx, r.db, q)
	if err != nil {
		return infra.WrapRepoErr("failed to update job", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("job not found")
	}
	return nil
}

// List returns newest first; limit <= 0 means no limit.
func (r *JobRepository) List(ctx context.Context, limit int) ([]*job.Job, error) {
	q := psql.Select(jobColumns...).From("jobs").OrderBy("id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list jobs", err)
	}
	jobs, err := collect(rows, scanJob)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan jobs", err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		id                   int64
		kind, status         string
		params, result       []byte
		errCode, errMessage  string
		attempts             int
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &kind, &status, &params, &result, &errCode, &errMessage, &attempts, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	k, err := job.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return job.ReconstructJob(
		id,
		k,
		job.Status(status),
		json.RawMessage(params),
		json.RawMessage(result),
		errCode,
		errMessage,
		attempts,
		createdAt.UTC(),
		updatedAt.UTC(),
	), nil
}
