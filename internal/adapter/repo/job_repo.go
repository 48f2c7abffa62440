package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scribe/internal/domain"
	"scribe/internal/infra"
	"scribe/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobStore.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

// Get fetches a job by its identifier.
func (r *JobRepositoryPG) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJob, jobID)
	var (
		job         domain.Job
		status      string
		result      []byte
		completedAt *time.Time
	)
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.UserGroup,
		&job.FileName,
		&job.FileExtension,
		&job.SourceKey,
		&status,
		&result,
		&job.ErrorMessage,
		&job.UpdatedAt,
		&completedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select job %s: %w", jobID, err)
	}
	job.Status = domain.JobStatus(status)
	if len(result) > 0 {
		job.Result = json.RawMessage(result)
	}
	job.CompletedAt = completedAt
	return &job, nil
}

// UpdateStatus writes status and optionally result/error payloads.
func (r *JobRepositoryPG) UpdateStatus(ctx context.Context, jobID string, update domain.JobUpdate) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateJobStatus,
		jobID,
		string(update.Status),
		nullableBytes(update.Result),
		update.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.JobStore = (*JobRepositoryPG)(nil)
