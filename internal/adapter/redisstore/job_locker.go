package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"scribe/internal/domain"
	"scribe/internal/infra"
)

// JobLocker serialises processing of a single job across workers so a
// redelivered message cannot run alongside the original attempt.
type JobLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *infra.Logger
}

func NewJobLocker(client redis.UniversalClient, ttl time.Duration, logger *infra.Logger) *JobLocker {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &JobLocker{locker: redislock.New(client), ttl: ttl, logger: logger}
}

// Acquire takes lock:job:{id}. It returns domain.ErrLockHeld when another
// worker owns it. The returned release func never fails the caller.
func (l *JobLocker) Acquire(ctx context.Context, jobID string) (func(context.Context), error) {
	key := fmt.Sprintf("lock:job:%s", jobID)
	lock, err := l.locker.Obtain(ctx, key, l.ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, domain.ErrLockHeld
		}
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}
	return func(ctx context.Context) {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn().Err(err).Str("job_id", jobID).Msg("worker: release job lock failed")
		}
	}, nil
}
