// Package redisstore holds the Redis-backed adapters: the expiring result
// store and the per-job processing lock.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scribe/internal/domain"
)

const resultPrefix = "result:"

// ResultStore keeps completed artifacts under result:{job_id} with a TTL.
type ResultStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewResultStore(client redis.UniversalClient) *ResultStore {
	return &ResultStore{client: client, prefix: resultPrefix, now: time.Now}
}

// Put stores record, replacing any earlier result for the same job.
func (s *ResultStore) Put(ctx context.Context, record domain.ResultRecord, ttl time.Duration) error {
	if record.JobID == "" {
		return errors.New("result job id cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("result ttl must be positive, got %s", ttl)
	}
	record = withExpiry(record, ttl, s.now())
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+record.JobID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the stored record for jobID.
func (s *ResultStore) Get(ctx context.Context, jobID string) (domain.ResultRecord, error) {
	data, err := s.client.Get(ctx, s.prefix+jobID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ResultRecord{}, domain.ErrNotFound
		}
		return domain.ResultRecord{}, fmt.Errorf("redis get: %w", err)
	}
	var record domain.ResultRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.ResultRecord{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return record, nil
}

// withExpiry sets the absolute expiry, in epoch seconds, when the caller left
// it unset.
func withExpiry(record domain.ResultRecord, ttl time.Duration, now time.Time) domain.ResultRecord {
	if record.TTL == 0 {
		record.TTL = now.Add(ttl).Unix()
	}
	return record
}

var _ domain.ResultStore = (*ResultStore)(nil)
