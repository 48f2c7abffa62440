package domain

import (
	"context"
	"time"
)

// JobStore reads and updates job records.
type JobStore interface {
	Get(ctx context.Context, jobID string) (*Job, error)
	UpdateStatus(ctx context.Context, jobID string, update JobUpdate) error
}

// CreditLedger applies an atomic conditional decrement keyed by job so a
// redelivered job is charged at most once.
type CreditLedger interface {
	Debit(ctx context.Context, userID, jobID string) (CreditDebit, error)
}

// ResultStore keeps expiring copies of completed artifacts.
type ResultStore interface {
	Put(ctx context.Context, record ResultRecord, ttl time.Duration) error
}

// BlobStore reads and writes opaque objects by key.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}
