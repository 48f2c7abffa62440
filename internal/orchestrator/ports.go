package orchestrator

import (
	"context"

	"scribe/internal/domain"
	"scribe/internal/generation"
)

// CreditGate consumes one credit for a billable pass.
type CreditGate interface {
	TryConsume(ctx context.Context, userID, jobID string) (int, error)
}

// Generator turns a prompt into raw model output.
type Generator interface {
	Generate(ctx context.Context, prompt string, params generation.Params) (string, error)
}

// SourceLoader fetches and decodes the uploaded transcript.
type SourceLoader interface {
	Load(ctx context.Context, key, fileExtension string) (string, error)
}

// ResultSink persists a completed artifact and returns its object key.
type ResultSink interface {
	Persist(ctx context.Context, job *domain.Job, userID string, artifact domain.Artifact) (string, error)
}

// JobLocker guards a job against concurrent passes.
type JobLocker interface {
	Acquire(ctx context.Context, jobID string) (func(context.Context), error)
}

// DeadLetter receives message bodies that can never be processed.
type DeadLetter interface {
	PublishDeadLetter(ctx context.Context, body []byte, reason string) error
}
