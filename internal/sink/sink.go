// Package sink persists completed artifacts to the results bucket and the
// expiring result store.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scribe/internal/domain"
	"scribe/internal/infra"
	"scribe/internal/profile"
)

const (
	DefaultTTL  = 30 * 24 * time.Hour
	contentType = "application/json; charset=utf-8"
)

type Options struct {
	Profile profile.Profile
	Blobs   domain.BlobStore
	// Results may be nil when no result store is configured.
	Results domain.ResultStore
	TTL     time.Duration
	Now     func() time.Time
	Logger  *infra.Logger
}

type Sink struct {
	profile profile.Profile
	blobs   domain.BlobStore
	results domain.ResultStore
	ttl     time.Duration
	now     func() time.Time
	logger  *infra.Logger
}

func New(opts Options) (*Sink, error) {
	if opts.Blobs == nil {
		return nil, errors.New("sink: blob store is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = infra.NopLogger()
	}
	return &Sink{
		profile: opts.Profile,
		blobs:   opts.Blobs,
		results: opts.Results,
		ttl:     opts.TTL,
		now:     opts.Now,
		logger:  opts.Logger,
	}, nil
}

// Persist writes the artifact object and then the result record. Both writes
// are attempted; their errors are joined. The returned key is empty when the
// object write failed.
func (s *Sink) Persist(ctx context.Context, job *domain.Job, userID string, artifact domain.Artifact) (string, error) {
	now := s.now().UTC()
	// Not json.Marshal, which HTML-escapes the output again.
	payload, err := artifact.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("sink: marshal artifact: %w", err)
	}

	var errs []error
	key, err := s.blobs.Write(ctx, s.profile.BlobKey(job, userID, now), payload, contentType)
	if err != nil {
		errs = append(errs, fmt.Errorf("sink: write object: %w", err))
		key = ""
	} else {
		s.logger.Info().Str("job_id", job.ID).Str("key", key).Msg("sink: object written")
	}

	if s.results != nil {
		record := domain.ResultRecord{
			JobID:      job.ID,
			UserID:     userID,
			UserGroup:  job.UserGroup,
			Variant:    s.profile.Variant,
			Artifact:   artifact,
			StorageKey: key,
			CreatedAt:  now,
			TTL:        now.Add(s.ttl).Unix(),
		}
		if err := s.results.Put(ctx, record, s.ttl); err != nil {
			errs = append(errs, fmt.Errorf("sink: put result: %w", err))
		}
	}
	return key, errors.Join(errs...)
}
