// Package orchestrator runs one processing pass per queue message: load the
// job, meter it, generate, parse and store the artifact, and record status.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scribe/internal/credit"
	"scribe/internal/domain"
	"scribe/internal/generation"
	"scribe/internal/infra"
	"scribe/internal/parser"
	"scribe/internal/profile"
)

const (
	msgJobNotFound  = "Tâche introuvable"
	msgNoSourceKey  = "Aucune clé de fichier source"
	msgSourceFailed = "Impossible de lire le fichier source"
	msgUnexpected   = "Erreur inattendue"
)

type Options struct {
	Profile   profile.Profile
	Jobs      domain.JobStore
	Gate      CreditGate
	Generator Generator
	Source    SourceLoader
	Sink      ResultSink
	// Optional.
	Locker     JobLocker
	DeadLetter DeadLetter
	// GenerationTimeout bounds one Generate call including its retries.
	GenerationTimeout time.Duration
	Logger            *infra.Logger
}

type Orchestrator struct {
	profile    profile.Profile
	jobs       domain.JobStore
	gate       CreditGate
	generator  Generator
	source     SourceLoader
	sink       ResultSink
	locker     JobLocker
	deadLetter DeadLetter
	genTimeout time.Duration
	logger     *infra.Logger
}

func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Jobs == nil:
		return nil, errors.New("orchestrator: job store is required")
	case opts.Generator == nil:
		return nil, errors.New("orchestrator: generator is required")
	case opts.Source == nil:
		return nil, errors.New("orchestrator: source loader is required")
	case opts.Sink == nil:
		return nil, errors.New("orchestrator: result sink is required")
	case opts.Profile.RequireCredit && opts.Gate == nil:
		return nil, errors.New("orchestrator: credit gate is required for a metered variant")
	}
	if opts.Logger == nil {
		opts.Logger = infra.NopLogger()
	}
	return &Orchestrator{
		profile:    opts.Profile,
		jobs:       opts.Jobs,
		gate:       opts.Gate,
		generator:  opts.Generator,
		source:     opts.Source,
		sink:       opts.Sink,
		locker:     opts.Locker,
		deadLetter: opts.DeadLetter,
		genTimeout: opts.GenerationTimeout,
		logger:     opts.Logger,
	}, nil
}

// ProcessBatch handles deliveries one after another. A failing message does
// not stop the batch; its id is reported in Failures when it should be
// redelivered.
func (o *Orchestrator) ProcessBatch(ctx context.Context, deliveries []Delivery) BatchResult {
	out := BatchResult{Results: make([]Result, 0, len(deliveries))}
	for _, d := range deliveries {
		res := o.Handle(ctx, d)
		out.Results = append(out.Results, res)
		if res.Outcome.Redeliver() {
			out.Failures = append(out.Failures, d.MessageID)
		}
	}
	return out
}

// Handle runs one processing pass for a delivery. It never panics on bad
// input and always returns an explicit outcome.
func (o *Orchestrator) Handle(ctx context.Context, d Delivery) Result {
	res := Result{MessageID: d.MessageID}
	log := o.logger.With().
		Str("message_id", d.MessageID).
		Str("variant", string(o.profile.Variant)).
		Str("attempt_id", uuid.NewString()).
		Logger()

	msg, err := domain.DecodeQueueMessage(d.Body)
	if err != nil {
		log.Error().Err(err).Msg("orchestrator: dropping malformed message")
		if o.deadLetter != nil {
			if dlErr := o.deadLetter.PublishDeadLetter(ctx, d.Body, err.Error()); dlErr != nil {
				log.Warn().Err(dlErr).Msg("orchestrator: dead-letter publish failed")
			}
		}
		res.Outcome, res.Err = Dropped, err
		return res
	}
	res.JobID = msg.JobID
	log = log.With().Str("job_id", msg.JobID).Logger()

	if o.locker != nil {
		release, err := o.locker.Acquire(ctx, msg.JobID)
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			log.Info().Msg("orchestrator: job in progress elsewhere, deferring")
			res.Outcome, res.Err = Retry, err
			return res
		case err != nil:
			log.Warn().Err(err).Msg("orchestrator: job lock unavailable, continuing without it")
		default:
			defer release(context.WithoutCancel(ctx))
		}
	}

	res.Outcome, res.Err = o.process(ctx, &log, msg)
	ev := log.Info()
	if res.Err != nil {
		ev = log.Warn().Err(res.Err)
	}
	ev.Str("outcome", res.Outcome.String()).Msg("orchestrator: message handled")
	return res
}

func (o *Orchestrator) process(ctx context.Context, log *infra.Logger, msg domain.QueueMessage) (Outcome, error) {
	job, err := o.jobs.Get(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			o.markFailed(ctx, log, msg.JobID, msgJobNotFound)
			return Failed, fmt.Errorf("job %s: %w", msg.JobID, err)
		}
		return o.fail(ctx, log, msg.JobID, err)
	}

	userID := job.UserID
	if msg.KnownUserID() {
		userID = msg.UserID
	}
	*log = log.With().Str("user_id", userID).Bool("regeneration", msg.IsRegeneration).Logger()

	if err := o.jobs.UpdateStatus(ctx, job.ID, domain.JobUpdate{Status: o.profile.InProgress}); err != nil {
		return o.fail(ctx, log, job.ID, fmt.Errorf("mark %s: %w", o.profile.InProgress, err))
	}

	if o.profile.RequireCredit && !msg.IsRegeneration {
		remaining, err := o.gate.TryConsume(ctx, userID, job.ID)
		if err != nil {
			if denial, ok := credit.AsDenial(err); ok {
				o.markFailed(ctx, log, job.ID, denial.Message)
				return Denied, err
			}
			o.markFailed(ctx, log, job.ID, fmt.Sprintf("%s: %v", msgUnexpected, err))
			return Retry, err
		}
		log.Info().Int("remaining", remaining).Msg("orchestrator: credit consumed")
	}

	text, err := o.sourceText(ctx, job, msg)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSourceKey):
			o.markFailed(ctx, log, job.ID, msgNoSourceKey)
			return Failed, err
		case generation.IsTimeout(err):
			return o.fail(ctx, log, job.ID, err)
		default:
			o.markFailed(ctx, log, job.ID, fmt.Sprintf("%s: %v", msgSourceFailed, err))
			return Failed, err
		}
	}

	raw, err := o.generate(ctx, o.profile.BuildPrompt(job, msg, text))
	if err != nil {
		var genErr *generation.Error
		if errors.As(err, &genErr) {
			o.markFailed(ctx, log, job.ID, genErr.Message)
			if genErr.Transient() || ctx.Err() != nil {
				return Retry, err
			}
			return Failed, err
		}
		return o.fail(ctx, log, job.ID, err)
	}

	artifact := parser.Parse(o.profile.Schema, raw)
	key, err := o.sink.Persist(ctx, job, userID, artifact)
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: result persistence incomplete")
	}
	if key != "" {
		*log = log.With().Str("storage_key", key).Logger()
	}

	payload, err := artifact.MarshalJSON()
	if err != nil {
		return o.fail(ctx, log, job.ID, err)
	}
	if err := o.jobs.UpdateStatus(ctx, job.ID, domain.JobUpdate{
		Status: domain.JobStatusCompleted,
		Result: payload,
	}); err != nil {
		log.Error().Err(err).Msg("orchestrator: mark completed failed")
		return Retry, err
	}
	return Completed, nil
}

func (o *Orchestrator) sourceText(ctx context.Context, job *domain.Job, msg domain.QueueMessage) (string, error) {
	if strings.TrimSpace(msg.TranscriptText) != "" {
		return msg.TranscriptText, nil
	}
	if strings.TrimSpace(job.SourceKey) == "" {
		return "", domain.ErrNoSourceKey
	}
	return o.source.Load(ctx, job.SourceKey, job.FileExtensionOr(o.profile.FileExtension))
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	if o.genTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.genTimeout)
		defer cancel()
	}
	return o.generator.Generate(ctx, prompt, o.profile.Params)
}

// fail records an unclassified error. Only timeouts and interrupted passes
// are redelivered.
func (o *Orchestrator) fail(ctx context.Context, log *infra.Logger, jobID string, err error) (Outcome, error) {
	o.markFailed(ctx, log, jobID, fmt.Sprintf("%s: %v", msgUnexpected, err))
	if generation.IsTimeout(err) || ctx.Err() != nil {
		return Retry, err
	}
	return Failed, err
}

// markFailed writes FAILED best-effort; the outcome is decided by the caller.
func (o *Orchestrator) markFailed(ctx context.Context, log *infra.Logger, jobID, message string) {
	ctx = context.WithoutCancel(ctx)
	err := o.jobs.UpdateStatus(ctx, jobID, domain.JobUpdate{Status: domain.JobStatusFailed, ErrorMessage: message})
	if err != nil {
		log.Error().Err(err).Str("error_message", message).Msg("orchestrator: mark failed failed")
	}
}
