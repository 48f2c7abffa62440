package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"scribe/internal/infra"
	"scribe/internal/providers/llm"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoffUnit = time.Second

	// statusOverloaded is Anthropic's non-standard overload status.
	statusOverloaded = 529
)

// Params are the sampling parameters for one generation.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures a Client.
type Options struct {
	Completer   llm.Completer
	Model       string
	MaxAttempts int
	BackoffUnit time.Duration
	Sleep       SleepFunc
	Logger      *infra.Logger
}

// Client wraps a provider with the rate-limit retry policy.
type Client struct {
	completer   llm.Completer
	model       string
	maxAttempts int
	unit        time.Duration
	sleep       SleepFunc
	logger      *infra.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.Completer == nil {
		return nil, errors.New("generation: completer is required")
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	unit := opts.BackoffUnit
	if unit <= 0 {
		unit = DefaultBackoffUnit
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		completer:   opts.Completer,
		model:       opts.Model,
		maxAttempts: attempts,
		unit:        unit,
		sleep:       sleep,
		logger:      logger,
	}, nil
}

// Provider names the underlying completer.
func (c *Client) Provider() string { return c.completer.Name() }

// Generate calls the provider at most MaxAttempts times. Only rate limits are
// retried, after sleeping unit*2^attempt; the last attempt is not followed by
// a sleep. Every failure is returned as *Error.
func (c *Client) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	req := llm.Request{
		Prompt:      prompt,
		Model:       c.model,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		text, err := c.completer.Complete(ctx, req)
		if err == nil {
			c.logger.Info().
				Str("provider", c.completer.Name()).
				Int("attempt", attempt+1).
				Int("chars", len(text)).
				Msg("generation: response received")
			return text, nil
		}
		lastErr = err

		kind := classify(err)
		if kind != KindRateLimit {
			genErr := &Error{Kind: kind, Message: message(kind, err), Attempts: attempt + 1, Err: err}
			c.logger.Error().Err(err).
				Str("kind", string(kind)).
				Int("attempt", attempt+1).
				Msg("generation: call failed")
			return "", genErr
		}

		c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("generation: rate limited")
		if attempt == c.maxAttempts-1 {
			break
		}
		wait := c.unit * time.Duration(1<<attempt)
		if err := c.sleep(ctx, wait); err != nil {
			return "", &Error{Kind: KindUnexpected, Message: message(KindUnexpected, err), Attempts: attempt + 1, Err: err}
		}
	}

	return "", &Error{
		Kind:     KindRateLimit,
		Message:  fmt.Sprintf("Rate limit dépassé après %d tentatives", c.maxAttempts),
		Attempts: c.maxAttempts,
		Err:      lastErr,
	}
}

func classify(err error) Kind {
	if errors.Is(err, llm.ErrNotConfigured) {
		return KindNotConfigured
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.Type == "rate_limit_error",
			apiErr.Type == "RESOURCE_EXHAUSTED":
			return KindRateLimit
		case apiErr.StatusCode == statusOverloaded,
			apiErr.StatusCode == http.StatusServiceUnavailable,
			apiErr.Type == "overloaded_error",
			apiErr.Type == "UNAVAILABLE",
			containsFold(apiErr.Message, "overloaded"):
			return KindOverloaded
		default:
			return KindAPI
		}
	}
	if containsFold(err.Error(), "overloaded") {
		return KindOverloaded
	}
	return KindUnexpected
}

func message(kind Kind, err error) string {
	switch kind {
	case KindOverloaded:
		return msgOverloaded
	case KindNotConfigured:
		return msgNotConfigured
	case KindAPI:
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fmt.Sprintf("Erreur API %s: %s", apiErr.Provider, apiErr.Message)
		}
		return "Erreur API: " + err.Error()
	default:
		return "Erreur inattendue: " + err.Error()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
