package generation

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindRateLimit     Kind = "rate_limit"
	KindOverloaded    Kind = "overloaded"
	KindAPI           Kind = "api_error"
	KindUnexpected    Kind = "unexpected"
	KindNotConfigured Kind = "not_configured"
)

const (
	msgOverloaded    = "IA temporairement surchargée. Merci de réessayer dans quelques instants."
	msgNotConfigured = "API de génération non configurée"
)

// Error is the terminal result of Generate. Message is safe to show to users.
type Error struct {
	Kind     Kind
	Message  string
	Attempts int
	Err      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether redelivering the job may succeed: rate limits and
// timeouts.
func (e *Error) Transient() bool {
	if e == nil {
		return false
	}
	return e.Kind == KindRateLimit || IsTimeout(e.Err)
}

// IsTimeout reports deadline and network timeout errors.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
