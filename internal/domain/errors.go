package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrMalformedMessage = errors.New("malformed message")
	ErrNoSourceKey      = errors.New("no source key")
	ErrUndecodable      = errors.New("source undecodable")
	ErrProviderFailure  = errors.New("provider failure")
	ErrLockHeld         = errors.New("job lock held by another worker")
)
