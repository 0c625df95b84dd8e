package domain

import "errors"

var (
	// ErrInvalidConfig is the only fatal error; it is returned before any dispatch.
	ErrInvalidConfig = errors.New("invalid config")

	ErrAgentTimeout       = errors.New("timeout")
	ErrAgentCancelled     = errors.New("cancelled")
	ErrAgentProvider      = errors.New("provider error")
	ErrMalformedOutput    = errors.New("malformed output")
	ErrInsufficientQuorum = errors.New("insufficient quorum")
)
