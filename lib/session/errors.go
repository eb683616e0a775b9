package session

import (
	"errors"
)

// Session configuration validation errors.
var (
	// ErrInvalidBehavior indicates an unknown MT behaviour.
	ErrInvalidBehavior = errors.New("invalid MT behavior: must be ack, nack or noreply")

	// ErrInvalidNackCode indicates a NACK code outside 0-99.
	ErrInvalidNackCode = errors.New("invalid NACK code: must be 0-99")

	// ErrInvalidDelay indicates a negative status report delay.
	ErrInvalidDelay = errors.New("invalid status report delay: cannot be negative")

	// ErrInvalidBufferSize indicates a non-positive buffer size.
	ErrInvalidBufferSize = errors.New("invalid buffer size: must be positive")
)
