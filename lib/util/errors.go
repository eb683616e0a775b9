// Package util provides common utilities for the EMI/UCP SMSC simulator.
// This includes the shared error taxonomy and the mapping of errors onto
// EMI NACK error codes.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for EMI/UCP operations.
// Where an error is answered on the wire, the doc names the NACK code.
var (
	// ErrMalformedFrame indicates a frame is missing fields its operation
	// requires or carries an undecodable field.
	// Maps to NACK 02 (syntax error) when answered at all.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnsupportedOperation indicates an operation type this SMSC does not serve.
	// Maps to NACK 03.
	ErrUnsupportedOperation = errors.New("operation not supported")

	// ErrInvalidAddress indicates an empty or unusable recipient address.
	// Maps to NACK 06 (AdC invalid).
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAuthRequired indicates a submit arrived before a successful session open.
	// Maps to NACK 07.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthFailed indicates the large account or password did not match.
	// Maps to NACK 07.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBufferOverflow indicates a chunk did not fit in a frame buffer and was dropped.
	ErrBufferOverflow = errors.New("buffer overflow")

	// ErrNoActiveSession indicates an originated MO or SR found no connected client.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateID indicates a session ID already exists.
	ErrDuplicateID = errors.New("duplicated session ID")

	// ErrSessionClosed indicates the session has been closed.
	ErrSessionClosed = errors.New("session closed")

	// ErrQueueFull indicates a session's outbound queue cannot take more frames.
	ErrQueueFull = errors.New("outbound queue full")
)

// SessionError wraps an error with session context.
// Use this when an error occurs during session operations.
type SessionError struct {
	SessionID string // The session ID where the error occurred
	Operation string // The operation being performed (e.g., "originate", "enqueue")
	Err       error  // The underlying error
}

// NewSessionError creates a new SessionError with context.
func NewSessionError(sessionID, operation string, err error) *SessionError {
	return &SessionError{
		SessionID: sessionID,
		Operation: operation,
		Err:       err,
	}
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("session %s: %s: %v", e.SessionID, e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As support.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// ConnectionError wraps an error with connection context.
// Use this when an error occurs at the connection level.
type ConnectionError struct {
	RemoteAddr string // Remote address of the connection
	Operation  string // The operation being performed
	Err        error  // The underlying error
}

// NewConnectionError creates a new ConnectionError with context.
func NewConnectionError(remoteAddr, operation string, err error) *ConnectionError {
	return &ConnectionError{
		RemoteAddr: remoteAddr,
		Operation:  operation,
		Err:        err,
	}
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.RemoteAddr == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.RemoteAddr, e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As support.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the condition may clear on its own,
// for example when a client connects or a queue drains.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrQueueFull) ||
		errors.Is(err, ErrBufferOverflow)
}

// ToNackCode converts a sentinel error to a two digit EMI NACK error code.
// Returns "02" for unknown errors.
func ToNackCode(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedOperation):
		return "03"
	case errors.Is(err, ErrInvalidAddress):
		return "06"
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrAuthFailed):
		return "07"
	default:
		return "02"
	}
}
