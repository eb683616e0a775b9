package util

import (
	"errors"
	"fmt"
	"testing"
)

func TestSessionError(t *testing.T) {
	tests := []struct {
		name string
		err  *SessionError
		want string
	}{
		{"with session", NewSessionError("abc", "send", ErrQueueFull), "session abc: send: outbound queue full"},
		{"without session", NewSessionError("", "originate", ErrNoActiveSession), "originate: no active session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("errors.Is should match the wrapped error")
			}
		})
	}
}

func TestConnectionError(t *testing.T) {
	err := NewConnectionError("127.0.0.1:4000", "register", ErrDuplicateID)
	if got, want := err.Error(), "[127.0.0.1:4000] register: duplicated session ID"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrDuplicateID) {
		t.Error("errors.Is should match ErrDuplicateID")
	}

	err = NewConnectionError("", "read", ErrSessionClosed)
	if got, want := err.Error(), "read: session closed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrNoActiveSession, true},
		{fmt.Errorf("wrapped: %w", ErrQueueFull), true},
		{ErrBufferOverflow, true},
		{ErrInvalidAddress, false},
		{ErrAuthFailed, false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestToNackCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUnsupportedOperation, "03"},
		{fmt.Errorf("%w: 12ab", ErrInvalidAddress), "06"},
		{ErrAuthRequired, "07"},
		{NewSessionError("s", "open", ErrAuthFailed), "07"},
		{ErrMalformedFrame, "02"},
		{errors.New("other"), "02"},
	}

	for _, tt := range tests {
		if got := ToNackCode(tt.err); got != tt.want {
			t.Errorf("ToNackCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
