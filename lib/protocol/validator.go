package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-smsc/emi-smsc/lib/charset"
	"github.com/go-smsc/emi-smsc/lib/util"
)

// Validation policy for values entering frames from outside the wire
// (configuration and originated MO/SR requests):
//   - Numeric addresses: 1-16 digits
//   - Alphanumeric senders: 1-11 GSM alphabet characters
//   - NACK codes: exactly two digits
//   - Dst: 0 (delivered), 1 (buffered) or 2 (not delivered)
//   - Rsn: three digits
//   - SCTS: twelve digits in ddMMyyHHmmss form

// Validation errors
var (
	ErrEmptyValue       = errors.New("value cannot be empty")
	ErrInvalidAddress   = util.ErrInvalidAddress
	ErrInvalidNackCode  = errors.New("NACK code must be two digits")
	ErrInvalidDst       = errors.New("delivery status out of range (0-2)")
	ErrInvalidRsn       = errors.New("reason code must be three digits")
	ErrInvalidTimestamp = errors.New("invalid SCTS")
)

// Address length limits.
const (
	MaxNumericAddress      = 16
	MaxAlphanumericAddress = 11
)

// RequireNonEmpty validates that a value is not empty.
func RequireNonEmpty(value, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s: %w", fieldName, ErrEmptyValue)
	}
	return nil
}

// ValidateAddress accepts a numeric recipient address.
func ValidateAddress(addr string) error {
	if !charset.IsNumericAddress(addr) || len(addr) > MaxNumericAddress {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}

// ValidateOriginator accepts a numeric or alphanumeric originator.
func ValidateOriginator(addr string) error {
	if charset.IsNumericAddress(addr) {
		return ValidateAddress(addr)
	}
	n := 0
	for _, r := range addr {
		if !charset.InAlphabet(r) {
			return fmt.Errorf("%w: %q is outside the GSM alphabet", ErrInvalidAddress, r)
		}
		n++
	}
	if n == 0 || n > MaxAlphanumericAddress {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}

// ValidateNackCode validates a two digit NACK error code.
func ValidateNackCode(code string) error {
	if len(code) != 2 || !isDigits(code) {
		return fmt.Errorf("%w: got %q", ErrInvalidNackCode, code)
	}
	return nil
}

// FormatNackCode renders an integer NACK code with two digits.
func FormatNackCode(code int) string {
	return fmt.Sprintf("%02d", code)
}

// ValidateDst validates a delivery status.
func ValidateDst(dst int) error {
	if dst < DstDelivered || dst > DstNotDelivered {
		return fmt.Errorf("%w: got %d", ErrInvalidDst, dst)
	}
	return nil
}

// ValidateRsn validates a three digit reason code.
func ValidateRsn(rsn string) error {
	if len(rsn) != 3 || !isDigits(rsn) {
		return fmt.Errorf("%w: got %q", ErrInvalidRsn, rsn)
	}
	return nil
}

// FormatSCTS renders t in the SCTS layout.
func FormatSCTS(t time.Time) string {
	return t.Format(SCTSLayout)
}

// ParseSCTS parses an SCTS field in local time.
func ParseSCTS(s string) (time.Time, error) {
	if len(s) != len(SCTSLayout) || !isDigits(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	t, err := time.ParseInLocation(SCTSLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return t, nil
}
