// Package charset converts SMS text to and from the hexadecimal payload
// representations carried in EMI/UCP frames: GSM 03.38 8-bit (one octet per
// character), GSM 03.38 7-bit packed septets and UCS-2 big-endian.
//
// All functions are pure. Characters that cannot be represented in the target
// alphabet are substituted rather than reported as errors.
package charset

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedHex indicates a hexadecimal field of odd length or with a
// character outside 0-9, A-F, a-f.
var ErrMalformedHex = errors.New("malformed hex")

// DecodeHex converts pairs of hex digits to bytes. Both cases are accepted.
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrMalformedHex, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	return b, nil
}

// EncodeHex renders bytes as uppercase hex digits, the form used on the wire.
func EncodeHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// IRAToText decodes an IRA (ASCII) hex field such as a UCP60 password.
func IRAToText(s string) (string, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TextToIRA encodes ASCII text as an IRA hex field.
func TextToIRA(text string) string {
	return EncodeHex([]byte(text))
}
