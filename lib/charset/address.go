package charset

import (
	"fmt"
	"strconv"
)

// OTOAAlphanumeric is the originator type of address for alphanumeric OAdC.
const OTOAAlphanumeric = "5039"

// IsNumericAddress reports whether addr consists of digits only.
func IsNumericAddress(addr string) bool {
	if addr == "" {
		return false
	}
	for i := 0; i < len(addr); i++ {
		if addr[i] < '0' || addr[i] > '9' {
			return false
		}
	}
	return true
}

// EncodeAlphanumericAddress encodes an alphanumeric originator for OTOA 5039:
// two hex digits giving the number of useful semi-octets followed by the
// packed GSM 7-bit text.
func EncodeAlphanumericAddress(addr string) string {
	septets := TextToGSM(addr)
	semiOctets := (len(septets)*7 + 3) / 4
	return fmt.Sprintf("%02X%s", semiOctets, EncodeHex(PackSeptets(septets)))
}

// DecodeAlphanumericAddress reverses EncodeAlphanumericAddress.
func DecodeAlphanumericAddress(s string) (string, error) {
	if len(s) < 2 {
		return "", fmt.Errorf("%w: address too short", ErrMalformedHex)
	}
	n, err := strconv.ParseUint(s[:2], 16, 8)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	b, err := DecodeHex(s[2:])
	if err != nil {
		return "", err
	}
	return GSMToText(UnpackSeptets(b, int(n)*4/7)), nil
}
