package protocol

import (
	"fmt"
	"strings"
)

// Checksum returns the modulo-256 sum of the bytes strictly between the
// start marker and the final three characters (checksum and end marker).
func Checksum(frame string) byte {
	var sum byte
	for i := 1; i < len(frame)-3; i++ {
		sum += frame[i]
	}
	return sum
}

// ChecksumHex renders Checksum as two uppercase hex digits.
func ChecksumHex(frame string) string {
	return fmt.Sprintf("%02X", Checksum(frame))
}

// ApplyChecksum replaces the two characters before the end marker with the
// computed checksum. Frames that already carry a checksum are recomputed.
func ApplyChecksum(template string) string {
	if len(template) < 4 {
		return template
	}
	cs := ChecksumHex(template)
	return template[:len(template)-3] + cs + template[len(template)-1:]
}

// ApplyLength replaces the header length placeholder with the five digit
// count of characters between the markers.
func ApplyLength(template string) string {
	return strings.Replace(template, LengthPlaceholder, fmt.Sprintf("%05d", len(template)-2), 1)
}

// Finalize applies length then checksum to a frame template.
func Finalize(template string) string {
	return ApplyChecksum(ApplyLength(template))
}
