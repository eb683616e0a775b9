package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var ucs2 = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// legacyTable is the 256-entry Latin table some EMI deployments apply to
// UCS-2 payloads. It is ISO 8859-16, which keeps ASCII and remaps a handful
// of Latin-1 positions to currency symbols and Romanian diacritics.
var legacyTable = charmap.ISO8859_16

// UnicodeEncode encodes text as UCS-2 big-endian hex. Runes outside the
// Basic Multilingual Plane encode as '?'.
func UnicodeEncode(text string) string {
	return encodeUCS2(text, false)
}

// UnicodeDecode decodes UCS-2 big-endian hex.
func UnicodeDecode(s string) (string, error) {
	return decodeUCS2(s, false)
}

func encodeUCS2(text string, legacy bool) string {
	mapped := strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return Substitute
		}
		if legacy && r < 0x100 {
			return legacyTable.DecodeByte(byte(r))
		}
		return r
	}, text)

	b, err := ucs2.NewEncoder().String(mapped)
	if err != nil {
		// Only surrogate halves fail; strings.Map already replaced invalid runes.
		return ""
	}
	return EncodeHex([]byte(b))
}

func decodeUCS2(s string, legacy bool) (string, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: UCS-2 payload of %d bytes", ErrMalformedHex, len(b))
	}
	text, err := ucs2.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	if !legacy {
		return string(text), nil
	}
	return strings.Map(func(r rune) rune {
		if c, ok := legacyTable.EncodeRune(r); ok {
			return rune(c)
		}
		return r
	}, string(text)), nil
}
