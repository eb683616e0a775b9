package charset

import (
	"fmt"
	"strings"
)

// Format identifies the character set of an SMS payload.
type Format int

const (
	// GSM8 is one GSM 03.38 code point per octet. It is the default.
	GSM8 Format = iota
	// GSM7 is GSM 03.38 septets packed into octets.
	GSM7
	// Unicode is UCS-2 big-endian.
	Unicode
)

// String returns the lowercase format name used in configuration and the API.
func (f Format) String() string {
	switch f {
	case GSM8:
		return "gsm8"
	case GSM7:
		return "gsm7"
	case Unicode:
		return "unicode"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name. The empty string yields GSM8.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gsm8", "gsm":
		return GSM8, nil
	case "gsm7":
		return GSM7, nil
	case "unicode", "ucs2", "ucs-2":
		return Unicode, nil
	default:
		return GSM8, fmt.Errorf("unknown message format %q", s)
	}
}

// Payload is text together with its wire form.
type Payload struct {
	Text   string
	Format Format
	Hex    string
	// Septets is the septet count for GSM7 payloads.
	Septets int
}

// Bits returns the NB (number of bits) value for the payload.
func (p Payload) Bits() int {
	if p.Format == GSM7 {
		return p.Septets * 7
	}
	return len(p.Hex) * 4
}

// Codec selects the UCS-2 table variant. The zero value is plain UCS-2.
type Codec struct {
	// LegacyLatin routes code points 0-255 through the ISO 8859-16 table
	// on encode and back on decode.
	LegacyLatin bool
}

// Encode produces the wire form of text in the given format.
func (c Codec) Encode(text string, format Format) Payload {
	p := Payload{Text: text, Format: format}
	switch format {
	case GSM7:
		p.Hex, p.Septets = TextToGSM7Hex(text)
	case Unicode:
		p.Hex = encodeUCS2(text, c.LegacyLatin)
	default:
		p.Format = GSM8
		p.Hex = TextToGSM8Hex(text)
	}
	return p
}

// Decode recovers text from a hex payload. septets is only used for GSM7.
func (c Codec) Decode(hex string, format Format, septets int) (string, error) {
	switch format {
	case GSM7:
		return GSM7HexToText(hex, septets)
	case Unicode:
		return decodeUCS2(hex, c.LegacyLatin)
	default:
		return GSM8ToText(hex)
	}
}

// XSerDCS is the extra-services TLV type carrying the data coding scheme.
const XSerDCS = 0x02

// ParseXSer splits an extra-services field into its TLV entries keyed by
// type. Later duplicates win.
func ParseXSer(xser string) (map[byte][]byte, error) {
	raw, err := DecodeHex(xser)
	if err != nil {
		return nil, err
	}
	out := make(map[byte][]byte)
	for i := 0; i < len(raw); {
		if i+2 > len(raw) {
			return out, fmt.Errorf("%w: truncated XSer header at %d", ErrMalformedHex, i)
		}
		typ, n := raw[i], int(raw[i+1])
		i += 2
		if i+n > len(raw) {
			return out, fmt.Errorf("%w: XSer type %02X wants %d bytes", ErrMalformedHex, typ, n)
		}
		out[typ] = raw[i : i+n]
		i += n
	}
	return out, nil
}

// IsUnicodeDCS reports whether a data coding scheme signals 16-bit data:
// 08-0B, 18-1B, 28-2B or 38-3B.
func IsUnicodeDCS(dcs byte) bool {
	return dcs&0xCC == 0x08
}

// isSeptetDCS reports whether a data coding scheme signals the 7-bit alphabet.
func isSeptetDCS(dcs byte) bool {
	if dcs&0xF0 == 0xF0 {
		return dcs&0x04 == 0
	}
	return dcs&0xCC == 0x00
}

// DetectFormat derives the payload format from the XSer field and the MT
// message type. A 16-bit DCS selects Unicode; a 7-bit DCS on a transparent
// (MT 4) message selects GSM7; everything else is GSM8.
func DetectFormat(xser, mt string) Format {
	if xser == "" {
		return GSM8
	}
	tlv, err := ParseXSer(xser)
	dcs, ok := tlv[XSerDCS]
	if err != nil && !ok {
		return detectFormatLoose(xser)
	}
	if !ok || len(dcs) == 0 {
		return GSM8
	}
	switch {
	case IsUnicodeDCS(dcs[0]):
		return Unicode
	case mt == "4" && isSeptetDCS(dcs[0]):
		return GSM7
	default:
		return GSM8
	}
}

// detectFormatLoose scans a field that is not valid TLV for any of the
// 16-bit DCS markers.
func detectFormatLoose(xser string) Format {
	upper := strings.ToUpper(xser)
	for _, hi := range []byte{0x00, 0x10, 0x20, 0x30} {
		for lo := byte(0x08); lo <= 0x0B; lo++ {
			if strings.Contains(upper, fmt.Sprintf("0201%02X", hi|lo)) {
				return Unicode
			}
		}
	}
	return GSM8
}
