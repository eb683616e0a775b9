package charset

import "strings"

const (
	// EscapeByte introduces a character from the extension table.
	EscapeByte = 0x1B

	// Substitute is produced when decoding a byte without a mapping.
	Substitute = '?'

	// placeholderByte is emitted for characters absent from both tables.
	placeholderByte = 0x2E
)

// gsmDefault is the GSM 03.38 default alphabet. The escape slot holds 0.
var gsmDefault = [128]rune{
	'@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r', 'Å', 'å',
	'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ', 0, 'Æ', 'æ', 'ß', 'É',
	' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	'¡', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', 'Ä', 'Ö', 'Ñ', 'Ü', '§',
	'¿', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', 'ä', 'ö', 'ñ', 'ü', 'à',
}

// gsmExtension is the GSM 03.38 extension table reached through EscapeByte.
var gsmExtension = map[byte]rune{
	0x0A: '\f',
	0x14: '^',
	0x28: '{',
	0x29: '}',
	0x2F: '\\',
	0x3C: '[',
	0x3D: '~',
	0x3E: ']',
	0x40: '|',
	0x65: '€',
}

var (
	defaultIndex   = make(map[rune]byte, len(gsmDefault))
	extensionIndex = make(map[rune]byte, len(gsmExtension))
)

func init() {
	for i, r := range gsmDefault {
		if i == EscapeByte {
			continue
		}
		defaultIndex[r] = byte(i)
	}
	for b, r := range gsmExtension {
		extensionIndex[r] = b
	}
}

// InAlphabet reports whether r is representable in the GSM default or extension table.
func InAlphabet(r rune) bool {
	if _, ok := defaultIndex[r]; ok {
		return true
	}
	_, ok := extensionIndex[r]
	return ok
}

// TextToGSM returns the GSM alphabet code points for text, one or two per
// character. Unmapped characters become the '.' code point.
func TextToGSM(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if b, ok := defaultIndex[r]; ok {
			out = append(out, b)
			continue
		}
		if b, ok := extensionIndex[r]; ok {
			out = append(out, EscapeByte, b)
			continue
		}
		out = append(out, placeholderByte)
	}
	return out
}

// GSMToText maps GSM alphabet code points back to text.
func GSMToText(codes []byte) string {
	var sb strings.Builder
	sb.Grow(len(codes))
	for i := 0; i < len(codes); i++ {
		b := codes[i]
		switch {
		case b >= 0x80:
			sb.WriteRune(Substitute)
		case b == EscapeByte:
			if i+1 >= len(codes) {
				sb.WriteRune(Substitute)
				continue
			}
			i++
			next := codes[i]
			if r, ok := gsmExtension[next]; ok {
				sb.WriteRune(r)
			} else if next < 0x80 && next != EscapeByte {
				sb.WriteRune(gsmDefault[next])
			} else {
				sb.WriteRune(Substitute)
			}
		default:
			sb.WriteRune(gsmDefault[b])
		}
	}
	return sb.String()
}

// TextToGSM8Hex encodes text as GSM 8-bit hex, one octet per default table
// character and two for extension characters. Characters in neither table
// encode as 2E.
func TextToGSM8Hex(text string) string {
	return EncodeHex(TextToGSM(text))
}

// GSM8ToText decodes a GSM 8-bit hex payload.
func GSM8ToText(s string) (string, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	return GSMToText(b), nil
}
