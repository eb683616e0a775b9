package charset

// PackSeptets packs 7-bit values into octets, least significant bits first.
// The last octet is zero padded.
func PackSeptets(septets []byte) []byte {
	out := make([]byte, 0, (len(septets)*7+7)/8)
	var acc uint32
	bits := 0
	for _, s := range septets {
		acc |= uint32(s&0x7F) << bits
		bits += 7
		for bits >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			bits -= 8
		}
	}
	if bits > 0 {
		out = append(out, byte(acc))
	}
	return out
}

// UnpackSeptets extracts count septets from packed octets. When count is zero
// or negative the count is derived from the octet length and a trailing zero
// septet that only fills the last octet is dropped.
func UnpackSeptets(octets []byte, count int) []byte {
	derived := count <= 0
	if derived {
		count = len(octets) * 8 / 7
	}

	out := make([]byte, 0, count)
	var acc uint32
	bits := 0
	i := 0
	for len(out) < count {
		if bits < 7 {
			if i >= len(octets) {
				break
			}
			acc |= uint32(octets[i]) << bits
			i++
			bits += 8
		}
		out = append(out, byte(acc&0x7F))
		acc >>= 7
		bits -= 7
	}

	// 7 septets occupy 49 of 56 bits; the 8th derived septet is padding.
	if derived && len(out) > 0 && len(out)%8 == 0 && out[len(out)-1] == 0 {
		out = out[:len(out)-1]
	}
	return out
}

// TextToGSM7Hex encodes text as packed GSM 7-bit hex and returns the number
// of septets, escape septets included.
func TextToGSM7Hex(text string) (string, int) {
	septets := TextToGSM(text)
	return EncodeHex(PackSeptets(septets)), len(septets)
}

// GSM7HexToText decodes packed GSM 7-bit hex. Pass septets <= 0 when the
// count is not known.
func GSM7HexToText(s string, septets int) (string, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	return GSMToText(UnpackSeptets(b, septets)), nil
}
