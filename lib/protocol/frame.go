package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-smsc/emi-smsc/lib/util"
)

// Frame is a split EMI/UCP frame. Fields holds every slash separated field,
// header and trailing checksum included, so Fields[FieldAdC] addresses the
// AdC of a 5x operation directly.
type Frame struct {
	TRN       string
	Length    string
	Direction string
	OT        string
	Checksum  string
	Fields    []string

	// Raw is the frame text from STX to ETX inclusive.
	Raw string
}

// ParseFrame splits raw frame text. It requires a start marker, a numeric
// two digit TRN, a direction marker and an operation type. The declared
// length and checksum are kept but not enforced; see LengthValid and
// ChecksumValid.
func ParseFrame(raw string) (*Frame, error) {
	start := strings.IndexByte(raw, STX)
	if start < 0 {
		return nil, &ParseError{Field: "STX", Err: util.ErrMalformedFrame}
	}
	raw = raw[start:]

	body := raw[1:]
	if n := strings.IndexByte(body, ETX); n >= 0 {
		body = body[:n]
		raw = raw[:n+2]
	} else {
		raw += string(rune(ETX))
	}

	fields := strings.Split(body, string(Separator))
	if len(fields) < headerFields+1 {
		return nil, &ParseError{Field: "header", Err: util.ErrMalformedFrame}
	}

	f := &Frame{
		TRN:       fields[FieldTRN],
		Length:    fields[FieldLength],
		Direction: fields[FieldDirection],
		OT:        fields[FieldOT],
		Checksum:  fields[len(fields)-1],
		Fields:    fields,
		Raw:       raw,
	}

	if len(f.TRN) != 2 || !isDigits(f.TRN) {
		return nil, &ParseError{OT: f.OT, Field: "TRN", Err: util.ErrMalformedFrame}
	}
	if f.Direction != DirOperation && f.Direction != DirResult {
		return nil, &ParseError{OT: f.OT, Field: "O/R", Err: util.ErrMalformedFrame}
	}
	if f.OT == "" {
		return nil, &ParseError{Field: "OT", Err: util.ErrMalformedFrame}
	}
	return f, nil
}

// IsResult reports whether the frame is a result (R) rather than an operation.
func (f *Frame) IsResult() bool {
	return f.Direction == DirResult
}

// Field returns field i or the empty string when the frame is shorter.
func (f *Frame) Field(i int) string {
	if i < 0 || i >= len(f.Fields) {
		return ""
	}
	return f.Fields[i]
}

// TRNValue returns the transaction reference as an integer.
func (f *Frame) TRNValue() int {
	n, _ := strconv.Atoi(f.TRN)
	return n
}

// LengthValid reports whether the declared length matches the frame.
func (f *Frame) LengthValid() bool {
	return f.Length == fmt.Sprintf("%05d", len(f.Raw)-2)
}

// ChecksumValid reports whether the trailing checksum matches the frame.
func (f *Frame) ChecksumValid() bool {
	return strings.EqualFold(f.Checksum, ChecksumHex(f.Raw))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
