package protocol

import (
	"fmt"
	"strings"
)

// Builder assembles an outgoing frame. Positional fields are addressed by
// their absolute index (FieldAdC, FieldSCTS, ...); unset fields stay empty.
//
//	frame := NewOperation(7, OTDeliverMO).
//		WithField(FieldAdC, "1234").
//		WithField(FieldOAdC, "0611").
//		String()
type Builder struct {
	trn       int
	direction string
	ot        string
	fields    []string // fields after the header, index 0 is field 4
}

// NewOperation starts an O frame.
func NewOperation(trn int, ot string) *Builder {
	return &Builder{trn: trn, direction: DirOperation, ot: ot}
}

// NewResult starts an R frame.
func NewResult(trn int, ot string) *Builder {
	return &Builder{trn: trn, direction: DirResult, ot: ot}
}

// WithField sets the field at the absolute index i, growing the frame as needed.
func (b *Builder) WithField(i int, value string) *Builder {
	i -= headerFields
	if i < 0 {
		return b
	}
	for len(b.fields) <= i {
		b.fields = append(b.fields, "")
	}
	b.fields[i] = value
	return b
}

// WithFields appends fields after the ones already set.
func (b *Builder) WithFields(values ...string) *Builder {
	b.fields = append(b.fields, values...)
	return b
}

// WithWidth pads the frame with empty fields up to and including index last.
func (b *Builder) WithWidth(last int) *Builder {
	for len(b.fields) <= last-headerFields {
		b.fields = append(b.fields, "")
	}
	return b
}

// Template returns the frame with length and checksum placeholders.
func (b *Builder) Template() string {
	var sb strings.Builder
	sb.WriteByte(STX)
	fmt.Fprintf(&sb, "%02d/%s/%s/%s/", b.trn%MaxTRN, LengthPlaceholder, b.direction, b.ot)
	for _, f := range b.fields {
		sb.WriteString(f)
		sb.WriteByte(Separator)
	}
	sb.WriteString(ChecksumPlaceholder)
	sb.WriteByte(ETX)
	return sb.String()
}

// String returns the finalized frame.
func (b *Builder) String() string {
	return Finalize(b.Template())
}

// BuildAck builds a positive result: R/<ot>/A/<fields...>/CS.
func BuildAck(trn int, ot string, fields ...string) string {
	return NewResult(trn, ot).WithFields(ResultAck).WithFields(fields...).String()
}

// BuildNack builds a negative result: R/<ot>/N/<code>/<text>/CS.
func BuildNack(trn int, ot, code, text string) string {
	return NewResult(trn, ot).WithFields(ResultNack, code, text).String()
}

// BuildSessionAck acknowledges a session open: R/60/A//CS.
func BuildSessionAck(trn int) string {
	return BuildAck(trn, OTSessionManagement, "")
}

// BuildSessionNack rejects a session open.
func BuildSessionNack(trn int, code, text string) string {
	return BuildNack(trn, OTSessionManagement, code, text)
}

// BuildSubmitAck acknowledges a submit MT: R/51/A//<AdC>:<SCTS>/CS.
// An empty AdC leaves the system message empty.
func BuildSubmitAck(trn int, adc, scts string) string {
	sm := ""
	if adc != "" {
		sm = adc + ":" + scts
	}
	return BuildAck(trn, OTSubmitMT, "", sm)
}

// BuildSubmitNack rejects a submit MT.
func BuildSubmitNack(trn int, code, text string) string {
	return BuildNack(trn, OTSubmitMT, code, text)
}
