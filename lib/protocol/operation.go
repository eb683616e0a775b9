package protocol

import (
	"strconv"

	"github.com/go-smsc/emi-smsc/lib/charset"
)

// Header carries the parts common to every parsed operation.
type Header struct {
	TRN    string
	OT     string
	Result bool
	Raw    string
}

// Head returns the header. Every operation variant embeds Header.
func (h Header) Head() Header {
	return h
}

// Operation is a parsed frame. The concrete type is one of *SessionOp,
// *SubmitMT, *DeliverMO, *DeliveryNotification, *Ack or *Nack.
type Operation interface {
	Head() Header
}

// SessionOp is a UCP 60 session management operation.
type SessionOp struct {
	Header
	OAdC        string
	OTON        string
	ONPI        string
	STyp        string
	Password    string // decoded from IRA hex
	NewPassword string // decoded from IRA hex
	Version     string
	LAdC        string
	LTON        string
	LNPI        string
	OpID        string
}

// Message holds the positional fields shared by the 5x operations.
type Message struct {
	AdC   string
	OAdC  string
	AC    string
	NRq   string
	NAdC  string
	NT    string
	NPID  string
	LRq   string
	LRAd  string
	LPID  string
	DD    string
	DDT   string
	VP    string
	RPID  string
	SCTS  string
	Dst   string
	Rsn   string
	DSCTS string
	MT    string
	NB    string
	Msg   string
	MMS   string
	PR    string
	DCs   string
	MCLs  string
	RPI   string
	CPg   string
	RPLy  string
	OTOA  string
	HPLMN string
	XSer  string
	RES4  string
	RES5  string
}

// SubmitMT is a UCP 51 submit short message operation.
type SubmitMT struct {
	Header
	Message
}

// DeliverMO is a UCP 52 deliver short message operation.
type DeliverMO struct {
	Header
	Message
}

// DeliveryNotification is a UCP 53 delivery notification operation.
type DeliveryNotification struct {
	Header
	Message
}

// Ack is a positive result for any operation type.
type Ack struct {
	Header
	MVP string
	SM  string
}

// Nack is a negative result for any operation type.
type Nack struct {
	Header
	EC string
	SM string
}

// Format returns the payload character set signalled by XSer and MT.
func (m *Message) Format() charset.Format {
	return charset.DetectFormat(m.XSer, m.MT)
}

// NotificationType returns NT as a bit mask, 0 when empty or not numeric.
func (m *Message) NotificationType() int {
	n, err := strconv.Atoi(m.NT)
	if err != nil {
		return 0
	}
	return n
}

// WantsNotification reports whether NT requests a report with the given
// delivery status: bit 1 for delivered, 2 for not delivered, 4 for buffered.
func (m *Message) WantsNotification(dst int) bool {
	nt := m.NotificationType()
	switch dst {
	case DstDelivered:
		return nt&NTDelivery != 0
	case DstNotDelivered:
		return nt&NTNonDelivery != 0
	case DstBuffered:
		return nt&NTBuffered != 0
	default:
		return nt != 0
	}
}

// Originator returns OAdC, decoding alphanumeric addresses.
func (m *Message) Originator() string {
	if m.OTOA == charset.OTOAAlphanumeric {
		if s, err := charset.DecodeAlphanumericAddress(m.OAdC); err == nil {
			return s
		}
	}
	return m.OAdC
}

// Text decodes Msg according to MT, NB and XSer. Numeric messages are
// returned as is; alphanumeric ones are IRA hex.
func (m *Message) Text(codec charset.Codec) (string, error) {
	switch m.MT {
	case MTNumeric:
		return m.Msg, nil
	case MTAlphanumeric:
		return charset.GSM8ToText(m.Msg)
	}
	septets := 0
	if nb, err := strconv.Atoi(m.NB); err == nil {
		septets = nb / 7
	}
	return codec.Decode(m.Msg, m.Format(), septets)
}
