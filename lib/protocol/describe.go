package protocol

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-smsc/emi-smsc/lib/charset"
)

// Describe returns a one line human readable summary of an operation,
// used as the title of message log entries.
func Describe(op Operation, codec charset.Codec) string {
	switch o := op.(type) {
	case *SessionOp:
		return "SMS: Open Session Request"
	case *SubmitMT:
		if o.AdC == "" {
			return "SMS: Ping Request"
		}
		return describeMessage("SMS", &o.Message, codec)
	case *DeliverMO:
		return describeMessage("MO", &o.Message, codec)
	case *DeliveryNotification:
		return fmt.Sprintf("SR: %s -> %s : status %s (%s)", o.Originator(), o.AdC, o.Dst, o.Rsn)
	case *Ack:
		return describeResult(o.OT, "ACK", o.SM)
	case *Nack:
		return describeResult(o.OT, "NACK "+o.EC, o.SM)
	default:
		return "unknown operation"
	}
}

func describeMessage(prefix string, m *Message, codec charset.Codec) string {
	text, err := m.Text(codec)
	if err != nil {
		return fmt.Sprintf("%s: %s -> %s : <undecodable %s payload>", prefix, m.Originator(), m.AdC, m.Format())
	}
	return fmt.Sprintf("%s: %s -> %s : %s (%d chars)", prefix, m.Originator(), m.AdC, text, utf8.RuneCountInString(text))
}

func describeResult(ot, kind, sm string) string {
	var what string
	switch ot {
	case OTSessionManagement:
		what = "Open Session"
	case OTSubmitMT:
		what = "Submit"
	case OTDeliverMO:
		what = "Deliver"
	case OTDeliveryNotification:
		what = "Notification"
	default:
		what = "OT " + ot
	}
	if sm == "" {
		return fmt.Sprintf("%s %s", what, kind)
	}
	return fmt.Sprintf("%s %s: %s", what, kind, sm)
}
