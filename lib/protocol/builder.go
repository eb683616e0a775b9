package protocol

import (
	"fmt"
	"strconv"

	"github.com/go-smsc/emi-smsc/lib/charset"
)

// MORequest describes a mobile originated message to deliver to a client.
type MORequest struct {
	Sender   string // becomes OAdC; alphanumeric senders use OTOA 5039
	Receiver string // becomes AdC
	Text     string
	Format   charset.Format
}

// SRRequest describes a delivery notification to deliver to a client.
type SRRequest struct {
	AdC  string // recipient of the notification, the original MT originator
	OAdC string // the original MT recipient
	SCTS string // SCTS of the message being reported on
	Dst  int
	Rsn  string
	// Text overrides the default notification text.
	Text string
}

// BuildDeliverMO builds a UCP 52 operation. The payload is always sent as
// a transparent message (MT 4) with the coding announced in XSer.
func BuildDeliverMO(trn int, req MORequest, scts string, codec charset.Codec) string {
	p := codec.Encode(req.Text, req.Format)

	xser := XSerGSM8
	switch p.Format {
	case charset.Unicode:
		xser = XSerUnicode
	case charset.GSM7:
		xser = XSerGSM7
	}

	b := NewOperation(trn, OTDeliverMO).
		WithField(FieldAdC, req.Receiver).
		WithField(FieldOAdC, req.Sender).
		WithField(FieldSCTS, scts).
		WithField(FieldMT, MTTransparent).
		WithField(FieldNB, strconv.Itoa(p.Bits())).
		WithField(FieldMsg, p.Hex).
		WithField(FieldXSer, xser).
		WithWidth(lastMessageField)

	if req.Sender != "" && !charset.IsNumericAddress(req.Sender) {
		b.WithField(FieldOAdC, charset.EncodeAlphanumericAddress(req.Sender)).
			WithField(FieldOTOA, charset.OTOAAlphanumeric)
	}
	return b.String()
}

// BuildDeliveryNotification builds a UCP 53 operation. The notification
// text is GSM 8-bit encoded as an alphanumeric message (MT 3).
func BuildDeliveryNotification(trn int, req SRRequest) string {
	text := req.Text
	if text == "" {
		text = fmt.Sprintf(DefaultSRText, req.OAdC, req.AdC)
	}

	return NewOperation(trn, OTDeliveryNotification).
		WithField(FieldAdC, req.AdC).
		WithField(FieldOAdC, req.OAdC).
		WithField(FieldSCTS, req.SCTS).
		WithField(FieldDst, strconv.Itoa(req.Dst)).
		WithField(FieldRsn, req.Rsn).
		WithField(FieldDSCTS, req.SCTS).
		WithField(FieldMT, MTAlphanumeric).
		WithField(FieldMsg, charset.TextToGSM8Hex(text)).
		WithWidth(lastMessageField).
		String()
}

// NotificationFor derives the status report answering a submit. It returns
// false when the submit is a ping or its NT does not request a report with
// the given status.
func NotificationFor(mt *SubmitMT, scts string, dst int, rsn string) (SRRequest, bool) {
	if mt.AdC == "" || !mt.WantsNotification(dst) {
		return SRRequest{}, false
	}
	return SRRequest{
		AdC:  mt.OAdC,
		OAdC: mt.AdC,
		SCTS: scts,
		Dst:  dst,
		Rsn:  rsn,
		Text: fmt.Sprintf(DefaultSRText, mt.AdC, mt.OAdC),
	}, true
}
