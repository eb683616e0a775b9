// Package protocol implements EMI/UCP frame parsing and building for the
// operations an SMSC simulator needs: session open (60), submit MT (51),
// deliver MO (52), delivery notification (53) and their results.
//
// A frame on the wire looks like:
//
//	STX TRN/LEN/O|R/OT/field/.../CS ETX
//
// where LEN counts the characters between STX and ETX and CS is the
// modulo-256 sum of the characters from TRN up to and including the slash
// that precedes it.
package protocol

// Frame delimiters.
const (
	STX       = 0x02
	ETX       = 0x03
	Separator = '/'
)

// Direction markers.
const (
	DirOperation = "O"
	DirResult    = "R"
)

// Operation type codes.
const (
	OTSubmitMT             = "51"
	OTDeliverMO            = "52"
	OTDeliveryNotification = "53"
	OTSessionManagement    = "60"
)

// Result markers.
const (
	ResultAck  = "A"
	ResultNack = "N"
)

// NACK error codes.
const (
	NackSyntaxError          = "02"
	NackOperationUnsupported = "03"
	NackAdCInvalid           = "06"
	NackAuthFailure          = "07"
	NackDefault              = "99"
)

// NACK descriptions sent alongside the codes above.
const (
	TextAuthFailure = "Authentication failure"
	TextAdCInvalid  = "AdC invalid"
)

// Template placeholders replaced when a frame is finalized.
const (
	LengthPlaceholder   = "LLLLL"
	ChecksumPlaceholder = "SS"
)

// Header layout.
const (
	FieldTRN       = 0
	FieldLength    = 1
	FieldDirection = 2
	FieldOT        = 3
	headerFields   = 4
)

// Positional fields of the 5x operations (51, 52, 53).
const (
	FieldAdC = iota + headerFields
	FieldOAdC
	FieldAC
	FieldNRq
	FieldNAdC
	FieldNT
	FieldNPID
	FieldLRq
	FieldLRAd
	FieldLPID
	FieldDD
	FieldDDT
	FieldVP
	FieldRPID
	FieldSCTS
	FieldDst
	FieldRsn
	FieldDSCTS
	FieldMT
	FieldNB
	FieldMsg
	FieldMMS
	FieldPR
	FieldDCs
	FieldMCLs
	FieldRPI
	FieldCPg
	FieldRPLy
	FieldOTOA
	FieldHPLMN
	FieldXSer
	FieldRES4
	FieldRES5

	// lastMessageField is the highest positional field of a 5x operation.
	lastMessageField = FieldRES5
)

// Positional fields of the 60 session management operation.
const (
	FieldSessionOAdC = iota + headerFields
	FieldSessionOTON
	FieldSessionONPI
	FieldSessionSTYP
	FieldSessionPWD
	FieldSessionNPWD
	FieldSessionVERS
	FieldSessionLAdC
	FieldSessionLTON
	FieldSessionLNPI
	FieldSessionOPID
	FieldSessionRES1
)

// Message types carried in the MT field.
const (
	MTNumeric      = "2"
	MTAlphanumeric = "3"
	MTTransparent  = "4"
)

// Delivery status values carried in the Dst field.
const (
	DstDelivered    = 0
	DstBuffered     = 1
	DstNotDelivered = 2
)

// Notification type bits carried in the NT field of a submit.
const (
	NTDelivery    = 1
	NTNonDelivery = 2
	NTBuffered    = 4
)

// XSer values announcing the payload coding of MO frames.
const (
	XSerUnicode = "020108"
	XSerGSM7    = "020100"
	XSerGSM8    = "0201F4"
)

// SCTSLayout is the time layout of SCTS and DSCTS fields (ddMMyyHHmmss).
const SCTSLayout = "020106150405"

// DefaultSRText is the status report text; the arguments are the MT recipient
// and originator.
const DefaultSRText = "this is a SR from %s to %s"

// MaxTRN bounds the cyclic transaction reference (00-99).
const MaxTRN = 100
