package protocol

import (
	"fmt"

	"github.com/go-smsc/emi-smsc/lib/charset"
	"github.com/go-smsc/emi-smsc/lib/util"
)

// ParseError describes why a frame could not be turned into an operation.
// It wraps util.ErrMalformedFrame, util.ErrUnsupportedOperation or
// charset.ErrMalformedHex.
type ParseError struct {
	OT    string // operation type, when known
	Field string // offending field or frame part
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.OT == "" {
		return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse OT %s: %s: %v", e.OT, e.Field, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As support.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// schema declares how many fields an operation needs, checksum included,
// and how to populate its typed variant.
type schema struct {
	minFields int
	build     func(f *Frame) (Operation, error)
}

// operationSchemas covers the O direction. Results share resultSchemas.
var operationSchemas = map[string]schema{
	OTSubmitMT: {minFields: FieldXSer + 1, build: func(f *Frame) (Operation, error) {
		return &SubmitMT{Header: headerOf(f), Message: messageOf(f)}, nil
	}},
	OTDeliverMO: {minFields: FieldXSer + 1, build: func(f *Frame) (Operation, error) {
		return &DeliverMO{Header: headerOf(f), Message: messageOf(f)}, nil
	}},
	OTDeliveryNotification: {minFields: FieldXSer + 1, build: func(f *Frame) (Operation, error) {
		return &DeliveryNotification{Header: headerOf(f), Message: messageOf(f)}, nil
	}},
	OTSessionManagement: {minFields: FieldSessionOPID + 1, build: buildSessionOp},
}

var resultSchemas = map[string]schema{
	ResultAck:  {minFields: 6, build: buildAck},
	ResultNack: {minFields: 7, build: buildNack},
}

// Parser turns frame text into typed operations.
type Parser struct {
	// Strict rejects frames whose declared length or checksum is wrong.
	// Field clients often send placeholders, so it is off by default.
	Strict bool
}

// NewParser creates a new parser with default settings.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses a frame into one of the supported operation variants.
func (p *Parser) Parse(raw string) (Operation, error) {
	f, err := ParseFrame(raw)
	if err != nil {
		return nil, err
	}
	return p.ParseFrame(f)
}

// ParseFrame populates an operation from an already split frame.
func (p *Parser) ParseFrame(f *Frame) (Operation, error) {
	if p.Strict {
		if !f.LengthValid() {
			return nil, &ParseError{OT: f.OT, Field: "LEN", Err: util.ErrMalformedFrame}
		}
		if !f.ChecksumValid() {
			return nil, &ParseError{OT: f.OT, Field: "checksum", Err: util.ErrMalformedFrame}
		}
	}

	if _, ok := operationSchemas[f.OT]; !ok {
		return nil, &ParseError{OT: f.OT, Field: "OT", Err: util.ErrUnsupportedOperation}
	}

	var s schema
	if f.IsResult() {
		var ok bool
		s, ok = resultSchemas[f.Field(headerFields)]
		if !ok {
			return nil, &ParseError{OT: f.OT, Field: "A/N", Err: util.ErrMalformedFrame}
		}
	} else {
		s = operationSchemas[f.OT]
	}

	if len(f.Fields) < s.minFields {
		return nil, &ParseError{
			OT:    f.OT,
			Field: fmt.Sprintf("%d fields, need %d", len(f.Fields), s.minFields),
			Err:   util.ErrMalformedFrame,
		}
	}
	return s.build(f)
}

// Parse parses a frame with a default Parser.
func Parse(raw string) (Operation, error) {
	return NewParser().Parse(raw)
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(raw string) Operation {
	op, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return op
}

func headerOf(f *Frame) Header {
	return Header{TRN: f.TRN, OT: f.OT, Result: f.IsResult(), Raw: f.Raw}
}

// dataField returns field i unless it is the trailing checksum.
func dataField(f *Frame, i int) string {
	if i >= len(f.Fields)-1 {
		return ""
	}
	return f.Fields[i]
}

func messageOf(f *Frame) Message {
	get := func(i int) string { return dataField(f, i) }
	return Message{
		AdC:   get(FieldAdC),
		OAdC:  get(FieldOAdC),
		AC:    get(FieldAC),
		NRq:   get(FieldNRq),
		NAdC:  get(FieldNAdC),
		NT:    get(FieldNT),
		NPID:  get(FieldNPID),
		LRq:   get(FieldLRq),
		LRAd:  get(FieldLRAd),
		LPID:  get(FieldLPID),
		DD:    get(FieldDD),
		DDT:   get(FieldDDT),
		VP:    get(FieldVP),
		RPID:  get(FieldRPID),
		SCTS:  get(FieldSCTS),
		Dst:   get(FieldDst),
		Rsn:   get(FieldRsn),
		DSCTS: get(FieldDSCTS),
		MT:    get(FieldMT),
		NB:    get(FieldNB),
		Msg:   get(FieldMsg),
		MMS:   get(FieldMMS),
		PR:    get(FieldPR),
		DCs:   get(FieldDCs),
		MCLs:  get(FieldMCLs),
		RPI:   get(FieldRPI),
		CPg:   get(FieldCPg),
		RPLy:  get(FieldRPLy),
		OTOA:  get(FieldOTOA),
		HPLMN: get(FieldHPLMN),
		XSer:  get(FieldXSer),
		RES4:  get(FieldRES4),
		RES5:  get(FieldRES5),
	}
}

func buildSessionOp(f *Frame) (Operation, error) {
	get := func(i int) string { return dataField(f, i) }

	pwd, err := charset.IRAToText(get(FieldSessionPWD))
	if err != nil {
		return nil, &ParseError{OT: f.OT, Field: "PWD", Err: err}
	}
	npwd, err := charset.IRAToText(get(FieldSessionNPWD))
	if err != nil {
		return nil, &ParseError{OT: f.OT, Field: "NPWD", Err: err}
	}

	return &SessionOp{
		Header:      headerOf(f),
		OAdC:        get(FieldSessionOAdC),
		OTON:        get(FieldSessionOTON),
		ONPI:        get(FieldSessionONPI),
		STyp:        get(FieldSessionSTYP),
		Password:    pwd,
		NewPassword: npwd,
		Version:     get(FieldSessionVERS),
		LAdC:        get(FieldSessionLAdC),
		LTON:        get(FieldSessionLTON),
		LNPI:        get(FieldSessionLNPI),
		OpID:        get(FieldSessionOPID),
	}, nil
}

// buildAck reads A/MVP/SM for 5x results and A/SM for the others.
func buildAck(f *Frame) (Operation, error) {
	ack := &Ack{Header: headerOf(f)}
	if isMessageOT(f.OT) && len(f.Fields) >= 8 {
		ack.MVP = dataField(f, 5)
		ack.SM = dataField(f, 6)
	} else {
		ack.SM = dataField(f, 5)
	}
	return ack, nil
}

func buildNack(f *Frame) (Operation, error) {
	return &Nack{
		Header: headerOf(f),
		EC:     dataField(f, 5),
		SM:     dataField(f, 6),
	}, nil
}

func isMessageOT(ot string) bool {
	return ot == OTSubmitMT || ot == OTDeliverMO || ot == OTDeliveryNotification
}
