// Package msglog records the traffic of an SMSC simulator: every frame
// received or sent, plus connection and system events. Entries flow into a
// Sink; the package provides a logrus sink, a MySQL sink, a bounded
// in-memory recorder and a fan-out.
package msglog

import (
	"strings"
	"time"
)

// Kind classifies an entry.
type Kind string

// Entry kinds.
const (
	KindSys        Kind = "SYS"
	KindSession    Kind = "SESSION"
	KindSessionAck Kind = "SESSION_ACK"
	KindPing       Kind = "PING"
	KindPingAck    Kind = "PING_ACK"
	KindMT         Kind = "MT"
	KindMTAck      Kind = "MT_ACK"
	KindMTNack     Kind = "MT_NACK"
	KindMO         Kind = "MO"
	KindMOAck      Kind = "MO_ACK"
	KindMONack     Kind = "MO_NACK"
	KindSR         Kind = "SR"
	KindSRAck      Kind = "SR_ACK"
	KindSRNack     Kind = "SR_NACK"
	KindConnect    Kind = "CONNECT"
	KindDisconnect Kind = "DISCONNECT"
)

// Direction of the frame relative to the simulator.
type Direction string

// Directions. System and connection events carry DirNone.
const (
	DirNone     Direction = ""
	DirInbound  Direction = "IN"
	DirOutbound Direction = "OUT"
)

// Entry is one recorded event.
type Entry struct {
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id,omitempty"`
	Remote    string    `json:"remote,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Raw       string    `json:"raw,omitempty"`
}

// Sink receives entries. Implementations must be safe for concurrent use
// and must not block the caller for long.
type Sink interface {
	Record(e Entry)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Entry)

// Record implements Sink.
func (f SinkFunc) Record(e Entry) { f(e) }

// Discard drops every entry.
var Discard Sink = SinkFunc(func(Entry) {})

var printable = strings.NewReplacer("\x02", "<STX>", "\x03", "<ETX>")

// Printable renders frame delimiters visibly.
func Printable(raw string) string {
	return printable.Replace(raw)
}
