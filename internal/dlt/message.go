// Package dlt implements the DLT trace-log message model: frame decoding,
// filter lists, and the multi-file log handle the indexer walks.
package dlt

import (
	"fmt"
	"strings"
)

// Frame magic at the start of every storage frame.
var FrameMagic = []byte{0x44, 0x4C, 0x54, 0x01} // "DLT\x01"

// MessageType is the DLT message type from the extended header.
type MessageType int

const (
	TypeLog MessageType = iota
	TypeAppTrace
	TypeNwTrace
	TypeControl
	TypeUnknown MessageType = -1
)

// Control message subtypes.
const (
	ControlRequest  = 1
	ControlResponse = 2
)

// Endianness of the message payload.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Control service identifiers used by the indexer side channels.
const (
	ServiceIDGetLogInfo         uint32 = 0x03
	ServiceIDGetSoftwareVersion uint32 = 0x13
	ServiceIDUnregisterContext  uint32 = 0xf01
	ServiceIDTimezone           uint32 = 0xf02
)

// Payload record sizes of the control responses the indexer inspects.
const (
	// TimezoneRecordSize is service id + int32 offset + dst flag.
	TimezoneRecordSize = 9
	// UnregisterContextRecordSize is service id + status + apid + ctid + comid.
	UnregisterContextRecordSize = 17
)

// Message is one decoded DLT message.
//
// The indexer only consults the fields below; decoder plugins may attach
// decoded text in place before filters are evaluated.
type Message struct {
	EcuID string
	AppID string
	CtxID string

	Type       MessageType
	Subtype    int
	ServiceID  uint32
	Endianness Endianness

	// Storage header timestamp.
	Time         int64
	Microseconds uint32

	Payload []byte

	// DecodedText is attached by decoder plugins.
	DecodedText string
}

// IsControlResponse reports whether the message is a control response.
func (m *Message) IsControlResponse() bool {
	return m.Type == TypeControl && m.Subtype == ControlResponse
}

// String returns a short human-readable form for logs.
func (m *Message) String() string {
	return fmt.Sprintf("%s %s %s type=%d sub=%d len=%d", m.EcuID, m.AppID, m.CtxID, m.Type, m.Subtype, len(m.Payload))
}

// ToASCII renders payload bytes as printable ASCII, escaping control
// characters the way log viewers expect.
func ToASCII(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		switch {
		case c >= 0x20 && c < 0x7f:
			b.WriteByte(c)
		case c == '\n' || c == '\r' || c == '\t':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "\\x%02x", c)
		}
	}
	return b.String()
}
