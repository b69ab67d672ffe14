package dlt

import "encoding/binary"

// FrameSpec describes one storage frame for writing. Used to generate
// log files for tooling and tests.
type FrameSpec struct {
	EcuID string
	AppID string
	CtxID string

	Type    MessageType
	Subtype int

	Time         int64
	Microseconds uint32

	BigEndian bool
	Payload   []byte
}

// AppendFrame appends the encoded storage frame to dst and returns the
// extended slice. Frames are written with an extended header so the
// decoder can recover type, subtype and the app/context ids.
func AppendFrame(dst []byte, s FrameSpec) []byte {
	// Storage header.
	dst = append(dst, FrameMagic...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(s.Time))
	dst = binary.LittleEndian.AppendUint32(dst, s.Microseconds)
	dst = appendID(dst, s.EcuID)

	// Standard header with extended header, length counts from here.
	htyp := byte(htypUEH)
	if s.BigEndian {
		htyp |= htypMSBF
	}
	length := standardHeaderSize + 10 + len(s.Payload)
	dst = append(dst, htyp, 0)
	dst = binary.BigEndian.AppendUint16(dst, uint16(length))

	// Extended header.
	msin := byte(s.Type<<1)&0x0e | byte(s.Subtype<<4)
	dst = append(dst, msin, 0)
	dst = appendID(dst, s.AppID)
	dst = appendID(dst, s.CtxID)

	return append(dst, s.Payload...)
}

// ControlPayload builds a control message payload: the service id in
// the requested endianness followed by the record body.
func ControlPayload(serviceID uint32, bigEndian bool, body []byte) []byte {
	var payload []byte
	if bigEndian {
		payload = binary.BigEndian.AppendUint32(payload, serviceID)
	} else {
		payload = binary.LittleEndian.AppendUint32(payload, serviceID)
	}
	return append(payload, body...)
}

// appendID appends a 4-byte NUL-padded id field.
func appendID(dst []byte, id string) []byte {
	var field [4]byte
	copy(field[:], id)
	return append(dst, field[:]...)
}
