package dlt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Standard header type flags.
const (
	htypUEH  = 0x01 // use extended header
	htypMSBF = 0x02 // payload in big endian
	htypWEID = 0x04 // with ECU id
	htypWSID = 0x08 // with session id
	htypWTMS = 0x10 // with timestamp
)

// storageHeaderSize is the magic, timestamp and ECU id preceding every frame.
const storageHeaderSize = 16

// standardHeaderSize is the fixed part of the standard header.
const standardHeaderSize = 4

var (
	// ErrBadMagic is returned when a frame does not start with DLT\x01.
	ErrBadMagic = errors.New("dlt: bad frame magic")
	// ErrTruncated is returned when a frame is shorter than its headers claim.
	ErrTruncated = errors.New("dlt: truncated frame")
)

// Decode parses one storage frame starting at data[0]. It returns the
// decoded message and the total frame length in bytes.
//
// Structurally broken frames (bad magic, impossible lengths) return an
// error; the caller is expected to skip them.
func Decode(data []byte) (*Message, int, error) {
	if len(data) < storageHeaderSize+standardHeaderSize {
		return nil, 0, ErrTruncated
	}
	if !bytes.Equal(data[0:4], FrameMagic) {
		return nil, 0, ErrBadMagic
	}

	msg := &Message{
		Type:    TypeUnknown,
		Subtype: -1,
	}

	// Storage header: seconds, microseconds, ECU id.
	msg.Time = int64(binary.LittleEndian.Uint32(data[4:8]))
	msg.Microseconds = binary.LittleEndian.Uint32(data[8:12])
	msg.EcuID = trimID(data[12:16])

	// Standard header. The length field counts from the standard header on.
	htyp := data[16]
	length := int(binary.BigEndian.Uint16(data[18:20]))
	if length < standardHeaderSize {
		return nil, 0, fmt.Errorf("dlt: implausible frame length %d: %w", length, ErrTruncated)
	}
	frameLen := storageHeaderSize + length
	if len(data) < frameLen {
		return nil, 0, ErrTruncated
	}

	if htyp&htypMSBF != 0 {
		msg.Endianness = BigEndian
	} else {
		msg.Endianness = LittleEndian
	}

	pos := storageHeaderSize + standardHeaderSize
	if htyp&htypWEID != 0 {
		if len(data) < pos+4 {
			return nil, 0, ErrTruncated
		}
		msg.EcuID = trimID(data[pos : pos+4])
		pos += 4
	}
	if htyp&htypWSID != 0 {
		pos += 4
	}
	if htyp&htypWTMS != 0 {
		pos += 4
	}

	// Extended header carries type, subtype and the app/context ids.
	if htyp&htypUEH != 0 {
		if frameLen < pos+10 {
			return nil, 0, ErrTruncated
		}
		msin := data[pos]
		msg.Type = MessageType((msin >> 1) & 0x07)
		msg.Subtype = int(msin >> 4)
		msg.AppID = trimID(data[pos+2 : pos+6])
		msg.CtxID = trimID(data[pos+6 : pos+10])
		pos += 10
	}

	if pos > frameLen {
		return nil, 0, ErrTruncated
	}
	msg.Payload = data[pos:frameLen]

	// Control messages carry the service id in the first payload word.
	if msg.Type == TypeControl && len(msg.Payload) >= 4 {
		if msg.Endianness == BigEndian {
			msg.ServiceID = binary.BigEndian.Uint32(msg.Payload[0:4])
		} else {
			msg.ServiceID = binary.LittleEndian.Uint32(msg.Payload[0:4])
		}
	}

	return msg, frameLen, nil
}

// trimID converts a fixed 4-byte id field to a string, dropping NUL padding.
func trimID(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
