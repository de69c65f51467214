package protocol

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrAckTooShort is returned when a buffer cannot hold a full ack.
	ErrAckTooShort = errors.New("ack too short")
	// ErrBadMagic is returned when an incoming packet fails the magic check.
	ErrBadMagic = errors.New("unrecognized magic")
)

// Ack is the client->server acknowledgment of a heartbeat-carrier frame.
// Format: [magic(2)][checksum token(4)], big-endian.
type Ack struct {
	Token uint32
}

// Marshal serializes the ack.
func (a *Ack) Marshal() []byte {
	buf := make([]byte, AckSize)
	binary.BigEndian.PutUint16(buf[0:2], Magic)
	binary.BigEndian.PutUint32(buf[2:6], a.Token)
	return buf
}

// UnmarshalAck deserializes an ack from data. A failed magic check returns
// ErrBadMagic; the caller discards the packet without closing the connection.
func UnmarshalAck(data []byte) (Ack, error) {
	if len(data) < AckSize {
		return Ack{}, ErrAckTooShort
	}
	if binary.BigEndian.Uint16(data[0:2]) != Magic {
		return Ack{}, ErrBadMagic
	}
	return Ack{Token: binary.BigEndian.Uint32(data[2:6])}, nil
}
