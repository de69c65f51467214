package protocol

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrHeaderTooShort is returned when a buffer cannot hold a full header.
	ErrHeaderTooShort = errors.New("header too short")
)

// Header is the plaintext 32-byte header preceding every frame payload.
// All multi-byte integers are big-endian on the wire.
//
//	magic(2) version(2) encoding(2) flags(4) frame_size(4)
//	width(2) height(2) checksum(4) reserved(10)
type Header struct {
	Magic     uint16
	Version   uint16
	Encoding  uint16
	Flags     uint32
	FrameSize uint32
	Width     uint16
	Height    uint16
	Checksum  uint32
}

// Heartbeat reports whether the heartbeat-carrier flag is set.
func (h *Header) Heartbeat() bool {
	return h.Flags&FlagHeartbeat != 0
}

// Marshal serializes the header. Magic, version and encoding are fixed to
// their protocol constants regardless of the struct values; the caller
// supplies flags, frame size, dimensions and checksum.
func (h *Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], Magic)
	binary.BigEndian.PutUint16(buf[2:4], Version)
	binary.BigEndian.PutUint16(buf[4:6], EncodingH264)
	binary.BigEndian.PutUint32(buf[6:10], h.Flags)
	binary.BigEndian.PutUint32(buf[10:14], h.FrameSize)
	binary.BigEndian.PutUint16(buf[14:16], h.Width)
	binary.BigEndian.PutUint16(buf[16:18], h.Height)
	binary.BigEndian.PutUint32(buf[18:22], h.Checksum)
	// buf[22:32] reserved, zero-filled
	return buf
}

// UnmarshalHeader deserializes a header from data.
func UnmarshalHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrHeaderTooShort
	}
	return Header{
		Magic:     binary.BigEndian.Uint16(data[0:2]),
		Version:   binary.BigEndian.Uint16(data[2:4]),
		Encoding:  binary.BigEndian.Uint16(data[4:6]),
		Flags:     binary.BigEndian.Uint32(data[6:10]),
		FrameSize: binary.BigEndian.Uint32(data[10:14]),
		Width:     binary.BigEndian.Uint16(data[14:16]),
		Height:    binary.BigEndian.Uint16(data[16:18]),
		Checksum:  binary.BigEndian.Uint32(data[18:22]),
	}, nil
}
