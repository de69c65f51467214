package viewer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog"

	"camlink/pkg/logger"
	"camlink/pkg/protocol"
)

// Stats summarizes a viewing session.
type Stats struct {
	Frames           uint64
	Bytes            uint64
	Heartbeats       uint64
	ChecksumMismatch uint64
}

// Viewer consumes a camlink stream: it reads header+payload packets,
// verifies each frame's checksum, answers heartbeat-carrier frames with the
// matching ack token, and writes the elementary stream to an output.
type Viewer struct {
	conn net.Conn
	out  io.Writer
	log  zerolog.Logger

	// Mute suppresses heartbeat acks; the server will evict us. Used by the
	// bench tool to exercise the liveness path.
	Mute bool

	stats Stats
}

// Dial connects to a camlink server. Frames are written to out; pass
// io.Discard to consume without storing.
func Dial(addr string, out io.Writer) (*Viewer, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Viewer{
		conn: conn,
		out:  out,
		log:  logger.WithComponent("viewer"),
	}, nil
}

// Run reads packets until the server closes the connection or ctx is
// cancelled. Returns nil on a clean remote close.
func (v *Viewer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		v.conn.Close()
	}()

	br := bufio.NewReaderSize(v.conn, 64*1024)
	hdrBuf := make([]byte, protocol.HeaderSize)
	var payload []byte

	for {
		if _, err := io.ReadFull(br, hdrBuf); err != nil {
			return v.finish(err)
		}
		hdr, err := protocol.UnmarshalHeader(hdrBuf)
		if err != nil {
			return err
		}
		// A magic mismatch mid-stream means we lost framing; there is no
		// way to resync, so bail out.
		if hdr.Magic != protocol.Magic {
			return fmt.Errorf("stream desync: magic %#04x", hdr.Magic)
		}

		if cap(payload) < int(hdr.FrameSize) {
			payload = make([]byte, hdr.FrameSize)
		}
		payload = payload[:hdr.FrameSize]
		if _, err := io.ReadFull(br, payload); err != nil {
			return v.finish(err)
		}

		if sum := protocol.Checksum(payload); sum != hdr.Checksum {
			v.stats.ChecksumMismatch++
			v.log.Warn().Uint32("want", hdr.Checksum).Uint32("got", sum).Msg("frame checksum mismatch")
		}

		if hdr.Heartbeat() {
			v.stats.Heartbeats++
			if !v.Mute {
				ack := protocol.Ack{Token: hdr.Checksum}
				if _, err := v.conn.Write(ack.Marshal()); err != nil {
					return v.finish(err)
				}
			}
		}

		if v.out != nil {
			if _, err := v.out.Write(payload); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		v.stats.Frames++
		v.stats.Bytes += uint64(hdr.FrameSize)
	}
}

// finish maps a terminal read/write error to the session result: EOF and
// closed-connection errors are a normal end of stream.
func (v *Viewer) finish(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Stats returns the session counters. Valid after Run returns.
func (v *Viewer) Stats() Stats {
	return v.stats
}

// Close closes the connection.
func (v *Viewer) Close() error {
	return v.conn.Close()
}
