package streamer

import (
	"net"
	"time"

	"github.com/rs/zerolog"

	"camlink/pkg/heartbeat"
	"camlink/pkg/logger"
	"camlink/pkg/metrics"
	"camlink/pkg/protocol"
	"camlink/pkg/stats"
)

// Eviction reasons, also used as journal/metric labels.
const (
	ReasonHeartbeat = "heartbeat_expired"
	ReasonSocket    = "socket_failure"
	ReasonShutdown  = "shutdown"
)

// Config carries the launch-layer inputs to header construction.
type Config struct {
	Port   int
	Width  uint16
	Height uint16
}

// Option configures a Streamer.
type Option func(*Streamer)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Streamer) { s.now = now }
}

// WithJournal attaches a session event journal.
func WithJournal(j *stats.Journal) Option {
	return func(s *Streamer) { s.journal = j }
}

// Streamer is the per-frame coordinator: it checksums each frame, decides
// whether the frame carries a heartbeat, frames and transmits it, and
// processes client acknowledgments and liveness expiry. The frame source
// calls Push synchronously once per encoded frame; Streamer holds no state
// across calls beyond what the tracker and connection manager own.
type Streamer struct {
	cfg     Config
	conns   *ConnManager
	hb      *heartbeat.Tracker
	journal *stats.Journal
	now     func() time.Time
	log     zerolog.Logger

	// current session totals, flushed to the journal on eviction
	sessionFrames uint64
	sessionBytes  uint64
}

// New binds the listening socket and returns a ready coordinator.
func New(cfg Config, opts ...Option) (*Streamer, error) {
	conns, err := Listen(cfg.Port)
	if err != nil {
		return nil, err
	}
	s := &Streamer{
		cfg:   cfg,
		conns: conns,
		hb:    heartbeat.NewTracker(),
		now:   time.Now,
		log:   logger.WithComponent("streamer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log.Info().Stringer("addr", conns.Addr()).
		Uint16("width", cfg.Width).Uint16("height", cfg.Height).
		Msg("listening")
	return s, nil
}

// Addr returns the bound listening address.
func (s *Streamer) Addr() net.Addr {
	return s.conns.Addr()
}

// Push drives one frame through the protocol engine. Safe to invoke at
// video frame rate; all failures are absorbed here. With no client attached
// the frame is silently dropped.
func (s *Streamer) Push(frame []byte) {
	sum := protocol.Checksum(frame)
	now := s.now()

	switch s.conns.State() {
	case StateActive:
		data, err := s.conns.PollIncoming()
		if err != nil {
			s.evict(ReasonSocket, err)
			break
		}
		if len(data) > 0 {
			s.handleAcks(data)
		}
		if s.hb.Expired(now) {
			s.evict(ReasonHeartbeat, nil)
		}
	case StateListening:
		if s.conns.TryAccept() {
			s.hb.Reset()
			s.sessionFrames, s.sessionBytes = 0, 0
			metrics.ClientConnected.Set(1)
			s.journal.RecordConnect(s.conns.RemoteAddr())
		}
	}

	var flags uint32
	if s.conns.State() == StateActive && s.hb.ShouldIssue(now) {
		flags |= protocol.FlagHeartbeat
		s.hb.Issue(sum, now)
		metrics.HeartbeatsIssued.Inc()
		s.log.Debug().Uint32("token", sum).Msg("heartbeat issued")
	}

	hdr := protocol.Header{
		Flags:     flags,
		FrameSize: uint32(len(frame)),
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		Checksum:  sum,
	}

	if s.conns.State() != StateActive {
		metrics.FramesDropped.Inc()
		return
	}
	if err := s.conns.Send(hdr.Marshal()); err != nil {
		s.evict(ReasonSocket, err)
		return
	}
	if err := s.conns.Send(frame); err != nil {
		s.evict(ReasonSocket, err)
		return
	}
	s.sessionFrames++
	s.sessionBytes += uint64(len(frame))
	metrics.ObserveFrameSent(len(frame))
}

// handleAcks parses a polled buffer as consecutive ack packets. A short
// tail or a failed magic check discards the rest of the buffer as noise;
// the connection stays up.
func (s *Streamer) handleAcks(data []byte) {
	for len(data) > 0 {
		ack, err := protocol.UnmarshalAck(data)
		if err != nil {
			metrics.BadPackets.Inc()
			s.log.Warn().Err(err).Int("len", len(data)).Msg("discarding inbound packet")
			return
		}
		if s.hb.Acknowledge(ack.Token) {
			metrics.HeartbeatsAcked.Inc()
			s.log.Debug().Uint32("token", ack.Token).Msg("heartbeat acknowledged")
		} else {
			s.log.Debug().Uint32("token", ack.Token).Msg("late or unknown ack ignored")
		}
		data = data[protocol.AckSize:]
	}
}

func (s *Streamer) evict(reason string, err error) {
	remote := s.conns.RemoteAddr()
	ev := s.log.Info().Str("remote", remote).Str("reason", reason)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("client evicted")

	s.conns.Evict()
	s.hb.Reset()
	metrics.ClientConnected.Set(0)
	metrics.IncEviction(reason)
	s.journal.RecordEvict(remote, reason, s.sessionFrames, s.sessionBytes)
}

// Close tears down the sockets. An attached client is recorded as evicted
// with a shutdown reason.
func (s *Streamer) Close() error {
	if s.conns.State() == StateActive {
		s.evict(ReasonShutdown, nil)
	}
	return s.conns.Close()
}
