package streamer

import (
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"camlink/pkg/logger"
)

// Connection state. The single client slot is modeled as an explicit
// two-state value instead of a nullable socket.
type State int

const (
	StateListening State = iota // no client, accepting
	StateActive                 // client connected, streaming
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

const (
	// pollGrace bounds the per-frame accept/read readiness checks. A
	// deadline in the past would fail before the syscall, so the checks use
	// a deadline one millisecond out; buffered data and pending connections
	// are still returned immediately.
	pollGrace = time.Millisecond
	// writeGrace bounds a single send. A write that cannot complete within
	// it means the client stopped draining; that is a socket failure.
	writeGrace = 200 * time.Millisecond
	// recvBufSize caps one poll's worth of inbound ack data.
	recvBufSize = 512
)

// ConnManager owns the listening socket and the at-most-one client socket.
// Not safe for concurrent use; the frame-producing goroutine owns it.
type ConnManager struct {
	ln      *net.TCPListener
	client  *net.TCPConn
	state   State
	recvBuf [recvBufSize]byte
	log     zerolog.Logger
}

// Listen binds the listening socket. Failure to bind is fatal to the caller;
// everything after a successful bind is recoverable.
func Listen(port int) (*ConnManager, error) {
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("bind port %d: %w", port, err)
	}
	return &ConnManager{
		ln:    ln,
		state: StateListening,
		log:   logger.WithComponent("conn"),
	}, nil
}

// State returns the current connection state.
func (cm *ConnManager) State() State {
	return cm.state
}

// Addr returns the listening address.
func (cm *ConnManager) Addr() net.Addr {
	return cm.ln.Addr()
}

// RemoteAddr returns the client address, or "" while listening.
func (cm *ConnManager) RemoteAddr() string {
	if cm.client == nil {
		return ""
	}
	return cm.client.RemoteAddr().String()
}

// TryAccept polls the listening socket for a pending connection without
// blocking. Reports whether a client was accepted.
func (cm *ConnManager) TryAccept() bool {
	cm.ln.SetDeadline(time.Now().Add(pollGrace))
	conn, err := cm.ln.AcceptTCP()
	if err != nil {
		if !wouldBlock(err) {
			cm.log.Warn().Err(err).Msg("accept failed")
		}
		return false
	}
	conn.SetNoDelay(true)
	cm.client = conn
	cm.state = StateActive
	cm.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
	return true
}

// PollIncoming reads up to recvBufSize bytes from the client if data is
// immediately available. Returns (nil, nil) when there is nothing to read.
// Any error, including EOF, means the connection is dead and the caller
// must evict. The returned slice is only valid until the next poll.
func (cm *ConnManager) PollIncoming() ([]byte, error) {
	if cm.state != StateActive {
		return nil, nil
	}
	cm.client.SetReadDeadline(time.Now().Add(pollGrace))
	n, err := cm.client.Read(cm.recvBuf[:])
	if err != nil {
		if wouldBlock(err) {
			return nil, nil
		}
		return nil, err
	}
	return cm.recvBuf[:n], nil
}

// Send writes b to the client. A no-op while listening: frames are dropped,
// not queued. A failed or stalled write is returned for the caller to evict.
func (cm *ConnManager) Send(b []byte) error {
	if cm.state != StateActive {
		return nil
	}
	cm.client.SetWriteDeadline(time.Now().Add(writeGrace))
	_, err := cm.client.Write(b)
	return err
}

// Evict closes the client socket and transitions back to listening. The
// caller resets heartbeat bookkeeping alongside.
func (cm *ConnManager) Evict() {
	if cm.client != nil {
		cm.client.Close()
		cm.client = nil
	}
	cm.state = StateListening
}

// Close tears down both sockets.
func (cm *ConnManager) Close() error {
	cm.Evict()
	return cm.ln.Close()
}

// wouldBlock reports whether err is the normal non-blocking-I/O signal
// rather than a real failure.
func wouldBlock(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
