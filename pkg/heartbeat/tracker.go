package heartbeat

import "time"

const (
	// SendInterval is the liveness solicitation cadence.
	SendInterval = 60 * time.Second
	// Timeout is how long an issued heartbeat may remain unacknowledged.
	Timeout = 5 * time.Second
)

// Tracker owns the set of outstanding heartbeat tokens and their expiry
// deadlines. It is driven by the streaming coordinator once per frame and is
// not safe for concurrent use; the single frame-producing goroutine owns it.
//
// All operations take the caller's clock reading so expiry is evaluated
// opportunistically on frame cadence, never via a timer. If frames stop
// arriving, no heartbeat is issued or expired: the frame source is the clock
// for this stream.
type Tracker struct {
	pending  map[uint32]time.Time // token -> expiry deadline
	lastSend time.Time            // zero until the first issuance
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[uint32]time.Time),
	}
}

// ShouldIssue reports whether a new heartbeat is due: no heartbeat has ever
// been sent, or at least SendInterval has elapsed since the last one.
func (t *Tracker) ShouldIssue(now time.Time) bool {
	return t.lastSend.IsZero() || now.Sub(t.lastSend) >= SendInterval
}

// Issue records token as outstanding with a deadline of now+Timeout and
// marks now as the last issuance time.
func (t *Tracker) Issue(token uint32, now time.Time) {
	t.pending[token] = now.Add(Timeout)
	t.lastSend = now
}

// Acknowledge clears the outstanding entry for token and reports whether one
// existed. Late or unknown acks are a no-op, not an error.
func (t *Tracker) Acknowledge(token uint32) bool {
	if _, ok := t.pending[token]; !ok {
		return false
	}
	delete(t.pending, token)
	return true
}

// Expired reports whether any outstanding heartbeat has reached its
// deadline. A single expired entry declares the whole connection dead.
func (t *Tracker) Expired(now time.Time) bool {
	for _, deadline := range t.pending {
		if !deadline.After(now) {
			return true
		}
	}
	return false
}

// Pending returns the number of outstanding heartbeats.
func (t *Tracker) Pending() int {
	return len(t.pending)
}

// Reset clears all outstanding entries and the last issuance time. Called on
// client eviction and reconnect.
func (t *Tracker) Reset() {
	clear(t.pending)
	t.lastSend = time.Time{}
}
