package heartbeat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestShouldIssueFirstHeartbeatImmediately(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.ShouldIssue(base))
}

func TestShouldIssueCadence(t *testing.T) {
	tr := NewTracker()
	tr.Issue(0x1111, base)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"immediately after", 0, false},
		{"one frame later", 33 * time.Millisecond, false},
		{"just under interval", SendInterval - time.Millisecond, false},
		{"exactly at interval", SendInterval, true},
		{"past interval", SendInterval + time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.ShouldIssue(base.Add(tt.elapsed)))
		})
	}
}

func TestExpiry(t *testing.T) {
	tr := NewTracker()
	tr.Issue(0x2222, base)

	assert.False(t, tr.Expired(base))
	assert.False(t, tr.Expired(base.Add(Timeout-time.Millisecond)))
	assert.True(t, tr.Expired(base.Add(Timeout)))
	assert.True(t, tr.Expired(base.Add(time.Hour)))
}

func TestAcknowledgePreventsExpiry(t *testing.T) {
	tr := NewTracker()
	tr.Issue(0x3333, base)

	assert.True(t, tr.Acknowledge(0x3333))
	assert.Equal(t, 0, tr.Pending())
	assert.False(t, tr.Expired(base.Add(time.Hour)))
}

func TestAcknowledgeUnknownTokenIsNoop(t *testing.T) {
	tr := NewTracker()
	tr.Issue(0x4444, base)

	assert.False(t, tr.Acknowledge(0x9999))
	assert.Equal(t, 1, tr.Pending())
}

func TestMultipleOutstandingOneExpiredIsEnough(t *testing.T) {
	tr := NewTracker()
	tr.Issue(0x5555, base)
	tr.Issue(0x6666, base.Add(time.Minute))

	// First token is past deadline, second is not.
	at := base.Add(time.Minute + time.Second)
	assert.True(t, tr.Expired(at))

	// Acknowledging the stale one clears the condition.
	tr.Acknowledge(0x5555)
	assert.False(t, tr.Expired(at))
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.Issue(0x7777, base)
	tr.Reset()

	assert.Equal(t, 0, tr.Pending())
	assert.False(t, tr.Expired(base.Add(time.Hour)))
	assert.True(t, tr.ShouldIssue(base), "reset clears last send time")
}
