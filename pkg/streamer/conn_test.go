package streamer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) *ConnManager {
	t.Helper()
	cm, err := Listen(0)
	require.NoError(t, err)
	t.Cleanup(func() { cm.Close() })
	return cm
}

func dial(t *testing.T, cm *ConnManager) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", cm.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestListenEphemeralPort(t *testing.T) {
	cm := listen(t)
	assert.Equal(t, StateListening, cm.State())
	assert.NotZero(t, cm.Addr().(*net.TCPAddr).Port)
}

func TestTryAcceptNothingPending(t *testing.T) {
	cm := listen(t)
	assert.False(t, cm.TryAccept())
	assert.Equal(t, StateListening, cm.State())
}

func TestTryAcceptAndPoll(t *testing.T) {
	cm := listen(t)
	c := dial(t, cm)

	require.Eventually(t, cm.TryAccept, time.Second, 10*time.Millisecond)
	assert.Equal(t, StateActive, cm.State())
	assert.NotEmpty(t, cm.RemoteAddr())

	// Nothing to read yet: the would-block signal is not an error.
	data, err := cm.PollIncoming()
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = c.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		data, err = cm.PollIncoming()
		return err == nil && len(data) == 3
	}, time.Second, 10*time.Millisecond)
}

func TestSendWithoutClientIsNoop(t *testing.T) {
	cm := listen(t)
	assert.NoError(t, cm.Send([]byte("dropped")))
}

func TestSendDeliversToClient(t *testing.T) {
	cm := listen(t)
	c := dial(t, cm)
	require.Eventually(t, cm.TryAccept, time.Second, 10*time.Millisecond)

	require.NoError(t, cm.Send([]byte("hello")))

	buf := make([]byte, 5)
	c.SetReadDeadline(time.Now().Add(time.Second))
	_, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), buf)
}

func TestPollIncomingClientGone(t *testing.T) {
	cm := listen(t)
	c := dial(t, cm)
	require.Eventually(t, cm.TryAccept, time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())

	require.Eventually(t, func() bool {
		_, err := cm.PollIncoming()
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestEvictReturnsToListening(t *testing.T) {
	cm := listen(t)
	c := dial(t, cm)
	require.Eventually(t, cm.TryAccept, time.Second, 10*time.Millisecond)

	cm.Evict()
	assert.Equal(t, StateListening, cm.State())
	assert.Empty(t, cm.RemoteAddr())

	// The evicted client sees the close.
	c.SetReadDeadline(time.Now().Add(time.Second))
	_, err := c.Read(make([]byte, 1))
	assert.Error(t, err)

	// And a new client can attach.
	dial(t, cm)
	require.Eventually(t, cm.TryAccept, time.Second, 10*time.Millisecond)
	assert.Equal(t, StateActive, cm.State())
}
