package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAckRoundTrip(t *testing.T) {
	a := Ack{Token: 0x12345678}
	buf := a.Marshal()
	require.Len(t, buf, AckSize)

	got, err := UnmarshalAck(buf)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestUnmarshalAckTooShort(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		_, err := UnmarshalAck(make([]byte, n))
		assert.ErrorIs(t, err, ErrAckTooShort, "length %d", n)
	}
}

func TestUnmarshalAckBadMagic(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x12, 0x34, 0x56, 0x78}
	_, err := UnmarshalAck(buf)
	assert.ErrorIs(t, err, ErrBadMagic)
}
