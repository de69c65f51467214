package protocol

import (
	"bytes"
	"hash/adler32"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumKnownValues(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    uint32
	}{
		{"empty", nil, 1},
		{"single zero byte", []byte{0}, 0x00010001},
		{"abc", []byte("abc"), 0x024d0127},
		{"wikipedia", []byte("Wikipedia"), 0x11E60398},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.payload))
		})
	}
}

func TestChecksumMatchesAdler32(t *testing.T) {
	// The block-deferred mod must agree with the reference implementation,
	// including across the block boundary.
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{1, 100, adlerBlock - 1, adlerBlock, adlerBlock + 1, 64 * 1024} {
		buf := make([]byte, n)
		rng.Read(buf)
		assert.Equal(t, adler32.Checksum(buf), Checksum(buf), "length %d", n)
	}
}

func TestChecksumDeterministic(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB, 0x12, 0x7F}, 1000)
	assert.Equal(t, Checksum(payload), Checksum(payload))
}

func TestChecksumSingleByteChange(t *testing.T) {
	payload := bytes.Repeat([]byte{0x55}, 4096)
	base := Checksum(payload)
	for _, i := range []int{0, 1, 2048, 4095} {
		mutated := append([]byte(nil), payload...)
		mutated[i] ^= 0x01
		assert.NotEqual(t, base, Checksum(mutated), "flip at %d", i)
	}
}

func TestChecksumOrderDependent(t *testing.T) {
	a := Checksum([]byte{1, 2, 3, 4})
	b := Checksum([]byte{4, 3, 2, 1})
	assert.NotEqual(t, a, b)
}
