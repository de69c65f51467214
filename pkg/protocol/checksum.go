package protocol

// Rolling checksum over frame payloads (Adler-32). The value is embedded in
// every header; when the heartbeat flag is set it additionally serves as the
// liveness correlation token, so it must be a plain uint32 end-to-end and
// only ever formatted to bytes at the wire boundary.

const (
	adlerMod = 65521
	// adlerBlock is the largest n such that 255*n*(n+1)/2 + (n+1)*(adlerMod-1)
	// fits in 32 bits, allowing the mod to be deferred per block.
	adlerBlock = 5552
)

// Checksum computes the 32-bit rolling checksum of payload.
// Deterministic and order-dependent; an empty payload yields 1.
func Checksum(payload []byte) uint32 {
	var a, b uint32 = 1, 0
	for len(payload) > 0 {
		block := payload
		if len(block) > adlerBlock {
			block = block[:adlerBlock]
		}
		for _, c := range block {
			a += uint32(c)
			b += a
		}
		a %= adlerMod
		b %= adlerMod
		payload = payload[len(block):]
	}
	return b<<16 | a
}
