package protocol

const (
	// Magic identifies a camlink stream packet.
	Magic uint16 = 0xFB42
	// Version is the wire format version.
	Version uint16 = 0x0000
	// EncodingH264 is the only payload encoding currently defined
	// (byte-stream-aligned H.264 elementary stream).
	EncodingH264 uint16 = 0x0001

	// Protocol Flags
	FlagHeartbeat uint32 = 1 << 0 // frame doubles as a liveness probe

	// HeaderSize is the fixed size of a stream packet header.
	HeaderSize = 32
	// AckSize is the size of a client acknowledgment packet.
	AckSize = 6

	// Defaults supplied to header construction by the launch layer.
	DefaultPort   = 49001
	DefaultWidth  = 1280
	DefaultHeight = 720
)
