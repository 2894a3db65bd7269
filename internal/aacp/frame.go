package aacp

// header is the fixed 4-byte prefix every logical AACP packet begins
// with, in both directions.
var header = [4]byte{0x04, 0x00, 0x04, 0x00}

// minFrameLen is the shortest buffer StripHeader will accept: the 4-byte
// header plus one opcode byte.
const minFrameLen = 5

// handshakePacket is the literal 16-byte handshake sent as a raw packet
// (no header prepended) immediately after the L2CAP socket connects.
var handshakePacket = [16]byte{
	0x00, 0x00, 0x04, 0x00, 0x01, 0x00, 0x02, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// StripHeader validates that buf begins with the 4-byte AACP header and
// is long enough to carry an opcode, returning the "payload" view that
// begins at the opcode byte (inclusive). It reports ok=false for short or
// misheadered buffers, which callers must discard without further
// processing.
func StripHeader(buf []byte) (payload []byte, ok bool) {
	if len(buf) < minFrameLen {
		return nil, false
	}
	if buf[0] != header[0] || buf[1] != header[1] || buf[2] != header[2] || buf[3] != header[3] {
		return nil, false
	}
	return buf[4:], true
}

// ApplyHeader prepends the fixed 4-byte AACP header to a data packet
// body. Used for every outbound frame except the handshake, which is sent
// raw.
func ApplyHeader(body []byte) []byte {
	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header[:]...)
	out = append(out, body...)
	return out
}
