package aacp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestControlCommandRoundTrip encodes then parses a control command and
// checks identifier and value come back byte-for-byte.
func TestControlCommandRoundTrip(t *testing.T) {
	frame := EncodeControlCommand(CCSingleClickMode, []byte{0x03})

	payload, ok := StripHeader(frame)
	require.True(t, ok)

	s := newSessionState(nil, nil, nil)
	s.dispatch(frame, payload)

	require.Len(t, s.controlCommands, 1)
	assert.Equal(t, CCSingleClickMode, s.controlCommands[0].Identifier)
	assert.Equal(t, []byte{0x03}, s.controlCommands[0].Value)
}

func TestEncodeRenameShapesSizePrefixedBody(t *testing.T) {
	frame := EncodeRename("Pods")

	payload, ok := StripHeader(frame)
	require.True(t, ok)

	require.Len(t, payload, 4+len("Pods"))
	assert.Equal(t, byte(OpRename), payload[0])
	assert.Equal(t, byte(len("Pods")), payload[2])
	assert.Equal(t, "Pods", string(payload[4:]))
}

func TestEncodeProximityKeysRequestCombinesTypes(t *testing.T) {
	frame := EncodeProximityKeysRequest(ProximityKeyIRK, ProximityKeyEncKey)

	payload, ok := StripHeader(frame)
	require.True(t, ok)

	require.Len(t, payload, 4)
	assert.Equal(t, byte(OpProximityKeysRequest), payload[0])
	assert.Equal(t, byte(ProximityKeyIRK)|byte(ProximityKeyEncKey), payload[2])
}

func TestHandshakePacketHasNoHeader(t *testing.T) {
	hs := HandshakePacket()
	assert.Len(t, hs, 16)
	// the handshake is sent raw; StripHeader must reject it as misheadered
	// once its own first four bytes diverge from the frame header.
	_, ok := StripHeader(hs)
	assert.False(t, ok)
}

func TestSmartRoutingVariantLengths(t *testing.T) {
	self := PeerAddress{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	target := PeerAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	// want is the documented body length starting at the target MAC
	// (i.e. excluding the 2-byte SmartRouting opcode and the 4-byte
	// frame header), so total frame length is want+6.
	cases := []struct {
		name string
		body []byte
		want int
	}{
		{"media-info-new-device", EncodeSmartRoutingMediaInfoNewDevice(self, target), 112},
		{"hijack", EncodeSmartRoutingHijack(target), 106},
		{"media-info", EncodeSmartRoutingMediaInfo(self, target, true), 138},
		{"show-ui", EncodeSmartRoutingShowUI(target), 134},
		{"hijack-reversed", EncodeSmartRoutingHijackReversed(target), 97},
		// Not padded: the literal byte sequence is 86 bytes, which is
		// its 0x4E (78) length byte plus the MAC and length bytes.
		{"add-tipi", EncodeSmartRoutingAddTIPI(self, target), 86},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, tc.body, tc.want+6, "total frame length including header and opcode")
		})
	}
}

func smartRoutingBody(t *testing.T, frame []byte) []byte {
	t.Helper()
	payload, ok := StripHeader(frame)
	require.True(t, ok)
	require.Equal(t, byte(OpSmartRouting), payload[0])
	return payload[2:]
}

func TestSmartRoutingMediaInfoNewDeviceContent(t *testing.T) {
	self := PeerAddress{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	target := PeerAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	body := smartRoutingBody(t, EncodeSmartRoutingMediaInfoNewDevice(self, target))

	assert.Equal(t, []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}, body[:6], "target MAC reversed")
	assert.Contains(t, string(body), "playingApp")
	assert.Contains(t, string(body), "hostStreamingState")
	assert.Contains(t, string(body), "btAddress")
	assert.Contains(t, string(body), self.String(), "self MAC carried as ASCII")
	assert.Contains(t, string(body), "otherDevice")
	assert.Contains(t, string(body), "AudioCategory")
}

func TestSmartRoutingMediaInfoStreamingState(t *testing.T) {
	self := PeerAddress{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	target := PeerAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	streaming := smartRoutingBody(t, EncodeSmartRoutingMediaInfo(self, target, true))
	idle := smartRoutingBody(t, EncodeSmartRoutingMediaInfo(self, target, false))

	assert.Contains(t, string(streaming), "HostStreamingState\x42YES")
	assert.Contains(t, string(idle), "HostStreamingState\x42NO")
	assert.Contains(t, string(streaming), "com.google.ios.youtube")
}

func TestSmartRoutingHijackContent(t *testing.T) {
	target := PeerAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	body := smartRoutingBody(t, EncodeSmartRoutingHijack(target))

	assert.Equal(t, []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}, body[:6])
	assert.Contains(t, string(body), "Hijackv2")
	assert.Contains(t, string(body), "audioRoutingSetOwnershipToFalse")
	assert.Contains(t, string(body), "remotescore")
}

func TestSmartRoutingAddTIPIContent(t *testing.T) {
	self := PeerAddress{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	target := PeerAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	body := smartRoutingBody(t, EncodeSmartRoutingAddTIPI(self, target))

	assert.Contains(t, string(body), "idleTime")
	assert.Contains(t, string(body), "newTipi")
	assert.Contains(t, string(body), "btAddress")
	assert.Contains(t, string(body), self.String())
	assert.Contains(t, string(body), "nearbyAudioScore")
	assert.Equal(t, byte(0x0E), body[len(body)-1])
}
