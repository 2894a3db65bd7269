package aacp

// This file builds the wire bytes for every outbound AACP message.
// Encoders return a full frame ready to write to the socket except for
// Handshake, which is sent raw with no 4-byte header. The SmartRouting
// payloads below are the reference client's literal key/value byte
// sequences (a loosely bplist-shaped blob of ASCII keys interleaved
// with single-byte type tags), parameterized only by MAC address and,
// for three variants, this host's own MAC (plus, for media-info, a
// streaming-state flag).

// HandshakePacket returns the fixed 16-byte handshake sent immediately
// after the L2CAP socket connects, before any framed traffic.
func HandshakePacket() []byte {
	out := make([]byte, len(handshakePacket))
	copy(out, handshakePacket[:])
	return out
}

// EncodeSetFeatureFlags builds the feature-flags announcement frame sent
// once during handshake, enabling every flag bit the reference client
// enables.
func EncodeSetFeatureFlags() []byte {
	return ApplyHeader([]byte{byte(OpSetFeatureFlags), 0x00, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
}

// EncodeRequestNotifications builds the frame subscribing to every
// notification category.
func EncodeRequestNotifications() []byte {
	return ApplyHeader([]byte{byte(OpRequestNotifications), 0x00, 0xFF, 0xFF, 0xFF, 0xFF})
}

// EncodeSslProbe builds the capability probe the reference client sends
// for the SSL control command during setup.
func EncodeSslProbe() []byte {
	body := []byte{byte(OpControlCommand), 0x00, byte(CCSsl), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	return ApplyHeader(body)
}

// EncodeRename builds a device-rename request. name is truncated
// silently if it would overflow a single byte length prefix.
func EncodeRename(name string) []byte {
	n := []byte(name)
	if len(n) > 255 {
		n = n[:255]
	}
	body := make([]byte, 0, 3+len(n))
	body = append(body, byte(OpRename), 0x00, byte(len(n)), 0x00)
	body = append(body, n...)
	return ApplyHeader(body)
}

// EncodeProximityKeysRequest builds a request for one or both LE key
// kinds. Passing both types ORs their bits together, matching the
// reference client's combined-request behavior.
func EncodeProximityKeysRequest(types ...ProximityKeyType) []byte {
	var mask byte
	for _, t := range types {
		mask |= byte(t)
	}
	return ApplyHeader([]byte{byte(OpProximityKeysRequest), 0x00, mask, 0x00})
}

// EncodeControlCommand builds an outbound control-command frame. value
// is zero-padded (or truncated) to the protocol's fixed 4-byte value
// field.
func EncodeControlCommand(identifier ControlCommandIdentifier, value []byte) []byte {
	var v [4]byte
	copy(v[:], value)
	return ApplyHeader([]byte{byte(OpControlCommand), 0x00, byte(identifier), v[0], v[1], v[2], v[3]})
}

// smartRoutingHeader is the fixed prefix shared by every SmartRouting
// payload variant, ahead of the MAC and variant-specific trailer.
var smartRoutingHeader = []byte{byte(OpSmartRouting), 0x00}

func macBytesReversed(mac PeerAddress) []byte {
	r := mac.reversed()
	return r[:]
}

// padTo appends zero bytes until body reaches n, matching the reference
// client's "while buffer.len() < n { push(0) }" trailer on the padded
// SmartRouting variants. It is a no-op if body is already at least n
// bytes.
func padTo(body []byte, n int) []byte {
	for len(body) < n {
		body = append(body, 0x00)
	}
	return body
}

// EncodeSmartRoutingMediaInfoNewDevice builds the variant sent the first
// time a newly seen device is offered media routing. selfMAC is this
// host's own Bluetooth address, carried in the btAddress field.
func EncodeSmartRoutingMediaInfoNewDevice(selfMAC, targetMAC PeerAddress) []byte {
	body := make([]byte, 0, 112)
	body = append(body, macBytesReversed(targetMAC)...)
	body = append(body, 0x68, 0x00)
	body = append(body, 0x01, 0xE5, 0x4A)
	body = append(body, "playingApp"...)
	body = append(body, 0x42)
	body = append(body, "NA"...)
	body = append(body, 0x52)
	body = append(body, "hostStreamingState"...)
	body = append(body, 0x42)
	body = append(body, "NO"...)
	body = append(body, 0x49)
	body = append(body, "btAddress"...)
	body = append(body, 0x51)
	body = append(body, selfMAC.String()...)
	body = append(body, 0x46)
	body = append(body, "btName"...)
	body = append(body, 0x43)
	body = append(body, "Mac"...)
	body = append(body, 0x58)
	body = append(body, "otherDevice"...)
	body = append(body, "AudioCategory"...)
	body = append(body, 0x30, 0x64)
	return ApplyHeader(append(append([]byte(nil), smartRoutingHeader...), body...))
}

// EncodeSmartRoutingHijack builds the variant that takes over ownership
// of an in-progress routing session.
func EncodeSmartRoutingHijack(targetMAC PeerAddress) []byte {
	body := make([]byte, 0, 106)
	body = append(body, macBytesReversed(targetMAC)...)
	body = append(body, 0x62, 0x00)
	body = append(body, 0x01, 0xE5)
	body = append(body, 0x4A)
	body = append(body, "localscore"...)
	body = append(body, 0x30, 0x64)
	body = append(body, 0x46)
	body = append(body, "reason"...)
	body = append(body, 0x48)
	body = append(body, "Hijackv2"...)
	body = append(body, 0x51)
	body = append(body, "audioRoutingScore"...)
	body = append(body, 0x31, 0x2D, 0x01, 0x5F)
	body = append(body, "audioRoutingSetOwnershipToFalse"...)
	body = append(body, 0x01)
	body = append(body, 0x4B)
	body = append(body, "remotescore"...)
	body = append(body, 0xA5)
	body = padTo(body, 106)
	return ApplyHeader(append(append([]byte(nil), smartRoutingHeader...), body...))
}

// EncodeSmartRoutingMediaInfo builds the steady-state media routing
// update, with streaming set according to whether media is currently
// playing. selfMAC is this host's own Bluetooth address.
func EncodeSmartRoutingMediaInfo(selfMAC, targetMAC PeerAddress, streaming bool) []byte {
	body := make([]byte, 0, 138)
	body = append(body, macBytesReversed(targetMAC)...)
	body = append(body, 0x82, 0x00)
	body = append(body, 0x01, 0xE5, 0x4A)
	body = append(body, "PlayingApp"...)
	body = append(body, 0x56)
	body = append(body, "com.google.ios.youtube"...)
	body = append(body, 0x52)
	body = append(body, "HostStreamingState"...)
	body = append(body, 0x42)
	if streaming {
		body = append(body, "YES"...)
	} else {
		body = append(body, "NO"...)
	}
	body = append(body, 0x49)
	body = append(body, "btAddress"...)
	body = append(body, 0x51)
	body = append(body, selfMAC.String()...)
	body = append(body, "btName"...)
	body = append(body, 0x43)
	body = append(body, "Mac"...)
	body = append(body, 0x58)
	body = append(body, "otherDevice"...)
	body = append(body, "AudioCategory"...)
	body = append(body, 0x31, 0x2D, 0x01)
	body = padTo(body, 138)
	return ApplyHeader(append(append([]byte(nil), smartRoutingHeader...), body...))
}

// EncodeSmartRoutingShowUI builds the variant that prompts the device to
// surface a routing-switch UI.
func EncodeSmartRoutingShowUI(targetMAC PeerAddress) []byte {
	body := make([]byte, 0, 134)
	body = append(body, macBytesReversed(targetMAC)...)
	body = append(body, 0x7E, 0x00)
	body = append(body, 0x01, 0xE6, 0x5B)
	body = append(body, "SmartRoutingKeyShowNearbyUI"...)
	body = append(body, 0x01)
	body = append(body, 0x4A)
	body = append(body, "localscore"...)
	body = append(body, 0x31, 0x2D)
	body = append(body, 0x01)
	body = append(body, 0x46)
	body = append(body, "reasonHhijackv2"...)
	body = append(body, 0x51)
	body = append(body, "audioRoutingScore"...)
	body = append(body, 0xA2)
	body = append(body, 0x5F)
	body = append(body, "audioRoutingSetOwnershipToFalse"...)
	body = append(body, 0x01)
	body = append(body, 0x4B)
	body = append(body, "remotescore"...)
	body = append(body, 0xA2)
	body = padTo(body, 134)
	return ApplyHeader(append(append([]byte(nil), smartRoutingHeader...), body...))
}

// EncodeSmartRoutingHijackReversed builds the variant used when the
// hijack originates from the peer side.
func EncodeSmartRoutingHijackReversed(targetMAC PeerAddress) []byte {
	body := make([]byte, 0, 97)
	body = append(body, macBytesReversed(targetMAC)...)
	body = append(body, 0x59, 0x00)
	body = append(body, 0x01, 0xE3)
	body = append(body, 0x5F)
	body = append(body, "audioRoutingSetOwnershipToFalse"...)
	body = append(body, 0x01)
	body = append(body, 0x59)
	body = append(body, "audioRoutingShowReverseUI"...)
	body = append(body, 0x01)
	body = append(body, 0x46)
	body = append(body, "reason"...)
	body = append(body, 0x53)
	body = append(body, "ReverseBannerTapped"...)
	body = padTo(body, 97)
	return ApplyHeader(append(append([]byte(nil), smartRoutingHeader...), body...))
}

// EncodeSmartRoutingAddTIPI builds the variant that registers a device
// into the TIPI routing group. selfMAC is this host's own Bluetooth
// address. Like the new-device variant, it is not padded to a fixed
// length: its 86-byte body is exactly the literal byte sequence below.
func EncodeSmartRoutingAddTIPI(selfMAC, targetMAC PeerAddress) []byte {
	body := make([]byte, 0, 86)
	body = append(body, macBytesReversed(targetMAC)...)
	body = append(body, 0x4E, 0x00)
	body = append(body, 0x01, 0xE5)
	body = append(body, 0x48)
	body = append(body, "idleTime"...)
	body = append(body, 0x08, 0x47)
	body = append(body, "newTipi"...)
	body = append(body, 0x01, 0x49)
	body = append(body, "btAddress"...)
	body = append(body, 0x51)
	body = append(body, selfMAC.String()...)
	body = append(body, 0x46)
	body = append(body, "btName"...)
	body = append(body, 0x43)
	body = append(body, "Mac"...)
	body = append(body, 0x50)
	body = append(body, "nearbyAudioScore"...)
	body = append(body, 0x0E)
	return ApplyHeader(append(append([]byte(nil), smartRoutingHeader...), body...))
}
