package aacp

import "errors"

var (
	// ErrNotConnected is returned by Send* methods when the session has
	// no live socket (never connected, or the recv loop has already torn
	// it down).
	ErrNotConnected = errors.New("aacp: not connected")

	// ErrShortFrame names the condition of a payload too short for its
	// opcode. The parsers do not return it: they log such a frame and
	// discard it.
	ErrShortFrame = errors.New("aacp: frame too short")

	// ErrUnknownOpcode marks an opcode outside the dispatch table.
	ErrUnknownOpcode = errors.New("aacp: unknown opcode")

	// ErrUnknownIdentifier marks a control-command identifier byte
	// outside the closed enumeration.
	ErrUnknownIdentifier = errors.New("aacp: unknown control command identifier")

	// ErrConnectTimeout is returned when the connect/handshake state
	// machine fails to reach Ready within its 10-second budget.
	ErrConnectTimeout = errors.New("aacp: connect timed out")

	// ErrPeerDisconnectedDuringSetup corresponds to ENOTCONN observed
	// while polling for a non-zero L2CAP CID.
	ErrPeerDisconnectedDuringSetup = errors.New("aacp: peer disconnected during connection setup")

	// ErrUnsupportedPlatform is returned by the non-Linux socket stub:
	// L2CAP SOCK_SEQPACKET sockets are a BlueZ/Linux-only facility.
	ErrUnsupportedPlatform = errors.New("aacp: L2CAP sockets are only supported on linux")
)
