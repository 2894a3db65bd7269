// Package discovery locates candidate AACP peers among the host's paired
// and connected Bluetooth devices.
package discovery

import "github.com/go-aacp/aacp-session/internal/aacp"

// Peer is one Bluetooth device the host bluetooth stack knows about,
// together with the attributes discovery used to identify it as an
// AACP-capable device.
type Peer struct {
	Address aacp.PeerAddress
	Alias   string
	Paired  bool
}

// PeerProvider discovers candidate peers from whatever the host
// bluetooth stack exposes. The only implementation in this module talks
// to BlueZ over D-Bus; it is named as a collaborator so a session
// manager can depend on it without importing D-Bus types directly.
type PeerProvider interface {
	ConnectedPeers() ([]Peer, error)
}
