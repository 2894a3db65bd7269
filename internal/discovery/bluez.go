package discovery

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/go-aacp/aacp-session/internal/aacp"
)

const (
	bluezService = "org.bluez"
	nameHint     = "AirPods"
)

// BlueZProvider discovers connected devices via the BlueZ ObjectManager,
// filtering for devices whose alias suggests they are AirPods.
type BlueZProvider struct {
	conn *dbus.Conn
}

// NewBlueZProvider opens a system bus connection for device discovery.
func NewBlueZProvider() (*BlueZProvider, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("discovery: connecting to system bus: %w", err)
	}
	return &BlueZProvider{conn: conn}, nil
}

// ConnectedPeers lists every connected Bluetooth device BlueZ reports
// whose alias contains "AirPods".
func (p *BlueZProvider) ConnectedPeers() ([]Peer, error) {
	obj := p.conn.Object(bluezService, dbus.ObjectPath("/"))
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := obj.Call("org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0).Store(&objects); err != nil {
		return nil, fmt.Errorf("discovery: listing managed objects: %w", err)
	}
	return peersFromManagedObjects(objects), nil
}

// peersFromManagedObjects walks the BlueZ ObjectManager snapshot looking
// for connected org.bluez.Device1 objects with an AirPods-like alias.
func peersFromManagedObjects(objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant) []Peer {
	var peers []Peer
	for _, ifaces := range objects {
		props, ok := ifaces["org.bluez.Device1"]
		if !ok {
			continue
		}
		alias, _ := props["Alias"].Value().(string)
		if !strings.Contains(alias, nameHint) {
			continue
		}
		connected, _ := props["Connected"].Value().(bool)
		if !connected {
			continue
		}
		addrStr, _ := props["Address"].Value().(string)
		paired, _ := props["Paired"].Value().(bool)

		addr, err := aacp.ParsePeerAddress(addrStr)
		if err != nil {
			continue
		}
		peers = append(peers, Peer{Address: addr, Alias: alias, Paired: paired})
	}
	return peers
}

// Close closes the underlying D-Bus connection.
func (p *BlueZProvider) Close() error {
	return p.conn.Close()
}
