package aacp

import (
	"fmt"
	"strconv"
	"strings"
)

// PeerAddress is a 48-bit Bluetooth device address.
type PeerAddress [6]byte

// ParsePeerAddress parses a colon-separated hex MAC address such as
// "AA:BB:CC:DD:EE:FF" into a PeerAddress.
func ParsePeerAddress(s string) (PeerAddress, error) {
	var addr PeerAddress
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return addr, fmt.Errorf("aacp: invalid MAC address %q: want 6 octets", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return addr, fmt.Errorf("aacp: invalid MAC address %q: %w", s, err)
		}
		addr[i] = byte(v)
	}
	return addr, nil
}

// String renders the address as upper-case colon-separated hex.
func (a PeerAddress) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// reversed returns the address with its octets reversed, the order AACP
// uses on the wire for MAC fields in AudioSource and SmartRouting frames.
func (a PeerAddress) reversed() [6]byte {
	return [6]byte{a[5], a[4], a[3], a[2], a[1], a[0]}
}

// macFromReversedHex reads 6 bytes in reverse (least-significant-octet
// first) order and renders them as a colon-separated MAC string.
func macFromReversedHex(b []byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[5], b[4], b[3], b[2], b[1], b[0])
}

// macFromForwardHex reads 6 bytes in on-the-wire order and renders them
// as a colon-separated MAC string. ConnectedDevices uses this order,
// distinct from AudioSource and SmartRouting which reverse the octets.
func macFromForwardHex(b []byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

// BatteryComponent identifies which physical component a battery reading
// belongs to.
type BatteryComponent uint8

const (
	BatteryComponentRight BatteryComponent = 0x02
	BatteryComponentLeft  BatteryComponent = 0x04
	BatteryComponentCase  BatteryComponent = 0x08
)

func (c BatteryComponent) String() string {
	switch c {
	case BatteryComponentLeft:
		return "Left"
	case BatteryComponentRight:
		return "Right"
	case BatteryComponentCase:
		return "Case"
	default:
		return "Unknown"
	}
}

// BatteryStatus is the charging state reported alongside a battery level.
type BatteryStatus uint8

const (
	BatteryCharging     BatteryStatus = 0x01
	BatteryNotCharging  BatteryStatus = 0x02
	BatteryDisconnected BatteryStatus = 0x04
)

func (s BatteryStatus) String() string {
	switch s {
	case BatteryCharging:
		return "Charging"
	case BatteryNotCharging:
		return "NotCharging"
	case BatteryDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// Battery is a single component/level/status reading.
type Battery struct {
	Component BatteryComponent
	Level     uint8
	Status    BatteryStatus
}

// EarDetectionStatus is the in-ear/out-of-ear/in-case/disconnected state
// of one earbud.
type EarDetectionStatus uint8

const (
	EarInEar        EarDetectionStatus = 0x00
	EarOutOfEar     EarDetectionStatus = 0x01
	EarInCase       EarDetectionStatus = 0x02
	EarDisconnected EarDetectionStatus = 0x03
)

func (s EarDetectionStatus) String() string {
	switch s {
	case EarInEar:
		return "InEar"
	case EarOutOfEar:
		return "OutOfEar"
	case EarInCase:
		return "InCase"
	case EarDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// earDetectionFromByte maps a raw byte to an EarDetectionStatus, coercing
// unknown values to OutOfEar per spec (the caller logs the coercion).
func earDetectionFromByte(b byte) (EarDetectionStatus, bool) {
	switch b {
	case 0x00:
		return EarInEar, true
	case 0x01:
		return EarOutOfEar, true
	case 0x02:
		return EarInCase, true
	case 0x03:
		return EarDisconnected, true
	default:
		return EarOutOfEar, false
	}
}

// AudioSourceKind is the kind of audio currently routed to a device.
type AudioSourceKind uint8

const (
	AudioSourceNone  AudioSourceKind = 0x00
	AudioSourceCall  AudioSourceKind = 0x01
	AudioSourceMedia AudioSourceKind = 0x02
)

func (k AudioSourceKind) String() string {
	switch k {
	case AudioSourceCall:
		return "Call"
	case AudioSourceMedia:
		return "Media"
	default:
		return "None"
	}
}

func audioSourceKindFromByte(b byte) AudioSourceKind {
	switch b {
	case 0x01:
		return AudioSourceCall
	case 0x02:
		return AudioSourceMedia
	default:
		return AudioSourceNone
	}
}

// AudioSource pairs a device MAC with the kind of audio routed to it.
type AudioSource struct {
	MAC  string
	Kind AudioSourceKind
}

// ConnectedDevice is one entry from a ConnectedDevices notification.
type ConnectedDevice struct {
	MAC   string
	Info1 uint8
	Info2 uint8
	// Type is populated by an upstream consumer cross-referencing the
	// device record store; the core never sets it.
	Type *string
}

// ProximityKeyType identifies an encryption key kind carried in a
// ProximityKeysResponse frame.
type ProximityKeyType uint8

const (
	ProximityKeyIRK    ProximityKeyType = 0x01
	ProximityKeyEncKey ProximityKeyType = 0x04
)

func (t ProximityKeyType) String() string {
	switch t {
	case ProximityKeyIRK:
		return "IRK"
	case ProximityKeyEncKey:
		return "ENC_KEY"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
	}
}

// ProximityKey is a single (type, data) pair extracted from a
// ProximityKeysResponse frame.
type ProximityKey struct {
	Type ProximityKeyType
	Data []byte
}
