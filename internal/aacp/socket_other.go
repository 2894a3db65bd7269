//go:build !linux

package aacp

import "time"

// l2capSocket is a stub on non-Linux platforms: L2CAP SOCK_SEQPACKET
// sockets are a BlueZ/Linux facility with no portable equivalent.
type l2capSocket struct{}

func dialL2CAP(peer PeerAddress) (*l2capSocket, error) {
	return nil, ErrUnsupportedPlatform
}

func (s *l2capSocket) waitForChannel(deadline time.Time) error {
	return ErrUnsupportedPlatform
}

func (s *l2capSocket) Read(buf []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func (s *l2capSocket) Write(buf []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func (s *l2capSocket) Close() error {
	return nil
}
