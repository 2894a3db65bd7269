//go:build linux

package aacp

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// l2capPSM is the fixed Protocol/Service Multiplexer AACP is served on.
const l2capPSM = 0x1001

// cidPollInterval is how often the connect state machine polls the
// kernel for the negotiated L2CAP channel ID after connect(2) returns,
// and connectTimeout bounds that polling; the blocking connect(2) call
// made before it is not covered by this budget.
const (
	cidPollInterval = 200 * time.Millisecond
	connectTimeout  = 10 * time.Second
)

// sockaddrL2 mirrors struct sockaddr_l2 from <bluetooth/l2cap.h>. Field
// order and sizes must match the kernel ABI exactly since it is passed
// by raw pointer through the connect(2) syscall.
type sockaddrL2 struct {
	family     uint16
	psm        uint16
	bdaddr     [6]byte
	cid        uint16
	bdaddrType uint8
	_          [3]byte // structure padding to keep unsafe.Sizeof stable
}

// l2capSocket is a raw L2CAP SOCK_SEQPACKET socket connected to a single
// peer, used as the transport underneath a Session.
type l2capSocket struct {
	fd int
}

func dialL2CAP(peer PeerAddress) (*l2capSocket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, unix.BTPROTO_L2CAP)
	if err != nil {
		return nil, fmt.Errorf("aacp: creating L2CAP socket: %w", err)
	}

	addr := sockaddrL2{
		family: unix.AF_BLUETOOTH,
		psm:    l2capPSM,
		bdaddr: peer.reversed(),
	}

	_, _, errno := unix.Syscall(unix.SYS_CONNECT, uintptr(fd),
		uintptr(unsafe.Pointer(&addr)), unsafe.Sizeof(addr))
	if errno != 0 {
		_ = unix.Close(fd)
		if errno == unix.ENOTCONN || errno == unix.ECONNRESET {
			return nil, fmt.Errorf("%w: %v", ErrPeerDisconnectedDuringSetup, errno)
		}
		return nil, fmt.Errorf("aacp: connecting L2CAP socket: %w", errno)
	}

	return &l2capSocket{fd: fd}, nil
}

// waitForChannel polls the peer's negotiated CID until it becomes
// non-zero or the deadline passes, per the WaitingForCid state. The
// local (source) CID is assigned as soon as the socket is created and
// is never zero, so only the peer's address reflects whether L2CAP
// configuration has actually completed.
func (s *l2capSocket) waitForChannel(deadline time.Time) error {
	for {
		var addr sockaddrL2
		size := uint32(unsafe.Sizeof(addr))
		_, _, errno := unix.Syscall6(unix.SYS_GETPEERNAME, uintptr(s.fd),
			uintptr(unsafe.Pointer(&addr)), uintptr(unsafe.Pointer(&size)), 0, 0, 0)
		if errno == 0 && addr.cid != 0 {
			return nil
		}
		if errno == unix.ENOTCONN {
			return ErrPeerDisconnectedDuringSetup
		}
		if time.Now().After(deadline) {
			return ErrConnectTimeout
		}
		time.Sleep(cidPollInterval)
	}
}

func (s *l2capSocket) Read(buf []byte) (int, error) {
	return unix.Read(s.fd, buf)
}

func (s *l2capSocket) Write(buf []byte) (int, error) {
	return unix.Write(s.fd, buf)
}

func (s *l2capSocket) Close() error {
	return unix.Close(s.fd)
}
