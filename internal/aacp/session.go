package aacp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-aacp/aacp-session/internal/devicerecord"
)

// SessionStatus is the connection state machine's current phase.
type SessionStatus int

const (
	StatusIdle SessionStatus = iota
	StatusConnecting
	StatusWaitingForCid
	StatusHandshaking
	StatusReady
	StatusClosed
)

func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusConnecting:
		return "Connecting"
	case StatusWaitingForCid:
		return "WaitingForCid"
	case StatusHandshaking:
		return "Handshaking"
	case StatusReady:
		return "Ready"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// sendQueueCapacity bounds the outbound command channel. Sends beyond
// this back up to the caller's Send call, which blocks until the send
// loop drains a slot; there is no drop policy.
const sendQueueCapacity = 128

// transport is the minimal socket surface Session depends on, satisfied
// by *l2capSocket on every platform (a stub returning ErrUnsupportedPlatform
// off Linux).
type transport interface {
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Close() error
	waitForChannel(deadline time.Time) error
}

// Session manages a single AACP connection to one peer: the connect and
// handshake state machine, the concurrent receive/transmit loops, and
// the shared state they both feed.
type Session struct {
	ID    string
	state *sessionState

	log    *logrus.Entry
	status SessionStatus

	sock transport
	out  chan []byte
	done chan struct{}
}

// SessionOption configures a new Session.
type SessionOption func(*Session)

// WithEventSink attaches the sink that receives every parsed event.
func WithEventSink(sink EventSink) SessionOption {
	return func(s *Session) { s.state.sink = sink }
}

// WithDeviceRecordStore attaches the persistence layer Information and
// ProximityKeysResponse frames are merged into.
func WithDeviceRecordStore(store *devicerecord.Store) SessionOption {
	return func(s *Session) { s.state.records = store }
}

// WithLogger attaches a logrus entry used for all session diagnostics.
func WithLogger(log *logrus.Entry) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession constructs a Session in the Idle state. Call Connect to
// bring it up.
func NewSession(opts ...SessionOption) *Session {
	id := newSessionID()
	log := logrus.NewEntry(logrus.StandardLogger()).WithField("session", id)

	s := &Session{
		ID:     id,
		log:    log,
		status: StatusIdle,
	}
	s.state = newSessionState(nil, nil, log)
	for _, opt := range opts {
		opt(s)
	}
	s.state.log = s.log.WithField("component", "aacp-state")
	return s
}

// Status returns the current connection state.
func (s *Session) Status() SessionStatus { return s.status }

// Connect dials the peer's L2CAP socket, waits for a channel ID, and
// starts the concurrent receive/transmit loops. It blocks until the
// session is Ready or setup fails. The 10-second connect budget bounds
// the wait for the channel ID; the blocking connect(2) call before that
// wait is not bounded by it.
//
// Connect does not itself send the handshake, feature-flags, or
// notification-request frames — the caller issues those (via
// SendHandshake, SendSetFeatureFlags, SendRequestNotifications) once
// Connect returns, in whatever order and timing it chooses.
func (s *Session) Connect(ctx context.Context, peer PeerAddress) error {
	if s.status != StatusIdle {
		return fmt.Errorf("aacp: session %s already %s", s.ID, s.status)
	}

	deadline := time.Now().Add(connectTimeout)
	s.state.setPeer(peer)

	s.status = StatusConnecting
	s.log.WithField("peer", peer.String()).Info("connecting")

	sock, err := dialL2CAP(peer)
	if err != nil {
		s.status = StatusClosed
		return err
	}
	s.sock = sock

	s.status = StatusWaitingForCid
	if err := sock.waitForChannel(deadline); err != nil {
		_ = sock.Close()
		s.status = StatusClosed
		return err
	}

	s.out = make(chan []byte, sendQueueCapacity)
	s.done = make(chan struct{})
	s.state.setSender(s.out)

	go s.recvLoop()
	go s.sendLoop()

	s.status = StatusReady
	s.log.Info("session ready")
	return nil
}

// recvLoop reads frames until the peer closes the socket (a zero-length
// read or io.EOF) or a read fails, dispatching each valid frame into
// shared state. A read error also clears the ownership/connected-devices/
// control-command shadows; on either exit the sender handle is dropped
// so concurrent Send* calls start failing with ErrNotConnected.
func (s *Session) recvLoop() {
	defer close(s.done)
	defer s.state.setSender(nil)

	buf := make([]byte, 1024)
	for {
		n, err := s.sock.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.WithError(err).Warn("recv loop terminating on read error")
				s.state.clearOnDisconnect()
			} else {
				s.log.Info("peer closed connection")
			}
			s.status = StatusClosed
			return
		}
		if n == 0 {
			s.log.Info("peer closed connection")
			s.status = StatusClosed
			return
		}

		frame := append([]byte(nil), buf[:n]...)
		payload, ok := StripHeader(frame)
		if !ok {
			s.log.Debug("dropping malformed frame")
			continue
		}
		s.state.dispatch(frame, payload)
	}
}

// sendLoop drains the bounded outbound queue and writes each frame to
// the socket, exiting once recvLoop signals teardown via done.
func (s *Session) sendLoop() {
	for {
		select {
		case frame, ok := <-s.out:
			if !ok {
				return
			}
			if _, err := s.sock.Write(frame); err != nil {
				s.log.WithError(err).Warn("send loop write failed")
			}
		case <-s.done:
			return
		}
	}
}

// send enqueues frame on the bounded outbound channel, blocking if it
// is full, and fails immediately if the session has no live sender.
func (s *Session) send(frame []byte) error {
	ch, ok := s.state.getSender()
	if !ok {
		return ErrNotConnected
	}
	ch <- frame
	return nil
}

// SendHandshake enqueues the fixed 16-byte handshake. The caller issues
// this once Connect returns, before relying on any notification data.
func (s *Session) SendHandshake() error {
	return s.send(HandshakePacket())
}

// SendSetFeatureFlags enqueues the feature-flags announcement frame.
func (s *Session) SendSetFeatureFlags() error {
	return s.send(EncodeSetFeatureFlags())
}

// SendRequestNotifications enqueues the frame subscribing to every
// notification category.
func (s *Session) SendRequestNotifications() error {
	return s.send(EncodeRequestNotifications())
}

// SendControlCommand encodes and enqueues a control-command request.
func (s *Session) SendControlCommand(identifier ControlCommandIdentifier, value []byte) error {
	return s.send(EncodeControlCommand(identifier, value))
}

// SendRename encodes and enqueues a device-rename request.
func (s *Session) SendRename(name string) error {
	return s.send(EncodeRename(name))
}

// SendProximityKeysRequest encodes and enqueues a request for one or
// more LE key kinds.
func (s *Session) SendProximityKeysRequest(types ...ProximityKeyType) error {
	return s.send(EncodeProximityKeysRequest(types...))
}

// SendSmartRouting enqueues one of the SmartRouting payload variants,
// chosen by the caller.
func (s *Session) SendSmartRouting(frame []byte) error {
	return s.send(frame)
}

// Subscribe registers sink for updates to a single control-command
// identifier, immediately delivering the current value if one has
// already been observed.
func (s *Session) Subscribe(identifier ControlCommandIdentifier, sink chan<- []byte) {
	s.state.Subscribe(identifier, sink)
}

// IsOwner reports whether this session currently owns the connection,
// mirrored from the most recent OwnsConnection control command.
func (s *Session) IsOwner() bool { return s.state.isOwner() }

// Close tears down the socket and waits for the receive loop to exit.
func (s *Session) Close() error {
	if s.sock == nil {
		return nil
	}
	err := s.sock.Close()
	if s.done != nil {
		<-s.done
	}
	s.status = StatusClosed
	return err
}
