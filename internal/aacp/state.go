package aacp

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/go-aacp/aacp-session/internal/devicerecord"
)

// ControlCommandStatus is one entry of the control-command shadow: at
// most one per identifier, replaced in place on update.
type ControlCommandStatus struct {
	Identifier ControlCommandIdentifier
	Value      []byte
}

// sessionState is the single logical-lock-protected struct: every shadow
// field, the subscriber map, the event sink, the peer address, the
// device record store, and the outbound sender handle all live here,
// guarded by one mutex.
type sessionState struct {
	mu sync.Mutex

	peer     PeerAddress
	peerSet  bool
	sender   chan<- []byte // nil when disconnected

	controlCommands []ControlCommandStatus
	owns            bool

	battery []Battery

	earPrevious []EarDetectionStatus
	earCurrent  []EarDetectionStatus

	connPrevious []ConnectedDevice
	connCurrent  []ConnectedDevice

	audioSource *AudioSource

	conversationalAwareness uint8

	subscribers map[ControlCommandIdentifier][]chan<- []byte

	sink EventSink

	records *devicerecord.Store

	log *logrus.Entry
}

func newSessionState(records *devicerecord.Store, sink EventSink, log *logrus.Entry) *sessionState {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &sessionState{
		subscribers: make(map[ControlCommandIdentifier][]chan<- []byte),
		records:     records,
		sink:        sink,
		log:         log.WithField("component", "aacp-state"),
	}
}

func (s *sessionState) emit(e Event) {
	if s.sink != nil {
		s.sink.HandleAACPEvent(e)
	}
}

// setPeer records the session's target address; called once per Connect.
func (s *sessionState) setPeer(addr PeerAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peer = addr
	s.peerSet = true
}

func (s *sessionState) peerMAC() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.peerSet {
		return "", false
	}
	return s.peer.String(), true
}

// setSender stores the outbound channel created once the socket reaches
// WaitingForCid -> Ready; clearing it (nil) signals disconnection to
// send-side callers.
func (s *sessionState) setSender(ch chan<- []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = ch
}

func (s *sessionState) getSender() (chan<- []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sender == nil {
		return nil, false
	}
	return s.sender, true
}

// clearOnDisconnect resets the fields that must be cleared when the recv
// loop terminates due to a read error (not a clean peer close):
// ownership, connected devices, control command shadow.
func (s *sessionState) clearOnDisconnect() {
	s.mu.Lock()
	s.owns = false
	s.connCurrent = nil
	s.controlCommands = nil
	s.mu.Unlock()
}

// Subscribe registers sink for future updates to identifier and
// immediately delivers the current value, if one exists, before
// returning. Subsequent updates arrive on the same channel until the
// session tears down and drops all sender handles.
func (s *sessionState) Subscribe(identifier ControlCommandIdentifier, sink chan<- []byte) {
	s.mu.Lock()
	s.subscribers[identifier] = append(s.subscribers[identifier], sink)
	var current []byte
	var hasCurrent bool
	for _, cc := range s.controlCommands {
		if cc.Identifier == identifier {
			current = append([]byte(nil), cc.Value...)
			hasCurrent = true
			break
		}
	}
	s.mu.Unlock()

	if hasCurrent {
		trySend(sink, current)
	}
}

// trySend delivers a best-effort, non-blocking send. A closed or full
// subscriber channel is silently ignored per the error-handling policy;
// other subscribers still receive.
func trySend(ch chan<- []byte, v []byte) {
	defer func() { _ = recover() }()
	select {
	case ch <- v:
	default:
	}
}

func (s *sessionState) applyBatteryInfo(batteries []Battery) {
	s.mu.Lock()
	s.battery = batteries
	s.mu.Unlock()
	s.emit(BatteryInfoEvent{Batteries: batteries})
}

func (s *sessionState) applyControlCommand(identifier ControlCommandIdentifier, value []byte, rawFirstByte byte) {
	s.mu.Lock()
	found := false
	for i := range s.controlCommands {
		if s.controlCommands[i].Identifier == identifier {
			s.controlCommands[i].Value = value
			found = true
			break
		}
	}
	if !found {
		s.controlCommands = append(s.controlCommands, ControlCommandStatus{Identifier: identifier, Value: value})
	}
	if identifier == CCOwnsConnection {
		s.owns = rawFirstByte != 0
	}
	subs := s.subscribers[identifier]
	s.mu.Unlock()

	for _, sub := range subs {
		trySend(sub, value)
	}
	s.emit(ControlCommandEvent{Identifier: identifier, Value: value})
}

func (s *sessionState) isOwner() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owns
}

func (s *sessionState) applyEarDetection(primary, secondary EarDetectionStatus) {
	s.mu.Lock()
	s.earPrevious = s.earCurrent
	s.earCurrent = []EarDetectionStatus{primary, secondary}
	prev, cur := s.earPrevious, s.earCurrent
	s.mu.Unlock()
	s.emit(EarDetectionEvent{Previous: prev, Current: cur})
}

func (s *sessionState) applyConversationalAwareness(status uint8) {
	s.mu.Lock()
	s.conversationalAwareness = status
	s.mu.Unlock()
	s.emit(ConversationalAwarenessEvent{Status: status})
}

func (s *sessionState) applyAudioSource(src AudioSource) {
	s.mu.Lock()
	s.audioSource = &src
	s.mu.Unlock()
	s.emit(AudioSourceEvent{Source: src})
}

func (s *sessionState) applyConnectedDevices(devices []ConnectedDevice) {
	s.mu.Lock()
	s.connPrevious = s.connCurrent
	s.connCurrent = devices
	prev, cur := s.connPrevious, s.connCurrent
	s.mu.Unlock()
	s.emit(ConnectedDevicesEvent{Previous: prev, Current: cur})
}

func (s *sessionState) emitProximityKeys(keys []ProximityKey) {
	s.emit(ProximityKeysEvent{Keys: keys})
}

func (s *sessionState) emitOwnershipToFalseRequest() {
	s.emit(OwnershipToFalseRequestEvent{})
}

// mergeInformation persists AACP Information frame fields under the
// current peer MAC, preserving any existing LE keys.
func (s *sessionState) mergeInformation(info devicerecord.AirPodsInformation) {
	mac, ok := s.peerMAC()
	if !ok || s.records == nil {
		return
	}
	if err := s.records.MergeInformation(mac, info); err != nil {
		s.log.WithError(err).Error("failed to persist device information")
	}
}

// mergeProximityKey persists a single recovered LE key under the current
// peer MAC, creating a default AirPods record if one doesn't exist yet.
func (s *sessionState) mergeProximityKey(keyType ProximityKeyType, hexData string) {
	mac, ok := s.peerMAC()
	if !ok || s.records == nil {
		return
	}
	var dt devicerecord.ProximityKeyType
	switch keyType {
	case ProximityKeyIRK:
		dt = devicerecord.ProximityKeyIRK
	case ProximityKeyEncKey:
		dt = devicerecord.ProximityKeyEncKey
	default:
		return
	}
	if err := s.records.MergeProximityKey(mac, dt, hexData); err != nil {
		s.log.WithError(err).Error("failed to persist proximity key")
	}
}

// newSessionID mints the per-session correlation id attached to every
// log line a session emits, using google/uuid as the rest of the
// corpus's generic-purpose ID library does.
func newSessionID() string {
	return uuid.NewString()
}
