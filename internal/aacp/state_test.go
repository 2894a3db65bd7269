package aacp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber delivery")
		return nil
	}
}

// TestSubscribeThenUpdateDeliversLatest checks that a subscriber
// registered before any update still receives it.
func TestSubscribeThenUpdateDeliversLatest(t *testing.T) {
	s := newTestState()
	ch := make(chan []byte, 4)

	s.Subscribe(CCMicMode, ch)
	s.applyControlCommand(CCMicMode, []byte{0x01}, 0x01)

	assert.Equal(t, []byte{0x01}, recv(t, ch))
}

// TestUpdateThenSubscribeDeliversCurrentValue checks that a subscriber
// that arrives after an update still gets the current value
// immediately.
func TestUpdateThenSubscribeDeliversCurrentValue(t *testing.T) {
	s := newTestState()
	s.applyControlCommand(CCMicMode, []byte{0x02}, 0x02)

	ch := make(chan []byte, 4)
	s.Subscribe(CCMicMode, ch)

	assert.Equal(t, []byte{0x02}, recv(t, ch))

	s.applyControlCommand(CCMicMode, []byte{0x03}, 0x03)
	assert.Equal(t, []byte{0x03}, recv(t, ch))
}

func TestSubscribeWithNoCurrentValueDeliversNothingYet(t *testing.T) {
	s := newTestState()
	ch := make(chan []byte, 1)

	s.Subscribe(CCMicMode, ch)

	select {
	case v := <-ch:
		t.Fatalf("expected no delivery yet, got %v", v)
	default:
	}
}

func TestTrySendIgnoresClosedChannel(t *testing.T) {
	ch := make(chan []byte)
	close(ch)
	assert.NotPanics(t, func() {
		trySend(ch, []byte{0x01})
	})
}

// TestClearOnDisconnect checks the shadow fields a disconnect must
// reset.
func TestClearOnDisconnect(t *testing.T) {
	s := newTestState()
	s.applyControlCommand(CCOwnsConnection, []byte{0x01}, 0x01)
	s.applyConnectedDevices([]ConnectedDevice{{MAC: "AA:BB:CC:DD:EE:FF"}})

	require.True(t, s.owns)
	require.Len(t, s.connCurrent, 1)
	require.Len(t, s.controlCommands, 1)

	s.clearOnDisconnect()

	assert.False(t, s.owns)
	assert.Empty(t, s.connCurrent)
	assert.Empty(t, s.controlCommands)
}

func TestOwnershipFlagMirrorsOwnsConnectionIdentifier(t *testing.T) {
	s := newTestState()

	s.applyControlCommand(CCOwnsConnection, []byte{0x01}, 0x01)
	assert.True(t, s.isOwner())

	s.applyControlCommand(CCOwnsConnection, []byte{0x00}, 0x00)
	assert.False(t, s.isOwner())
}

func TestEmitFansOutToSink(t *testing.T) {
	var got Event
	sink := EventSinkFunc(func(e Event) { got = e })
	s := newSessionState(nil, sink, nil)

	s.applyBatteryInfo([]Battery{{Component: BatteryComponentCase, Level: 90, Status: BatteryCharging}})

	ev, ok := got.(BatteryInfoEvent)
	require.True(t, ok)
	assert.Equal(t, BatteryComponentCase, ev.Batteries[0].Component)
}
