package aacp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState() *sessionState {
	return newSessionState(nil, nil, nil)
}

func dispatchFrame(s *sessionState, frame []byte) {
	payload, ok := StripHeader(frame)
	if !ok {
		return
	}
	s.dispatch(frame, payload)
}

// TestBatteryInfoScenario covers a battery notification carrying both
// earbuds at once.
func TestBatteryInfoScenario(t *testing.T) {
	s := newTestState()
	frame := []byte{0x04, 0x00, 0x04, 0x00, 0x04, 0x00, 0x02, 0x04, 0x01, 0x32, 0x01, 0x00, 0x02, 0x01, 0x28, 0x02, 0x00}

	dispatchFrame(s, frame)

	require.Len(t, s.battery, 2)
	assert.Equal(t, Battery{Component: BatteryComponentLeft, Level: 0x32, Status: BatteryCharging}, s.battery[0])
	assert.Equal(t, Battery{Component: BatteryComponentRight, Level: 0x28, Status: BatteryNotCharging}, s.battery[1])
}

// TestControlCommandTrimScenario checks that a four-byte value is
// trimmed to its minimal non-zero-suffix prefix.
func TestControlCommandTrimScenario(t *testing.T) {
	s := newTestState()
	frame := []byte{0x04, 0x00, 0x04, 0x00, 0x09, 0x00, 0x14, 0x03, 0x00, 0x00, 0x00}

	dispatchFrame(s, frame)

	require.Len(t, s.controlCommands, 1)
	assert.Equal(t, CCSingleClickMode, s.controlCommands[0].Identifier)
	assert.Equal(t, []byte{0x03}, s.controlCommands[0].Value)
	assert.False(t, s.owns)
}

// TestOwnershipFlipScenario checks that the ownership flag mirrors the
// OwnsConnection identifier's first value byte.
func TestOwnershipFlipScenario(t *testing.T) {
	s := newTestState()

	dispatchFrame(s, []byte{0x04, 0x00, 0x04, 0x00, 0x09, 0x00, 0x06, 0x01, 0x00, 0x00, 0x00})
	assert.True(t, s.owns)

	dispatchFrame(s, []byte{0x04, 0x00, 0x04, 0x00, 0x09, 0x00, 0x06, 0x00, 0x00, 0x00, 0x00})
	assert.False(t, s.owns)

	require.Len(t, s.controlCommands, 1)
	assert.Equal(t, []byte{0x00}, s.controlCommands[0].Value)
}

// TestEarDetectionScenario checks that each update shifts current into
// previous before recording the new reading.
func TestEarDetectionScenario(t *testing.T) {
	s := newTestState()

	dispatchFrame(s, []byte{0x04, 0x00, 0x04, 0x00, 0x06, 0x00, 0x00, 0x01})
	assert.Empty(t, s.earPrevious)
	assert.Equal(t, []EarDetectionStatus{EarInEar, EarOutOfEar}, s.earCurrent)

	dispatchFrame(s, []byte{0x04, 0x00, 0x04, 0x00, 0x06, 0x00, 0x02, 0x02})
	assert.Equal(t, []EarDetectionStatus{EarInEar, EarOutOfEar}, s.earPrevious)
	assert.Equal(t, []EarDetectionStatus{EarInCase, EarInCase}, s.earCurrent)
}

// TestAudioSourceMACOrderScenario checks that AudioSource reads its MAC
// octets in reverse order.
func TestAudioSourceMACOrderScenario(t *testing.T) {
	s := newTestState()
	frame := []byte{0x04, 0x00, 0x04, 0x00, 0x0E, 0x00, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x02}

	dispatchFrame(s, frame)

	require.NotNil(t, s.audioSource)
	assert.Equal(t, "FF:EE:DD:CC:BB:AA", s.audioSource.MAC)
	assert.Equal(t, AudioSourceMedia, s.audioSource.Kind)
}

// TestConnectedDevicesForwardMACOrder checks that ConnectedDevices uses
// forward octet order, distinct from AudioSource/SmartRouting.
func TestConnectedDevicesForwardMACOrder(t *testing.T) {
	s := newTestState()
	frame := []byte{
		0x04, 0x00, 0x04, 0x00, 0x2E, 0x00, 0x01, 0x00, 0x00,
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x01, 0x02,
	}

	dispatchFrame(s, frame)

	require.Len(t, s.connCurrent, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", s.connCurrent[0].MAC)
	assert.Equal(t, uint8(0x01), s.connCurrent[0].Info1)
	assert.Equal(t, uint8(0x02), s.connCurrent[0].Info2)
}

func TestConversationalAwarenessRequiresExactLength(t *testing.T) {
	s := newTestState()

	dispatchFrame(s, []byte{0x04, 0x00, 0x04, 0x00, 0x4B, 0x00, 0x00, 0x00, 0x00, 0x01})
	assert.Equal(t, uint8(0x01), s.conversationalAwareness)

	s2 := newTestState()
	dispatchFrame(s2, []byte{0x04, 0x00, 0x04, 0x00, 0x4B, 0x00, 0x01})
	assert.Equal(t, uint8(0), s2.conversationalAwareness)
}

func TestUnknownOpcodeIsIgnoredWithoutPanic(t *testing.T) {
	s := newTestState()
	assert.NotPanics(t, func() {
		dispatchFrame(s, []byte{0x04, 0x00, 0x04, 0x00, 0xFE, 0x00})
	})
}

func TestShortBatteryInfoPacketIsDiscarded(t *testing.T) {
	s := newTestState()
	dispatchFrame(s, []byte{0x04, 0x00, 0x04, 0x00, 0x04})
	assert.Nil(t, s.battery)
}
