package aacp

import (
	"encoding/hex"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/go-aacp/aacp-session/internal/devicerecord"
)

// dispatch parses one inbound AACP frame and mutates shared state,
// emitting events as it goes. frame is the full buffer as read off the
// socket (including the 4-byte header); payload is the view returned by
// StripHeader (starting at the opcode byte).
//
// Short payloads, length mismatches, and unknown enum bytes are logged
// and the offending frame (or sub-entry) is discarded; they never panic
// and never corrupt shared state.
func (s *sessionState) dispatch(frame, payload []byte) {
	opcode := Opcode(payload[0])
	log := s.log.WithField("opcode", opcode)

	switch opcode {
	case OpBatteryInfo:
		s.dispatchBatteryInfo(payload, log)
	case OpControlCommand:
		s.dispatchControlCommand(payload, log)
	case OpEarDetection:
		s.dispatchEarDetection(frame, log)
	case OpConversationAware:
		s.dispatchConversationalAwareness(frame, log)
	case OpInformation:
		s.dispatchInformation(payload, log)
	case OpProximityKeysResp:
		s.dispatchProximityKeys(payload, log)
	case OpAudioSource:
		s.dispatchAudioSource(payload, log)
	case OpConnectedDevices:
		s.dispatchConnectedDevices(payload, log)
	case OpSmartRoutingResp:
		s.dispatchSmartRoutingResponse(payload, log)
	case OpStemPress, OpEqData:
		log.Debug("received log-only opcode")
	default:
		log.Debug("ignoring unknown opcode")
	}
}

func (s *sessionState) dispatchBatteryInfo(payload []byte, log *logrus.Entry) {
	if len(payload) < 3 {
		log.Warn("battery info packet too short")
		return
	}
	count := int(payload[2])
	if len(payload) < 3+5*count {
		log.Warn("battery info packet length mismatch")
		return
	}
	batteries := make([]Battery, 0, count)
	for i := 0; i < count; i++ {
		base := 3 + 5*i
		var component BatteryComponent
		switch payload[base] {
		case 0x02:
			component = BatteryComponentRight
		case 0x04:
			component = BatteryComponentLeft
		case 0x08:
			component = BatteryComponentCase
		default:
			log.WithField("raw", payload[base]).Warn("unknown battery component")
			continue
		}
		var status BatteryStatus
		switch payload[base+3] {
		case 0x01:
			status = BatteryCharging
		case 0x02:
			status = BatteryNotCharging
		case 0x04:
			status = BatteryDisconnected
		default:
			log.WithField("raw", payload[base+3]).Warn("unknown battery status")
			continue
		}
		batteries = append(batteries, Battery{Component: component, Level: payload[base+2], Status: status})
	}
	s.applyBatteryInfo(batteries)
}

func (s *sessionState) dispatchControlCommand(payload []byte, log *logrus.Entry) {
	if len(payload) < 7 {
		log.Warn("control command packet too short")
		return
	}
	identifierByte := payload[2]
	valueBytes := payload[3:7]

	identifier, known := IsKnownControlCommand(identifierByte)
	if !known {
		log.WithField("identifier", identifierByte).Warn("unknown control command identifier")
		return
	}

	lastNonZero := -1
	for i, b := range valueBytes {
		if b != 0 {
			lastNonZero = i
		}
	}
	var value []byte
	if lastNonZero == -1 {
		value = []byte{0}
	} else {
		value = append([]byte(nil), valueBytes[:lastNonZero+1]...)
	}

	s.applyControlCommand(identifier, value, valueBytes[0])
}

func (s *sessionState) dispatchEarDetection(frame []byte, log *logrus.Entry) {
	if len(frame) < 8 {
		log.Warn("ear detection frame too short")
		return
	}
	primary, okPrimary := earDetectionFromByte(frame[6])
	if !okPrimary {
		log.WithField("raw", frame[6]).Warn("unknown primary ear detection status")
	}
	secondary, okSecondary := earDetectionFromByte(frame[7])
	if !okSecondary {
		log.WithField("raw", frame[7]).Warn("unknown secondary ear detection status")
	}
	s.applyEarDetection(primary, secondary)
}

func (s *sessionState) dispatchConversationalAwareness(frame []byte, log *logrus.Entry) {
	if len(frame) != 10 {
		log.WithField("length", len(frame)).Debug("conversation awareness frame has unexpected length")
		return
	}
	s.applyConversationalAwareness(frame[9])
}

func (s *sessionState) dispatchInformation(payload []byte, log *logrus.Entry) {
	if len(payload) < 5 {
		log.Warn("information packet too short")
		return
	}
	data := payload[4:]

	idx := 0
	for idx < len(data) && data[idx] != 0x00 {
		idx++
	}

	var strs []string
	for idx < len(data) {
		for idx < len(data) && data[idx] == 0x00 {
			idx++
		}
		if idx >= len(data) {
			break
		}
		start := idx
		for idx < len(data) && data[idx] != 0x00 {
			idx++
		}
		strs = append(strs, string(data[start:idx]))
	}
	if len(strs) > 0 {
		strs = strs[1:] // drop the opaque leading token
	}

	field := func(i int) string {
		if i < len(strs) {
			return strs[i]
		}
		return ""
	}

	info := devicerecord.AirPodsInformation{
		Name:              field(0),
		ModelNumber:       field(1),
		Manufacturer:      field(2),
		SerialNumber:      field(3),
		Version1:          field(4),
		Version2:          field(5),
		HardwareRevision:  field(6),
		UpdaterIdentifier: field(7),
		LeftSerialNumber:  field(8),
		RightSerialNumber: field(9),
		Version3:          field(10),
	}
	s.mergeInformation(info)
}

func (s *sessionState) dispatchProximityKeys(payload []byte, log *logrus.Entry) {
	if len(payload) < 3 {
		log.Warn("proximity keys response too short")
		return
	}
	count := int(payload[2])
	offset := 3
	keys := make([]ProximityKey, 0, count)
	for i := 0; i < count; i++ {
		if offset+3 >= len(payload) {
			log.Warn("proximity keys response truncated in key header")
			return
		}
		keyType := ProximityKeyType(payload[offset])
		keyLength := int(payload[offset+2])
		offset += 4
		if offset+keyLength > len(payload) {
			log.Warn("proximity keys response truncated in key data")
			return
		}
		data := append([]byte(nil), payload[offset:offset+keyLength]...)
		keys = append(keys, ProximityKey{Type: keyType, Data: data})
		offset += keyLength
	}

	for _, k := range keys {
		switch k.Type {
		case ProximityKeyIRK, ProximityKeyEncKey:
			s.mergeProximityKey(k.Type, strings.ToLower(hex.EncodeToString(k.Data)))
		}
	}
	s.emitProximityKeys(keys)
}

func (s *sessionState) dispatchAudioSource(payload []byte, log *logrus.Entry) {
	if len(payload) < 9 {
		log.Warn("audio source packet too short")
		return
	}
	mac := macFromReversedHex(payload[2:8])
	kind := audioSourceKindFromByte(payload[8])
	s.applyAudioSource(AudioSource{MAC: mac, Kind: kind})
}

func (s *sessionState) dispatchConnectedDevices(payload []byte, log *logrus.Entry) {
	if len(payload) < 3 {
		log.Warn("connected devices packet too short")
		return
	}
	count := int(payload[2])
	if len(payload) < 3+8*count {
		log.Warn("connected devices packet length mismatch")
		return
	}
	devices := make([]ConnectedDevice, 0, count)
	for i := 0; i < count; i++ {
		base := 5 + 8*i
		if base+8 > len(payload) {
			log.Warn("connected devices packet truncated")
			return
		}
		mac := macFromForwardHex(payload[base : base+6])
		devices = append(devices, ConnectedDevice{MAC: mac, Info1: payload[base+6], Info2: payload[base+7]})
	}
	s.applyConnectedDevices(devices)
}

func (s *sessionState) dispatchSmartRoutingResponse(payload []byte, log *logrus.Entry) {
	if len(payload) < 2 {
		return
	}
	text := string(payload[2:])
	if strings.Contains(text, "SetOwnershipToFalse") {
		s.emitOwnershipToFalseRequest()
	}
}
