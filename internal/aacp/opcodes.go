// Package aacp implements the AirPods Accessory Control Protocol: a
// framed command/notification protocol carried over a Bluetooth L2CAP
// sequenced-packet socket on a fixed PSM.
//
// Based on reverse engineering work captured upstream by the LibrePods
// project.
package aacp

// Opcode identifies the kind of an AACP frame, inbound or outbound.
type Opcode uint8

const (
	OpTipi3                Opcode = 0x0C
	OpEarDetection         Opcode = 0x06
	OpBatteryInfo          Opcode = 0x04
	OpControlCommand       Opcode = 0x09
	OpSendConnectedMac     Opcode = 0x14
	OpHeadTracking         Opcode = 0x17
	OpStemPress            Opcode = 0x19
	OpInformation          Opcode = 0x1D
	OpRename               Opcode = 0x1E
	OpConnectedDevices     Opcode = 0x2E
	OpAudioSource          Opcode = 0x0E
	OpProximityKeysRequest Opcode = 0x30
	OpProximityKeysResp    Opcode = 0x31
	OpSmartRouting         Opcode = 0x10
	OpSmartRoutingResp     Opcode = 0x11
	OpRequestNotifications Opcode = 0x0F
	OpConversationAware    Opcode = 0x4B
	OpSetFeatureFlags      Opcode = 0x4D
	OpEqData               Opcode = 0x53
)

// ControlCommandIdentifier is the closed set of control-command byte
// identifiers AACP recognizes. Names exist for logging only; the wire
// format only ever carries the byte.
type ControlCommandIdentifier uint8

const (
	CCMicMode                     ControlCommandIdentifier = 0x01
	CCButtonSendMode              ControlCommandIdentifier = 0x05
	CCVoiceTrigger                ControlCommandIdentifier = 0x12
	CCSingleClickMode             ControlCommandIdentifier = 0x14
	CCDoubleClickMode             ControlCommandIdentifier = 0x15
	CCClickHoldMode               ControlCommandIdentifier = 0x16
	CCDoubleClickInterval         ControlCommandIdentifier = 0x17
	CCClickHoldInterval           ControlCommandIdentifier = 0x18
	CCListeningModeConfigs        ControlCommandIdentifier = 0x1A
	CCOneBudAncMode               ControlCommandIdentifier = 0x1B
	CCCrownRotationDirection      ControlCommandIdentifier = 0x1C
	CCListeningMode               ControlCommandIdentifier = 0x0D
	CCAutoAnswerMode              ControlCommandIdentifier = 0x1E
	CCChimeVolume                 ControlCommandIdentifier = 0x1F
	CCVolumeSwipeInterval         ControlCommandIdentifier = 0x23
	CCCallManagementConfig        ControlCommandIdentifier = 0x24
	CCVolumeSwipeMode             ControlCommandIdentifier = 0x25
	CCAdaptiveVolumeConfig        ControlCommandIdentifier = 0x26
	CCSoftwareMuteConfig          ControlCommandIdentifier = 0x27
	CCConversationDetectConfig    ControlCommandIdentifier = 0x28
	CCSsl                         ControlCommandIdentifier = 0x29
	CCHearingAid                  ControlCommandIdentifier = 0x2C
	CCAutoAncStrength             ControlCommandIdentifier = 0x2E
	CCHpsGainSwipe                ControlCommandIdentifier = 0x2F
	CCHrmState                    ControlCommandIdentifier = 0x30
	CCInCaseToneConfig            ControlCommandIdentifier = 0x31
	CCSiriMultitoneConfig         ControlCommandIdentifier = 0x32
	CCHearingAssistConfig         ControlCommandIdentifier = 0x33
	CCAllowOffOption              ControlCommandIdentifier = 0x34
	CCStemConfig                  ControlCommandIdentifier = 0x39
	CCSleepDetectionConfig        ControlCommandIdentifier = 0x35
	CCAllowAutoConnect            ControlCommandIdentifier = 0x36
	CCEarDetectionConfig          ControlCommandIdentifier = 0x0A
	CCAutomaticConnectionConfig   ControlCommandIdentifier = 0x20
	CCOwnsConnection              ControlCommandIdentifier = 0x06
)

var controlCommandNames = map[ControlCommandIdentifier]string{
	CCMicMode:                   "Mic Mode",
	CCButtonSendMode:            "Button Send Mode",
	CCVoiceTrigger:              "Voice Trigger",
	CCSingleClickMode:           "Single Click Mode",
	CCDoubleClickMode:           "Double Click Mode",
	CCClickHoldMode:             "Click Hold Mode",
	CCDoubleClickInterval:       "Double Click Interval",
	CCClickHoldInterval:         "Click Hold Interval",
	CCListeningModeConfigs:      "Listening Mode Configs",
	CCOneBudAncMode:             "One Bud ANC Mode",
	CCCrownRotationDirection:    "Crown Rotation Direction",
	CCListeningMode:             "Listening Mode",
	CCAutoAnswerMode:            "Auto Answer Mode",
	CCChimeVolume:               "Chime Volume",
	CCVolumeSwipeInterval:       "Volume Swipe Interval",
	CCCallManagementConfig:      "Call Management Config",
	CCVolumeSwipeMode:           "Volume Swipe Mode",
	CCAdaptiveVolumeConfig:      "Adaptive Volume Config",
	CCSoftwareMuteConfig:        "Software Mute Config",
	CCConversationDetectConfig:  "Conversation Detect Config",
	CCSsl:                       "SSL",
	CCHearingAid:                "Hearing Aid",
	CCAutoAncStrength:           "Auto ANC Strength",
	CCHpsGainSwipe:              "HPS Gain Swipe",
	CCHrmState:                  "HRM State",
	CCInCaseToneConfig:          "In Case Tone Config",
	CCSiriMultitoneConfig:       "Siri Multitone Config",
	CCHearingAssistConfig:       "Hearing Assist Config",
	CCAllowOffOption:            "Allow Off Option",
	CCStemConfig:                "Stem Config",
	CCSleepDetectionConfig:      "Sleep Detection Config",
	CCAllowAutoConnect:          "Allow Auto Connect",
	CCEarDetectionConfig:        "Ear Detection Config",
	CCAutomaticConnectionConfig: "Automatic Connection Config",
	CCOwnsConnection:            "Owns Connection",
}

// String returns the human-readable name of a control command identifier,
// for logging only.
func (c ControlCommandIdentifier) String() string {
	if name, ok := controlCommandNames[c]; ok {
		return name
	}
	return "Unknown Control Command"
}

// IsKnownControlCommand reports whether b is a member of the closed
// control-command identifier enumeration.
func IsKnownControlCommand(b uint8) (ControlCommandIdentifier, bool) {
	id := ControlCommandIdentifier(b)
	_, ok := controlCommandNames[id]
	return id, ok
}
