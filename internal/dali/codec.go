package dali

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Valid setpoint ranges.
const (
	// MinIntensity and MaxIntensity bound the percent intensity channel.
	MinIntensity = 0
	MaxIntensity = 100

	// MinCCT and MaxCCT bound the DT8 colour temperature channel, in Kelvin.
	MinCCT = 1800
	MaxCCT = 6500
)

// Broadcast addressing.
const (
	// BroadcastCommandAddress addresses all gear with a command frame
	// (selector bit set).
	BroadcastCommandAddress byte = 0xFF

	// BroadcastArcAddress addresses all gear with a direct arc power frame
	// (selector bit clear).
	BroadcastArcAddress byte = 0xFE
)

// Basic mode protocol constants. These are fixed by the protocol, not tunable.
const (
	// basicMaxThreshold is the intensity above which RECALL MAX LEVEL is used.
	basicMaxThreshold = 70

	// arcPowerMax is the maximum direct arc power value.
	arcPowerMax = 254

	// cctWordMax is the maximum value of the 16-bit DT8 colour temperature word.
	cctWordMax = 65535
)

// ClampIntensity clamps an intensity value to the valid 0-100 range.
// Fractional inputs are handled upstream; this is an integer clamp.
func ClampIntensity(intensity int) int {
	if intensity < MinIntensity {
		return MinIntensity
	}
	if intensity > MaxIntensity {
		return MaxIntensity
	}
	return intensity
}

// ClampCCT clamps a correlated colour temperature to the valid DT8 range.
func ClampCCT(cct int) int {
	if cct < MinCCT {
		return MinCCT
	}
	if cct > MaxCCT {
		return MaxCCT
	}
	return cct
}

// Command is a DT8 tunable-white command for luminaires with a CCT channel.
type Command struct {
	// Address is the destination address byte (broadcast by default).
	Address byte

	// Intensity is the clamped percent intensity, 0-100.
	Intensity byte

	// CCTWord is the colour temperature scaled onto the full 16-bit range:
	// 1800 K maps to 0x0000 and 6500 K to 0xFFFF.
	CCTWord uint16
}

// Frame returns the wire bytes: address, intensity, CCT word (big-endian).
func (c Command) Frame() []byte {
	buf := make([]byte, 4)
	buf[0] = c.Address
	buf[1] = c.Intensity
	binary.BigEndian.PutUint16(buf[2:4], c.CCTWord)
	return buf
}

// String returns a human-readable representation of the command.
func (c Command) String() string {
	return fmt.Sprintf("DT8{Addr:%02X, Intensity:%d, CCT:%dK}", c.Address, c.Intensity, DecodeCCTWord(c.CCTWord))
}

// EncodeTunableWhite encodes an intensity/CCT setpoint as a broadcast DT8
// command. Inputs are clamped first; encoding never fails.
//
// The CCT word is a linear scaling of [1800,6500] K onto [0,65535]:
//
//	word = round((cct-1800)/(6500-1800) * 65535)
//
// Parameters:
//   - intensity: Percent intensity (clamped to 0-100)
//   - cct: Colour temperature in Kelvin (clamped to 1800-6500)
//
// Returns:
//   - Command: Encoded DT8 command addressed to broadcast
func EncodeTunableWhite(intensity, cct int) Command {
	return Command{
		Address:   BroadcastCommandAddress,
		Intensity: byte(ClampIntensity(intensity)),
		CCTWord:   EncodeCCTWord(cct),
	}
}

// EncodeCCTWord scales a colour temperature in Kelvin onto the 16-bit
// DT8 temperature range. The input is clamped to the valid range first.
func EncodeCCTWord(cct int) uint16 {
	clamped := ClampCCT(cct)
	scale := float64(clamped-MinCCT) / float64(MaxCCT-MinCCT)
	return uint16(math.Round(scale * cctWordMax))
}

// DecodeCCTWord converts a 16-bit DT8 temperature word back to Kelvin.
// Used for diagnostics; the round trip is exact at the word's resolution.
func DecodeCCTWord(word uint16) int {
	scale := float64(word) / cctWordMax
	return MinCCT + int(math.Round(scale*float64(MaxCCT-MinCCT)))
}

// BasicOpcode identifies the broadcast-mode command variant.
type BasicOpcode byte

// Basic mode opcodes.
const (
	// OpcodeRecallMaxLevel recalls the gear's configured maximum level.
	OpcodeRecallMaxLevel BasicOpcode = 0x05

	// OpcodeRecallMinLevel recalls the gear's configured minimum level.
	OpcodeRecallMinLevel BasicOpcode = 0x06

	// OpcodeDirectArcPower marks a direct arc power (DAPC) frame. The frame
	// carries the level in the data byte rather than an opcode.
	OpcodeDirectArcPower BasicOpcode = 0x00
)

// String returns the opcode's protocol name.
func (op BasicOpcode) String() string {
	switch op {
	case OpcodeRecallMaxLevel:
		return "RECALL_MAX_LEVEL"
	case OpcodeRecallMinLevel:
		return "RECALL_MIN_LEVEL"
	case OpcodeDirectArcPower:
		return "DIRECT_ARC_POWER"
	default:
		return fmt.Sprintf("UNKNOWN(%02X)", byte(op))
	}
}

// BasicCommand is a broadcast-only command for gear without a CCT channel.
type BasicCommand struct {
	// Opcode selects the command variant.
	Opcode BasicOpcode

	// ArcPower is the direct arc power level, 0-254.
	// Only meaningful when Opcode is OpcodeDirectArcPower.
	ArcPower byte
}

// Frame returns the two-byte DALI forward frame.
//
// DAPC frames use the arc address (selector bit clear) with the level in
// the data byte; command frames use the command address (selector bit set)
// with the opcode in the data byte.
func (c BasicCommand) Frame() []byte {
	if c.Opcode == OpcodeDirectArcPower {
		return []byte{BroadcastArcAddress, c.ArcPower}
	}
	return []byte{BroadcastCommandAddress, byte(c.Opcode)}
}

// String returns a human-readable representation of the command.
func (c BasicCommand) String() string {
	if c.Opcode == OpcodeDirectArcPower {
		return fmt.Sprintf("Basic{DIRECT_ARC_POWER %d}", c.ArcPower)
	}
	return fmt.Sprintf("Basic{%s}", c.Opcode)
}

// EncodeBasic encodes an intensity setpoint as a broadcast-only command.
//
// Three mutually exclusive cases:
//
//   - intensity <= 0: RECALL MIN LEVEL
//   - intensity > 70: RECALL MAX LEVEL
//   - otherwise: direct arc power with arc = round(intensity/100 * 254)
//
// The 70 threshold and 254 scale factor are protocol constants.
// There is no CCT channel in this mode.
func EncodeBasic(intensity int) BasicCommand {
	clamped := ClampIntensity(intensity)

	switch {
	case clamped <= MinIntensity:
		return BasicCommand{Opcode: OpcodeRecallMinLevel}
	case clamped > basicMaxThreshold:
		return BasicCommand{Opcode: OpcodeRecallMaxLevel}
	default:
		arc := byte(math.Round(float64(clamped) / MaxIntensity * arcPowerMax))
		return BasicCommand{Opcode: OpcodeDirectArcPower, ArcPower: arc}
	}
}
