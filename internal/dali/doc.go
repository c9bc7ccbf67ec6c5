// Package dali implements the DALI wire encodings used by Lumen Core.
//
// Two command shapes are supported:
//
//   - DT8 tunable white: an address byte, an intensity byte, and a 16-bit
//     colour temperature word (big-endian), for luminaires with a CCT channel.
//   - Basic broadcast: single-byte level commands (RECALL MIN LEVEL,
//     RECALL MAX LEVEL, direct arc power) for gear with no CCT channel.
//
// All encoders are pure functions. Out-of-range inputs are clamped, never
// rejected: the codec is the last line of defence before the bus, and a
// luminaire must always receive a valid frame.
//
// # Value Ranges
//
//   - Intensity: 0-100 (percent)
//   - Colour temperature: 1800-6500 K, scaled linearly onto 0-65535
//
// # Usage
//
//	cmd := dali.EncodeTunableWhite(80, 4000)
//	frame := cmd.Frame() // [addr, intensity, cct_hi, cct_lo]
//
//	basic := dali.EncodeBasic(40)
//	// basic.Opcode == dali.OpcodeDirectArcPower, basic.ArcPower == 102
package dali
