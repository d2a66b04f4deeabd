// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

// LineConfig describes a line request: which lines to acquire and the
// direction and electrical configuration to apply to them. The zero
// value (plus offsets) is a plain input request: active-high, no edge
// detection, bias disabled.
//
// Validation happens at encode time; both kernel ABI generations reject
// edge detection on outputs and drive modes on inputs at the ioctl
// boundary, so the encoder refuses to emit them.
type LineConfig struct {
	// Offsets are the chip-wide offsets of the lines to request, in the
	// order that assigns their request-local bit positions. At most
	// MaxValues entries.
	Offsets []uint32

	// Direction of all requested lines.
	Direction Direction

	// Active state of the lines.
	Active Active

	// Edge selects edge detection. Input only.
	Edge EdgeDetect

	// Bias of the lines. Valid for both directions.
	Bias Bias

	// Drive mode of the lines. Output only.
	Drive Drive

	// Values are the initial values to drive. Output only. Bit i
	// applies to Offsets[i]; lines with a clear mask bit keep the
	// kernel default.
	Values *Values

	// Consumer labels the request holder. At most 31 bytes once
	// encoded.
	Consumer string
}

// Validate checks the structural constraints that are independent of
// the ABI generation.
func (c *LineConfig) Validate() error {
	if len(c.Offsets) > MaxValues {
		return invalidInput("too many lines")
	}
	if c.Direction == Output && c.Edge != EdgeDisable {
		return invalidInput("edge detection requires input direction")
	}
	if c.Direction == Input {
		if c.Drive != PushPull {
			return invalidInput("drive mode requires output direction")
		}
		if c.Values != nil {
			return invalidInput("initial values require output direction")
		}
	}
	return nil
}
