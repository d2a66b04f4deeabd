// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the configured direction of a GPIO line.
type Direction uint8

const (
	// Input lines are read from (default).
	Input Direction = iota
	// Output lines are driven by the request holder.
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// ParseDirection parses a direction name or alias.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "i", "in", "input":
		return Input, nil
	case "o", "out", "output":
		return Output, nil
	}
	return Input, invalidInput("not recognized direction")
}

// Active is the polarity of a line: with ActiveLow the electrical level
// is inverted from the logical one.
type Active uint8

const (
	// ActiveHigh means physical and logical levels agree (default).
	ActiveHigh Active = iota
	// ActiveLow inverts the physical level from the logical one.
	ActiveLow
)

func (a Active) String() string {
	if a == ActiveLow {
		return "low"
	}
	return "high"
}

// ParseActive parses an active-state name or alias.
func ParseActive(s string) (Active, error) {
	switch s {
	case "l", "lo", "low", "active-low":
		return ActiveLow, nil
	case "h", "hi", "high", "active-high":
		return ActiveHigh, nil
	}
	return ActiveHigh, invalidInput("not recognized active state")
}

// EdgeDetect selects which level transitions the kernel reports on an
// input line.
type EdgeDetect uint8

const (
	// EdgeDisable turns edge detection off (default).
	EdgeDisable EdgeDetect = iota
	// EdgeRising reports low-to-high transitions only.
	EdgeRising
	// EdgeFalling reports high-to-low transitions only.
	EdgeFalling
	// EdgeBoth reports both transitions.
	EdgeBoth
)

func (e EdgeDetect) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	}
	return "disable"
}

// ParseEdgeDetect parses an edge-detect name or alias.
func ParseEdgeDetect(s string) (EdgeDetect, error) {
	switch s {
	case "d", "dis", "disable":
		return EdgeDisable, nil
	case "r", "rise", "rising":
		return EdgeRising, nil
	case "f", "fall", "falling":
		return EdgeFalling, nil
	case "b", "both", "rise-fall", "rising-falling":
		return EdgeBoth, nil
	}
	return EdgeDisable, invalidInput("not recognized edge-detect")
}

// Bias is the input bias of a line: pulling it to the power rail or to
// ground through a resistor to avoid a floating level.
type Bias uint8

const (
	// BiasDisable leaves the line floating (default).
	BiasDisable Bias = iota
	// BiasPullUp pulls the line up.
	BiasPullUp
	// BiasPullDown pulls the line down.
	BiasPullDown
)

func (b Bias) String() string {
	switch b {
	case BiasPullUp:
		return "pull-up"
	case BiasPullDown:
		return "pull-down"
	}
	return "disable"
}

// ParseBias parses a bias name or alias.
func ParseBias(s string) (Bias, error) {
	switch s {
	case "d", "dis", "disable":
		return BiasDisable, nil
	case "pu", "pull-up":
		return BiasPullUp, nil
	case "pd", "pull-down":
		return BiasPullDown, nil
	}
	return BiasDisable, invalidInput("not recognized input bias")
}

// Drive is the electrical drive mode of an output line.
type Drive uint8

const (
	// PushPull drives the line both high and low (default).
	PushPull Drive = iota
	// OpenDrain only drives the line low.
	OpenDrain
	// OpenSource only drives the line high.
	OpenSource
)

func (d Drive) String() string {
	switch d {
	case OpenDrain:
		return "open-drain"
	case OpenSource:
		return "open-source"
	}
	return "push-pull"
}

// ParseDrive parses a drive-mode name or alias.
func ParseDrive(s string) (Drive, error) {
	switch s {
	case "pp", "push-pull":
		return PushPull, nil
	case "od", "open-drain":
		return OpenDrain, nil
	case "os", "open-source":
		return OpenSource, nil
	}
	return PushPull, invalidInput("not recognized output drive")
}

// Edge is the transition reported by a single edge event.
type Edge uint8

const (
	// RisingEdge is a low-to-high transition.
	RisingEdge Edge = iota + 1
	// FallingEdge is a high-to-low transition.
	FallingEdge
)

func (e Edge) String() string {
	if e == FallingEdge {
		return "falling"
	}
	return "rising"
}

// LineInfo is a read-only snapshot of the kernel's knowledge about one
// GPIO line.
type LineInfo struct {
	// Direction of the line.
	Direction Direction

	// Active state of the line.
	Active Active

	// Edge detection mode. Always EdgeDisable under ABI v1, which
	// cannot report it.
	Edge EdgeDetect

	// Used is true when the kernel holds the line for some purpose.
	Used bool

	// Bias of the line.
	Bias Bias

	// Drive mode of the line.
	Drive Drive

	// Name of the line as assigned by the platform.
	Name string

	// Consumer identifies the current holder of the line, if any.
	Consumer string
}

func (li LineInfo) String() string {
	var b strings.Builder
	if li.Name == "" {
		b.WriteString("\t unnamed")
	} else {
		fmt.Fprintf(&b, "\t %q", li.Name)
	}
	if li.Consumer == "" {
		b.WriteString("\t unused")
	} else {
		fmt.Fprintf(&b, "\t %q", li.Consumer)
	}
	fmt.Fprintf(&b, "\t %s", li.Direction)
	fmt.Fprintf(&b, "\t active-%s", li.Active)
	if li.Edge != EdgeDisable {
		fmt.Fprintf(&b, "\t %s-edge", li.Edge)
	}
	if li.Bias != BiasDisable {
		fmt.Fprintf(&b, "\t %s", li.Bias)
	}
	if li.Drive != PushPull {
		fmt.Fprintf(&b, "\t %s", li.Drive)
	}
	if li.Used {
		b.WriteString("\t [used]")
	}
	return b.String()
}

// Event is one decoded edge transition.
type Event struct {
	// Line is the request-local bit position of the line, resolved
	// through the request's LineMap.
	Line int

	// Edge that was detected.
	Edge Edge

	// Time is the kernel monotonic timestamp of the transition.
	Time time.Duration
}

func (e Event) String() string {
	return fmt.Sprintf("#%d %s %d", e.Line, e.Edge, e.Time.Nanoseconds())
}

// nanosToTime converts a kernel nanosecond timestamp.
func nanosToTime(ns uint64) time.Duration {
	return time.Duration(ns)
}

// ChipInfo describes one GPIO chip.
type ChipInfo struct {
	// Name of the kernel device.
	Name string

	// Label of the chip, or the name when the hardware provides none.
	Label string

	// Lines is the number of GPIO lines on the chip.
	Lines uint32
}

func (ci ChipInfo) String() string {
	return fmt.Sprintf("%s [%s] (%d lines)", ci.Name, ci.Label, ci.Lines)
}
