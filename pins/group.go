// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pins

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"

	"periph.io/x/gpiocdev"
)

// Group is a set of GPIO lines requested as one kernel handle. Using a
// Group, you can write to multiple lines, or read from multiple lines,
// in a single operation. Lines configured for edge detection share one
// WaitForEdge() call that triggers on a change to any of them.
type Group struct {
	lines chardevLines
	pins  []*GroupLine
}

// chardevLines is the handle surface Group consumes. Tests substitute a
// fake.
type chardevLines interface {
	Offsets() []uint32
	GetValues(mask uint64) (gpiocdev.Values, error)
	SetValues(v gpiocdev.Values) error
	ReadEvent() (gpiocdev.Event, error)
	SetReadDeadline(t time.Time) error
	Close() error
	String() string
}

// Group requests the lines named by cfg.Offsets as one handle. Names
// for the member lines are taken from the chip.
func (c *Chip) Group(cfg gpiocdev.LineConfig) (*Group, error) {
	lines, err := c.dev.RequestLines(cfg)
	if err != nil {
		return nil, fmt.Errorf("Chip.Group(): %w", err)
	}
	g := &Group{lines: lines}
	for i, off := range cfg.Offsets {
		name := ""
		if p := c.ByNumber(int(off)); p != nil {
			name = p.Name()
		}
		g.pins = append(g.pins, &GroupLine{
			group:  g,
			offset: uint32(i),
			number: off,
			name:   name,
		})
	}
	return g, nil
}

// GroupByName requests lines by their platform names instead of
// offsets. cfg.Offsets is filled from the resolved names.
func (c *Chip) GroupByName(cfg gpiocdev.LineConfig, names ...string) (*Group, error) {
	for _, name := range names {
		p := c.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("line %s not found in chip %s", name, c.Name())
		}
		cfg.Offsets = append(cfg.Offsets, p.number)
	}
	return c.Group(cfg)
}

// LineCount returns the number of lines in the group.
func (g *Group) LineCount() int {
	return len(g.pins)
}

// Pins returns the member lines in request order.
func (g *Group) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(g.pins))
	for i, l := range g.pins {
		pins[i] = l
	}
	return pins
}

// ByOffset returns a member line by its position within the group.
func (g *Group) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(g.pins) {
		return nil
	}
	return g.pins[offset]
}

// ByName returns a member line by its platform name, or nil.
func (g *Group) ByName(name string) pin.Pin {
	for _, l := range g.pins {
		if l.name == name {
			return l
		}
	}
	return nil
}

// ByNumber returns a member line by its chip line offset, or nil.
func (g *Group) ByNumber(number int) pin.Pin {
	for _, l := range g.pins {
		if l.Number() == number {
			return l
		}
	}
	return nil
}

// Out writes bits to the group's lines in one kernel call. If mask is
// 0, all lines are written.
func (g *Group) Out(bits, mask gpio.GPIOValue) error {
	return g.lines.SetValues(gpiocdev.Values{Bits: uint64(bits), Mask: uint64(mask)})
}

// Read reads the group's lines in one kernel call. mask selects the
// lines to read; 0 reads them all.
func (g *Group) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	v, err := g.lines.GetValues(uint64(mask))
	if err != nil {
		return 0, err
	}
	return gpio.GPIOValue(v.Bits), nil
}

// WaitForEdge blocks until any line in the group triggers an edge
// event.
//
// number is the chip line offset of the triggering line. edge is
// gpio.NoEdge when the wait timed out or was halted.
//
// timeout bounds the wait. If 0, waits forever.
func (g *Group) WaitForEdge(timeout time.Duration) (number int, edge gpio.Edge, err error) {
	edge = gpio.NoEdge
	if timeout == 0 {
		err = g.lines.SetReadDeadline(time.Time{})
	} else {
		err = g.lines.SetReadDeadline(time.Now().Add(timeout))
	}
	if err != nil {
		err = fmt.Errorf("WaitForEdge(): %w", err)
		return
	}
	event, err := g.lines.ReadEvent()
	if err != nil {
		return
	}
	if event.Edge == gpiocdev.RisingEdge {
		edge = gpio.RisingEdge
	} else {
		edge = gpio.FallingEdge
	}
	number = int(g.lines.Offsets()[event.Line])
	return
}

// Halt interrupts any pending WaitForEdge().
func (g *Group) Halt() error {
	return g.lines.SetReadDeadline(time.UnixMilli(0))
}

// Close releases the lines back to the kernel.
func (g *Group) Close() error {
	return g.lines.Close()
}

func (g *Group) String() string {
	return g.lines.String()
}

// GroupLine is a specific line in a Group. Using a GroupLine, you can
// read or write a single line of the group through the PinIO interface.
type GroupLine struct {
	group *Group
	// Position of the line within the group request.
	offset uint32
	// Chip line offset.
	number uint32
	name   string
}

// Number returns the line's chip offset. Implements gpio.Pin.
func (l *GroupLine) Number() int {
	return int(l.number)
}

// Name returns the line's platform name. Implements gpio.Pin.
func (l *GroupLine) Name() string {
	return l.name
}

func (l *GroupLine) String() string {
	return fmt.Sprintf("%s(%d)", l.name, l.number)
}

// Offset returns the position of this line within the Group,
// 0..Group.LineCount.
func (l *GroupLine) Offset() uint32 {
	return l.offset
}

func (l *GroupLine) Function() string {
	return "not implemented"
}

// Out writes to this specific line of the group.
func (l *GroupLine) Out(level gpio.Level) error {
	var bits, mask gpio.GPIOValue
	mask = 1 << l.offset
	if level {
		bits = mask
	}
	return l.group.Out(bits, mask)
}

// Read returns the level of this specific line of the group.
func (l *GroupLine) Read() gpio.Level {
	mask := gpio.GPIOValue(1) << l.offset
	bits, err := l.group.Read(mask)
	if err != nil {
		log.Errorf("GroupLine.Read() error reading line %d: %s", l.number, err)
		return gpio.Low
	}
	return bits&mask == mask
}

// In always fails; lines of a held group request cannot be
// re-configured individually.
func (l *GroupLine) In(pull gpio.Pull, edge gpio.Edge) error {
	return errors.New("a Group line cannot be re-configured")
}

// Halt always fails; a single line of a group cannot be halted. Use
// Group.Halt().
func (l *GroupLine) Halt() error {
	return errors.New("halt the Group, not an individual line")
}

// WaitForEdge always returns false. Use Group.WaitForEdge().
func (l *GroupLine) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull returns gpio.PullNoChange; the group holds the bias, not the
// line.
func (l *GroupLine) Pull() gpio.Pull {
	return gpio.PullNoChange
}

// DefaultPull returns gpio.PullNoChange; the kernel interface cannot
// report the reset-default bias.
func (l *GroupLine) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// PWM is not supported by the GPIO character device.
func (l *GroupLine) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("not implemented")
}

// Ensure that Interfaces for these types are implemented fully.
var _ gpio.Group = &Group{}
var _ gpio.PinIO = &GroupLine{}
var _ gpio.PinIn = &GroupLine{}
var _ gpio.PinOut = &GroupLine{}
