// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pins

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"

	"periph.io/x/gpiocdev"
	"periph.io/x/gpiocdev/chardev"
)

// Pin is a single GPIO line exposed as a periph pin. A Pin is obtained
// by calling gpioreg.ByName(), or using the Chip.ByName() or ByNumber()
// methods.
type Pin struct {
	chip *Chip
	// Chip-relative line offset. Note that this has NO RELATIONSHIP to
	// the pin numbering scheme that may be in use on a board.
	number uint32
	name   string

	mu        sync.Mutex
	lines     *chardev.Lines
	direction gpiocdev.Direction
	requested bool
	edge      gpio.Edge
	pull      gpio.Pull
}

// mapPull translates a periph pull to a line bias. PullNoChange and
// Float both leave the bias disabled.
func mapPull(pull gpio.Pull) gpiocdev.Bias {
	switch pull {
	case gpio.PullUp:
		return gpiocdev.BiasPullUp
	case gpio.PullDown:
		return gpiocdev.BiasPullDown
	}
	return gpiocdev.BiasDisable
}

// mapEdge translates a periph edge to a line edge-detect mode.
func mapEdge(edge gpio.Edge) gpiocdev.EdgeDetect {
	switch edge {
	case gpio.RisingEdge:
		return gpiocdev.EdgeRising
	case gpio.FallingEdge:
		return gpiocdev.EdgeFalling
	case gpio.BothEdges:
		return gpiocdev.EdgeBoth
	}
	return gpiocdev.EdgeDisable
}

// Name returns the line name supplied by the platform. Implements
// gpio.Pin.
func (p *Pin) Name() string {
	return p.name
}

// Number returns the line offset within the chip. Implements gpio.Pin.
func (p *Pin) Number() int {
	return int(p.number)
}

func (p *Pin) String() string {
	return fmt.Sprintf("%s/%s(%d)", p.chip.Name(), p.name, p.number)
}

// Consumer returns the consumer label of the current request, if any.
func (p *Pin) Consumer() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lines == nil {
		return ""
	}
	return p.lines.Consumer()
}

// Halt interrupts a pending WaitForEdge().
func (p *Pin) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lines != nil {
		return p.lines.SetReadDeadline(time.UnixMilli(0))
	}
	return nil
}

// request releases any held request and acquires the line again with
// cfg. The kernel has no reconfigure path for a single held line
// request descriptor, so direction changes go through release.
//
// Callers hold p.mu.
func (p *Pin) request(cfg gpiocdev.LineConfig) error {
	if p.lines != nil {
		_ = p.lines.Close()
		p.lines = nil
		p.requested = false
	}
	cfg.Offsets = []uint32{p.number}
	lines, err := p.chip.dev.RequestLines(cfg)
	if err != nil {
		return err
	}
	p.lines = lines
	p.direction = cfg.Direction
	p.requested = true
	return nil
}

// In configures the line for input. Implements gpio.PinIn.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.request(gpiocdev.LineConfig{
		Direction: gpiocdev.Input,
		Edge:      mapEdge(edge),
		Bias:      mapPull(pull),
	})
	if err != nil {
		return fmt.Errorf("Pin.In(): %w", err)
	}
	p.edge = edge
	p.pull = pull
	return nil
}

// Out drives the line to the specified level. Implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.requested || p.direction != gpiocdev.Output {
		v := gpiocdev.Values{Mask: 1}
		if l {
			v.Bits = 1
		}
		err := p.request(gpiocdev.LineConfig{
			Direction: gpiocdev.Output,
			Values:    &v,
		})
		if err != nil {
			return fmt.Errorf("Pin.Out(): %w", err)
		}
		p.edge = gpio.NoEdge
		p.pull = gpio.PullNoChange
		return nil
	}
	v := gpiocdev.Values{Mask: 1}
	if l {
		v.Bits = 1
	}
	if err := p.lines.SetValues(v); err != nil {
		return fmt.Errorf("Pin.Out(): %w", err)
	}
	return nil
}

// Read returns the current level of the line. Implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.requested {
		if err := p.request(gpiocdev.LineConfig{Direction: gpiocdev.Input}); err != nil {
			log.Errorf("Pin.Read(): %s", err)
			return gpio.Low
		}
		p.edge = gpio.NoEdge
		p.pull = gpio.PullNoChange
	}
	v, err := p.lines.GetValues(1)
	if err != nil {
		log.Errorf("Pin.Read(): %s", err)
		return gpio.Low
	}
	val, _ := v.Get(0)
	return gpio.Level(val)
}

// WaitForEdge blocks until the line triggers an edge event. In() must
// have been called with a valid edge first. To interrupt a waiting pin,
// call Halt().
//
// timeout bounds the wait. If 0, waits forever.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	p.mu.Lock()
	lines := p.lines
	edge := p.edge
	p.mu.Unlock()
	if lines == nil || edge == gpio.NoEdge {
		log.Error("call to WaitForEdge() when the pin is not configured for edge detection")
		return false
	}
	var err error
	if timeout == 0 {
		err = lines.SetReadDeadline(time.Time{})
	} else {
		err = lines.SetReadDeadline(time.Now().Add(timeout))
	}
	if err != nil {
		log.Errorf("Pin.WaitForEdge(): %s", err)
		return false
	}
	_, err = lines.ReadEvent()
	return err == nil
}

// Pull returns the configured line bias.
func (p *Pin) Pull() gpio.Pull {
	return p.pull
}

// DefaultPull returns gpio.PullNoChange; the kernel interface cannot
// report the reset-default bias.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// PWM is not supported by the GPIO character device.
func (p *Pin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("PWM() not implemented")
}

// Close releases the line back to the kernel.
func (p *Pin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.lines != nil {
		err = p.lines.Close()
	}
	p.lines = nil
	p.requested = false
	p.edge = gpio.NoEdge
	p.pull = gpio.PullNoChange
	return err
}

// Deprecated: Use PinFunc.Func. Will be removed in v4. Function
// implements pin.Pin.
func (p *Pin) Function() string {
	return string(p.Func())
}

// Func implements pin.PinFunc.
func (p *Pin) Func() pin.Func {
	if !p.requested {
		return pin.FuncNone
	}
	if p.direction == gpiocdev.Input {
		if p.Read() {
			return gpio.IN_HIGH
		}
		return gpio.IN_LOW
	}
	if p.Read() {
		return gpio.OUT_HIGH
	}
	return gpio.OUT_LOW
}

// SupportedFuncs implements pin.PinFunc.
func (p *Pin) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.IN, gpio.OUT}
}

// SetFunc implements pin.PinFunc.
func (p *Pin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT_HIGH:
		return p.Out(gpio.High)
	case gpio.OUT, gpio.OUT_LOW:
		return p.Out(gpio.Low)
	default:
		return errors.New("unsupported function")
	}
}

// Chip is an open GPIO chip with its lines wrapped as pins.
type Chip struct {
	dev  *chardev.Chip
	pins []*Pin
}

// NewChip wraps an open character device, reading the line names from
// the kernel.
func NewChip(dev *chardev.Chip) (*Chip, error) {
	c := &Chip{dev: dev}
	for i := 0; i < dev.LineCount(); i++ {
		info, err := dev.LineInfo(uint32(i))
		if err != nil {
			return nil, fmt.Errorf("reading line info: %w", err)
		}
		c.pins = append(c.pins, &Pin{chip: c, number: uint32(i), name: info.Name})
	}
	return c, nil
}

// Name returns the kernel device name.
func (c *Chip) Name() string {
	return c.dev.Name()
}

// Label returns the chip label.
func (c *Chip) Label() string {
	return c.dev.Label()
}

// Path returns the /dev node the chip was opened from.
func (c *Chip) Path() string {
	return c.dev.Path()
}

// LineCount returns the number of lines on the chip.
func (c *Chip) LineCount() int {
	return len(c.pins)
}

// Pins returns all lines of the chip.
func (c *Chip) Pins() []*Pin {
	return c.pins
}

func (c *Chip) String() string {
	return c.dev.String()
}

// ByName returns the pin with the given line name, or nil.
func (c *Chip) ByName(name string) *Pin {
	for _, p := range c.pins {
		if p.name == name {
			return p
		}
	}
	return nil
}

// ByNumber returns a pin by its chip line offset. Note this has NO
// RELATIONSHIP to a pin # on a board.
func (c *Chip) ByNumber(number int) *Pin {
	if number < 0 || number >= len(c.pins) {
		log.Errorf("Chip.ByNumber(%d) with out of range value", number)
		return nil
	}
	return c.pins[number]
}

// Close releases the chip and all held pins.
func (c *Chip) Close() error {
	for _, p := range c.pins {
		_ = p.Close()
	}
	return c.dev.Close()
}

// Ensure that Interfaces for these types are implemented fully.
var _ gpio.PinIO = &Pin{}
var _ gpio.PinIn = &Pin{}
var _ gpio.PinOut = &Pin{}
var _ pin.PinFunc = &Pin{}
