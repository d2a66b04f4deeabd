// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package chardev

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/gpiocdev"
)

// Lines is a held line request: the lines stay acquired until Close.
// Value transfers are serialized internally; event reads are not, and
// must come from a single goroutine.
type Lines struct {
	file     lineFile
	codec    gpiocdev.Codec
	lineMap  gpiocdev.LineMap
	offsets  []uint32
	consumer string
	chip     string
	mu       sync.Mutex
}

// lineFile is the subset of *os.File the handle needs. Tests substitute
// a fake.
type lineFile interface {
	Fd() uintptr
	Read(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Offsets returns the chip-relative line offsets of the request, in
// request order.
func (l *Lines) Offsets() []uint32 {
	return append([]uint32(nil), l.offsets...)
}

// Consumer returns the consumer label the request was made with.
func (l *Lines) Consumer() string {
	return l.consumer
}

// Chip returns the name of the chip the lines belong to.
func (l *Lines) Chip() string {
	return l.chip
}

func (l *Lines) String() string {
	return fmt.Sprintf("%s %q %v", l.chip, l.consumer, l.offsets)
}

// Map resolves a chip-relative offset to the request-local bit
// position.
func (l *Lines) Map(offset uint32) (int, error) {
	return l.lineMap.Get(offset)
}

// GetValues reads the current levels of the requested lines. mask
// selects the request-local bits to read; 0 reads them all.
func (l *Lines) GetValues(mask uint64) (gpiocdev.Values, error) {
	if mask == 0 {
		mask = allMask(len(l.offsets))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	buf := l.codec.EncodeValues(gpiocdev.Values{Mask: mask}, len(l.offsets))
	if err := ioctl(l.file.Fd(), l.codec.GetValuesIoctl(), buf); err != nil {
		return gpiocdev.Values{}, fmt.Errorf("get values: %w", err)
	}
	return l.codec.DecodeValues(buf, len(l.offsets))
}

// SetValues drives the requested output lines. A zero mask drives all
// of them from v.Bits.
func (l *Lines) SetValues(v gpiocdev.Values) error {
	if v.Mask == 0 {
		v.Mask = allMask(len(l.offsets))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	buf := l.codec.EncodeValues(v, len(l.offsets))
	if err := ioctl(l.file.Fd(), l.codec.SetValuesIoctl(), buf); err != nil {
		return fmt.Errorf("set values: %w", err)
	}
	return nil
}

// ReadEvent blocks until an edge event arrives, the read deadline set
// with SetReadDeadline expires, or the handle is closed. The kernel
// writes whole records, so one read yields one event.
func (l *Lines) ReadEvent() (gpiocdev.Event, error) {
	buf := make([]byte, l.codec.EventSize())
	n, err := l.file.Read(buf)
	if err != nil {
		return gpiocdev.Event{}, fmt.Errorf("event read: %w", err)
	}
	return l.codec.DecodeEvent(buf[:n], &l.lineMap)
}

// SetReadDeadline bounds future ReadEvent calls. A zero time removes
// the deadline.
func (l *Lines) SetReadDeadline(t time.Time) error {
	return l.file.SetReadDeadline(t)
}

// Close releases the lines back to the kernel.
func (l *Lines) Close() error {
	return l.file.Close()
}

// allMask returns a mask with the low n bits set.
func allMask(n int) uint64 {
	if n >= gpiocdev.MaxValues {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}
