// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package chardev

import (
	"encoding/binary"
	"io"
	"strings"
	"testing"
	"time"

	"periph.io/x/gpiocdev"
)

// fakeFile stands in for the line descriptor so the decode path can be
// exercised without a kernel.
type fakeFile struct {
	data     []byte
	deadline time.Time
	closed   bool
}

func (f *fakeFile) Fd() uintptr { return 0 }

func (f *fakeFile) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func (f *fakeFile) SetReadDeadline(t time.Time) error {
	f.deadline = t
	return nil
}

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

func newTestLines(t *testing.T, file lineFile, offsets []uint32) *Lines {
	t.Helper()
	codec, err := gpiocdev.NewCodec(gpiocdev.V2)
	if err != nil {
		t.Fatal(err)
	}
	return &Lines{
		file:     file,
		codec:    codec,
		lineMap:  gpiocdev.NewLineMap(offsets),
		offsets:  offsets,
		consumer: "test@1",
		chip:     "gpiochip0",
	}
}

func TestLinesReadEvent(t *testing.T) {
	// One gpio_v2_line_event record: rising edge on offset 19 at 1500ns.
	record := make([]byte, 48)
	binary.LittleEndian.PutUint64(record, 1500)
	binary.LittleEndian.PutUint32(record[8:], 1)
	binary.LittleEndian.PutUint32(record[12:], 19)

	f := &fakeFile{data: record}
	l := newTestLines(t, f, []uint32{27, 1, 19})
	event, err := l.ReadEvent()
	if err != nil {
		t.Fatal("ReadEvent() returned", err)
	}
	if event.Line != 2 {
		t.Errorf("expected line bit 2, got %d", event.Line)
	}
	if event.Edge != gpiocdev.RisingEdge {
		t.Errorf("expected rising edge, got %s", event.Edge)
	}
	if event.Time != 1500*time.Nanosecond {
		t.Errorf("expected 1500ns timestamp, got %s", event.Time)
	}

	if _, err = l.ReadEvent(); err == nil {
		t.Error("expected error reading an exhausted descriptor")
	}
}

func TestLinesAccessors(t *testing.T) {
	l := newTestLines(t, &fakeFile{}, []uint32{27, 1, 19})
	if l.Chip() != "gpiochip0" {
		t.Error("unexpected chip name", l.Chip())
	}
	if l.Consumer() != "test@1" {
		t.Error("unexpected consumer", l.Consumer())
	}
	offsets := l.Offsets()
	if len(offsets) != 3 || offsets[0] != 27 || offsets[2] != 19 {
		t.Error("unexpected offsets", offsets)
	}
	// The returned slice is a copy.
	offsets[0] = 99
	if l.offsets[0] != 27 {
		t.Error("Offsets() leaked the internal slice")
	}
	bit, err := l.Map(1)
	if err != nil || bit != 1 {
		t.Error("Map(1) returned", bit, err)
	}
	if s := l.String(); s != `gpiochip0 "test@1" [27 1 19]` {
		t.Error("unexpected String()", s)
	}
}

func TestLinesDeadlineAndClose(t *testing.T) {
	f := &fakeFile{}
	l := newTestLines(t, f, []uint32{4})
	when := time.Now().Add(time.Second)
	if err := l.SetReadDeadline(when); err != nil {
		t.Fatal(err)
	}
	if !f.deadline.Equal(when) {
		t.Error("deadline not forwarded to the descriptor")
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if !f.closed {
		t.Error("Close() did not close the descriptor")
	}
}

func TestAllMask(t *testing.T) {
	if allMask(0) != 0 {
		t.Error("allMask(0) should be 0")
	}
	if allMask(3) != 0b111 {
		t.Errorf("allMask(3) = %b", allMask(3))
	}
	if allMask(64) != ^uint64(0) {
		t.Errorf("allMask(64) = %x", allMask(64))
	}
}

func TestDefaultConsumer(t *testing.T) {
	if !strings.Contains(defaultConsumer, "@") {
		t.Error("default consumer should be program@pid, got", defaultConsumer)
	}
	if len(defaultConsumer) > gpiocdev.MaxNameLen {
		t.Error("default consumer exceeds the wire buffer", defaultConsumer)
	}
}
