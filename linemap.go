// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

// notLine marks a table slot whose offset was not part of the request.
const notLine = uint8(MaxValues)

// LineMap resolves the chip-wide line offset reported by the kernel in
// an edge event back to the request-local bit position of that line.
//
// It is built once from the ordered offsets of a line request and is
// immutable afterwards. Offsets that were not part of the originating
// request do not resolve.
type LineMap struct {
	table []uint8
}

// NewLineMap builds the map for the given ordered line offsets. The bit
// position of an offset is its index within offsets.
func NewLineMap(offsets []uint32) LineMap {
	max := uint32(0)
	for _, off := range offsets {
		if off > max {
			max = off
		}
	}
	table := make([]uint8, max+1)
	for i := range table {
		table[i] = notLine
	}
	for i, off := range offsets {
		table[off] = uint8(i)
	}
	return LineMap{table: table}
}

// Get returns the bit position of the given chip-wide line offset.
func (m *LineMap) Get(offset uint32) (int, error) {
	if offset < uint32(len(m.table)) {
		if bit := m.table[offset]; bit != notLine {
			return int(bit), nil
		}
	}
	return 0, invalidData("unknown line offset")
}
