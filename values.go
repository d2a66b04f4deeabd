// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"math"
	"math/bits"
	"strings"
)

// MaxValues is the number of line values a single request can carry.
const MaxValues = 64

// Values holds the logical values of up to 64 GPIO lines together with a
// mask marking which bit positions are defined. A bit set in Bits but
// clear in Mask is undefined ("don't care") and must be ignored by all
// readers.
//
// Bit positions are request-local: bit i is the i-th line of the
// originating request, not a chip-wide offset.
type Values struct {
	// Bits holds the logic values of the lines.
	Bits uint64

	// Mask marks the lines to get or set.
	Mask uint64
}

// Get returns the value of the given bit. ok is false if bit is out of
// range or not defined by the mask.
func (v Values) Get(bit int) (val, ok bool) {
	if bit < 0 || bit >= MaxValues {
		return false, false
	}
	m := uint64(1) << uint(bit)
	if v.Mask&m == 0 {
		return false, false
	}
	return v.Bits&m != 0, true
}

// Set defines the given bit and assigns its value. Out of range bits are
// ignored.
func (v *Values) Set(bit int, val bool) {
	if bit < 0 || bit >= MaxValues {
		return
	}
	m := uint64(1) << uint(bit)
	v.Mask |= m
	if val {
		v.Bits |= m
	} else {
		v.Bits &^= m
	}
}

// Unset marks the given bit undefined, clearing both the mask and the
// value bit. Out of range bits are ignored.
func (v *Values) Unset(bit int) {
	if bit < 0 || bit >= MaxValues {
		return
	}
	m := uint64(1) << uint(bit)
	v.Mask &^= m
	v.Bits &^= m
}

// Len returns the number of significant bits: the position of the
// highest defined bit plus one. An empty container has length 0.
func (v Values) Len() int {
	return MaxValues - bits.LeadingZeros64(v.Mask)
}

// Truncate marks every bit at position n and above undefined.
func (v *Values) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= MaxValues {
		return
	}
	keep := uint64(1)<<uint(n) - 1
	v.Mask &= keep
	v.Bits &= keep
}

// Extend appends values most-significant-first: previously appended bits
// keep their relative significance and each new value becomes the least
// significant defined bit. Values beyond the container width are
// dropped.
func (v *Values) Extend(vals ...bool) {
	for _, val := range vals {
		if v.Len() >= MaxValues {
			return
		}
		v.Mask = v.Mask<<1 | 1
		v.Bits <<= 1
		if val {
			v.Bits |= 1
		}
	}
}

// ValuesFromBools builds a container from a boolean sequence read
// most-significant-first. Positions beyond the sequence length remain
// undefined.
func ValuesFromBools(vals []bool) Values {
	var v Values
	v.Extend(vals...)
	return v
}

// Bools returns the significant bits from most-significant to
// least-significant. Undefined bits within the significant range read as
// false.
func (v Values) Bools() []bool {
	n := v.Len()
	out := make([]bool, 0, n)
	for i := n - 1; i >= 0; i-- {
		val, _ := v.Get(i)
		out = append(out, val)
	}
	return out
}

// String renders the significant bits most-significant-first, using '1'
// and '0' for defined bits and 'x' for undefined ones. The width is
// taken from the highest defined bit, with a minimum of one digit.
func (v Values) String() string {
	n := v.Len()
	if n == 0 {
		n = 1
	}
	var b strings.Builder
	b.Grow(n)
	for i := n - 1; i >= 0; i-- {
		switch val, ok := v.Get(i); {
		case !ok:
			b.WriteByte('x')
		case val:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParseValues parses a bit pattern such as "0b1x10x": an optional "0b"
// prefix followed by '0', '1' and 'x' characters read
// most-significant-first. 'x' leaves the bit undefined.
func ParseValues(s string) (Values, error) {
	s = strings.TrimPrefix(s, "0b")
	if len(s) > MaxValues {
		return Values{}, invalidInput("too many line values")
	}
	var v Values
	i := len(s)
	for _, c := range s {
		i--
		switch c {
		case '1':
			v.Bits |= 1 << uint(i)
			v.Mask |= 1 << uint(i)
		case '0':
			v.Mask |= 1 << uint(i)
		case 'x':
		default:
			return Values{}, invalidInput("unexpected char in line value")
		}
	}
	return v, nil
}

// ValuesFromUint8 returns a fully-defined container holding the bits of
// an 8-bit integer.
func ValuesFromUint8(b uint8) Values {
	return Values{Bits: uint64(b), Mask: math.MaxUint8}
}

// ValuesFromUint16 returns a fully-defined container holding the bits of
// a 16-bit integer.
func ValuesFromUint16(b uint16) Values {
	return Values{Bits: uint64(b), Mask: math.MaxUint16}
}

// ValuesFromUint32 returns a fully-defined container holding the bits of
// a 32-bit integer.
func ValuesFromUint32(b uint32) Values {
	return Values{Bits: uint64(b), Mask: math.MaxUint32}
}

// ValuesFromUint64 returns a fully-defined container holding the bits of
// a 64-bit integer.
func ValuesFromUint64(b uint64) Values {
	return Values{Bits: b, Mask: math.MaxUint64}
}

// Uint8 discards the mask and returns the defined bits truncated to 8
// bits.
func (v Values) Uint8() uint8 { return uint8(v.Bits & v.Mask) }

// Uint16 discards the mask and returns the defined bits truncated to 16
// bits.
func (v Values) Uint16() uint16 { return uint16(v.Bits & v.Mask) }

// Uint32 discards the mask and returns the defined bits truncated to 32
// bits.
func (v Values) Uint32() uint32 { return uint32(v.Bits & v.Mask) }

// Uint64 discards the mask and returns the defined bits.
func (v Values) Uint64() uint64 { return v.Bits & v.Mask }
