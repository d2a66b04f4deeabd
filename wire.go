// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

// Field-by-field serialization of the kernel structures. The wire layout
// is spelled out explicitly instead of reinterpreting Go structs in
// place, so a mismatch fails a test rather than corrupting a request.

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"
)

// From the linux /usr/include/asm-generic/ioctl.h file.
const (
	_IOC_WRITE = 1
	_IOC_READ  = 2

	_IOC_NRBITS   = 8
	_IOC_TYPEBITS = 8
	_IOC_SIZEBITS = 14

	_IOC_NRSHIFT   = 0
	_IOC_TYPESHIFT = _IOC_NRSHIFT + _IOC_NRBITS
	_IOC_SIZESHIFT = _IOC_TYPESHIFT + _IOC_TYPEBITS
	_IOC_DIRSHIFT  = _IOC_SIZESHIFT + _IOC_SIZEBITS
)

func _IOC(dir, typ, nr, size uintptr) uintptr {
	return dir<<_IOC_DIRSHIFT |
		typ<<_IOC_TYPESHIFT |
		nr<<_IOC_NRSHIFT |
		size<<_IOC_SIZESHIFT
}

func _IOR(typ, nr, size uintptr) uintptr {
	return _IOC(_IOC_READ, typ, nr, size)
}

func _IOWR(typ, nr, size uintptr) uintptr {
	return _IOC(_IOC_READ|_IOC_WRITE, typ, nr, size)
}

// From the /usr/include/linux/gpio.h header file.
const (
	// nameSize is the fixed size of the embedded name, label and
	// consumer buffers, terminating NUL included.
	nameSize = 32

	chipInfoSize = 2*nameSize + 4
)

// MaxNameLen is the longest name, label or consumer string the fixed
// wire buffers can carry, the terminating NUL excluded.
const MaxNameLen = nameSize - 1

// ChipInfoIoctl is the generation-independent ioctl request number
// reading chip information from a chip descriptor.
func ChipInfoIoctl() uintptr {
	return _IOR(0xB4, 0x01, chipInfoSize)
}

// ChipInfoBuf returns a zeroed buffer for the chip-info ioctl.
func ChipInfoBuf() []byte {
	return make([]byte, chipInfoSize)
}

// DecodeChipInfo decodes a chip-info buffer filled by the kernel.
func DecodeChipInfo(buf []byte) (ChipInfo, error) {
	if len(buf) != chipInfoSize {
		return ChipInfo{}, invalidData("unexpected size")
	}
	name, err := getString(buf, 0)
	if err != nil {
		return ChipInfo{}, err
	}
	label, err := getString(buf, nameSize)
	if err != nil {
		return ChipInfo{}, err
	}
	if label == "" {
		label = name
	}
	return ChipInfo{
		Name:  name,
		Label: label,
		Lines: getU32(buf, 2*nameSize),
	}, nil
}

func putU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

func getU32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

func putU64(buf []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(buf[off:off+8], v)
}

func getU64(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off : off+8])
}

// putString encodes s into the fixed NUL-terminated name buffer at off.
func putString(buf []byte, off int, s string) error {
	if len(s) >= nameSize {
		return invalidInput("string too long")
	}
	copy(buf[off:off+nameSize], s)
	buf[off+len(s)] = 0
	return nil
}

// getString decodes the fixed name buffer at off, up to the first NUL
// byte.
func getString(buf []byte, off int) (string, error) {
	s := string(buf[off : off+nameSize])
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if !utf8.ValidString(s) {
		return "", invalidData("invalid UTF-8")
	}
	return s, nil
}
