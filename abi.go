// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import "encoding/binary"

// ABI selects one of the two kernel ioctl protocol generations for GPIO
// character devices.
type ABI uint8

const (
	// V1 is the deprecated GPIOHANDLE/GPIOEVENT interface.
	V1 ABI = 1
	// V2 is the GPIO_V2_LINE interface introduced in Linux 5.10.
	V2 ABI = 2
)

func (a ABI) String() string {
	if a == V1 {
		return "v1"
	}
	return "v2"
}

// ParseABI parses an ABI generation name.
func ParseABI(s string) (ABI, error) {
	switch s {
	case "1", "v1":
		return V1, nil
	case "2", "v2":
		return V2, nil
	}
	return V2, invalidInput("not recognized ABI generation")
}

// LineRequest is a filled binary line request together with the
// offset-to-bit index of the lines it names.
type LineRequest struct {
	// Buf is the encoded request structure. It is passed to the
	// request-lines ioctl, which writes the new line descriptor back
	// into it.
	Buf []byte

	// Map resolves event line offsets back to request-local bits.
	Map LineMap

	// FollowUpValues, when non-nil, is an encoded set-values buffer the
	// collaborator must apply to the new descriptor right after
	// acquisition. Only ABI v1 uses it: its request has no inline
	// initial-value attribute.
	FollowUpValues []byte

	fdOffset int
}

// Fd returns the line descriptor the kernel wrote into the request
// buffer. Only meaningful after the request-lines ioctl succeeded.
func (r *LineRequest) Fd() int32 {
	return int32(binary.LittleEndian.Uint32(r.Buf[r.fdOffset:]))
}

// Codec translates logical line configuration and values to and from
// the fixed-size binary structures of one ABI generation.
//
// Implementations are pure: they transform caller-owned buffers and
// never touch a file descriptor. They are safe for concurrent use on
// independent inputs.
type Codec interface {
	// ABI reports the generation this codec implements.
	ABI() ABI

	// EncodeRequest builds the binary line request for cfg and the
	// LineMap of its offsets. The buffer is built from scratch; on
	// error nothing is returned.
	EncodeRequest(cfg *LineConfig) (*LineRequest, error)

	// LineInfoSize is the byte size of the line-info structure.
	LineInfoSize() int

	// EncodeLineInfoQuery builds a line-info buffer querying the given
	// chip-wide line offset.
	EncodeLineInfoQuery(line uint32) []byte

	// DecodeLineInfo decodes a line-info buffer filled by the kernel.
	DecodeLineInfo(buf []byte) (LineInfo, error)

	// EventSize is the byte size of one edge event record.
	EventSize() int

	// DecodeEvent decodes one raw event record, resolving the line
	// offset through m where the generation carries one.
	DecodeEvent(buf []byte, m *LineMap) (Event, error)

	// ValuesSize is the byte size of the value transfer structure.
	ValuesSize() int

	// EncodeValues builds a value transfer buffer for a request of
	// lines lines. The mask selects the lines to read or write.
	EncodeValues(v Values, lines int) []byte

	// DecodeValues decodes a value transfer buffer filled by the
	// kernel for a request of lines lines.
	DecodeValues(buf []byte, lines int) (Values, error)

	// RequestLinesIoctl is the ioctl request number acquiring lines on
	// a chip descriptor.
	RequestLinesIoctl() uintptr

	// LineInfoIoctl is the ioctl request number querying line info on a
	// chip descriptor.
	LineInfoIoctl() uintptr

	// GetValuesIoctl is the ioctl request number reading values on a
	// line descriptor.
	GetValuesIoctl() uintptr

	// SetValuesIoctl is the ioctl request number writing values on a
	// line descriptor.
	SetValuesIoctl() uintptr
}

// NewCodec returns the codec for an ABI generation.
func NewCodec(abi ABI) (Codec, error) {
	switch abi {
	case V1:
		return codecV1{}, nil
	case V2:
		return codecV2{}, nil
	}
	return nil, invalidInput("not recognized ABI generation")
}
