// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

// ABI generation 2: the GPIO_V2_LINE interface, Linux 5.10 and later.
//
// struct gpio_v2_line_request layout:
//
//	offsets           [64]uint32           @ 0
//	consumer          [32]byte             @ 256
//	config.flags      uint64               @ 288
//	config.num_attrs  uint32               @ 296
//	config.padding    [5]uint32            @ 300
//	config.attrs      [10]config_attribute @ 320, 24 bytes each:
//	                  {id uint32, padding uint32, value uint64, mask uint64}
//	num_lines         uint32               @ 560
//	event_buffer_size uint32               @ 564
//	padding           [5]uint32            @ 568
//	fd                int32                @ 588
const (
	v2LineNumAttrsMax = 10

	v2LineAttributeSize       = 16
	v2LineConfigAttributeSize = v2LineAttributeSize + 8
	v2LineConfigSize          = 8 + 4 + 20 + v2LineNumAttrsMax*v2LineConfigAttributeSize
	v2LineRequestSize         = 4*MaxValues + nameSize + v2LineConfigSize + 4 + 4 + 20 + 4
	v2LineInfoSize            = 2*nameSize + 4 + 4 + 8 + v2LineNumAttrsMax*v2LineAttributeSize + 16
	v2LineValuesSize          = 16
	v2LineEventSize           = 48

	v2RequestConsumerOffset = 4 * MaxValues
	v2RequestFlagsOffset    = v2RequestConsumerOffset + nameSize
	v2RequestNumAttrsOffset = v2RequestFlagsOffset + 8
	v2RequestAttrsOffset    = v2RequestNumAttrsOffset + 4 + 20
	v2RequestNumLinesOffset = v2RequestAttrsOffset + v2LineNumAttrsMax*v2LineConfigAttributeSize
	v2RequestFdOffset       = v2RequestNumLinesOffset + 4 + 4 + 20
)

// GPIO_V2_LINE_FLAG_* values, shared by requests and line info.
const (
	v2LineFlagUsed         uint64 = 1 << 0
	v2LineFlagActiveLow    uint64 = 1 << 1
	v2LineFlagInput        uint64 = 1 << 2
	v2LineFlagOutput       uint64 = 1 << 3
	v2LineFlagEdgeRising   uint64 = 1 << 4
	v2LineFlagEdgeFalling  uint64 = 1 << 5
	v2LineFlagOpenDrain    uint64 = 1 << 6
	v2LineFlagOpenSource   uint64 = 1 << 7
	v2LineFlagBiasPullUp   uint64 = 1 << 8
	v2LineFlagBiasPullDown uint64 = 1 << 9
	v2LineFlagBiasDisabled uint64 = 1 << 10
)

// GPIO_V2_LINE_ATTR_ID_* attribute tags.
const (
	v2LineAttrIDFlags        uint32 = 1
	v2LineAttrIDOutputValues uint32 = 2
	v2LineAttrIDDebounce     uint32 = 3
)

// GPIO_V2_LINE_EVENT_* codes.
const (
	v2EventRisingEdge  uint32 = 1
	v2EventFallingEdge uint32 = 2
)

type codecV2 struct{}

func (codecV2) ABI() ABI { return V2 }

// v2RequestFlags composes the gpio_v2_line_config flag word. The input
// bit is always set; the output bit is set in addition for outputs.
// Edge bits are gated on the input direction and drive bits on the
// output direction; the kernel rejects the opposite combinations.
func v2RequestFlags(direction Direction, active Active, edge EdgeDetect, bias Bias, drive Drive) uint64 {
	flags := v2LineFlagInput
	if direction == Output {
		flags |= v2LineFlagOutput
	}
	if active == ActiveLow {
		flags |= v2LineFlagActiveLow
	}
	if direction == Input {
		switch edge {
		case EdgeRising:
			flags |= v2LineFlagEdgeRising
		case EdgeFalling:
			flags |= v2LineFlagEdgeFalling
		case EdgeBoth:
			flags |= v2LineFlagEdgeRising | v2LineFlagEdgeFalling
		}
	}
	switch bias {
	case BiasPullUp:
		flags |= v2LineFlagBiasPullUp
	case BiasPullDown:
		flags |= v2LineFlagBiasPullDown
	default:
		flags |= v2LineFlagBiasDisabled
	}
	if direction == Output {
		switch drive {
		case OpenDrain:
			flags |= v2LineFlagOpenDrain
		case OpenSource:
			flags |= v2LineFlagOpenSource
		}
	}
	return flags
}

func (codecV2) EncodeRequest(cfg *LineConfig) (*LineRequest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, v2LineRequestSize)
	for i, off := range cfg.Offsets {
		putU32(buf, i*4, off)
	}
	if err := putString(buf, v2RequestConsumerOffset, cfg.Consumer); err != nil {
		return nil, err
	}
	putU64(buf, v2RequestFlagsOffset, v2RequestFlags(cfg.Direction, cfg.Active, cfg.Edge, cfg.Bias, cfg.Drive))
	if cfg.Direction == Output && cfg.Values != nil {
		putU32(buf, v2RequestNumAttrsOffset, 1)
		putU32(buf, v2RequestAttrsOffset, v2LineAttrIDOutputValues)
		putU64(buf, v2RequestAttrsOffset+8, cfg.Values.Bits)
		putU64(buf, v2RequestAttrsOffset+16, cfg.Values.Mask)
	}
	putU32(buf, v2RequestNumLinesOffset, uint32(len(cfg.Offsets)))

	return &LineRequest{
		Buf:      buf,
		Map:      NewLineMap(cfg.Offsets),
		fdOffset: v2RequestFdOffset,
	}, nil
}

func (codecV2) LineInfoSize() int { return v2LineInfoSize }

func (codecV2) EncodeLineInfoQuery(line uint32) []byte {
	buf := make([]byte, v2LineInfoSize)
	putU32(buf, 2*nameSize, line)
	return buf
}

func (codecV2) DecodeLineInfo(buf []byte) (LineInfo, error) {
	if len(buf) != v2LineInfoSize {
		return LineInfo{}, invalidData("unexpected size")
	}
	name, err := getString(buf, 0)
	if err != nil {
		return LineInfo{}, err
	}
	consumer, err := getString(buf, nameSize)
	if err != nil {
		return LineInfo{}, err
	}
	flags := getU64(buf, 2*nameSize+8)

	li := LineInfo{
		Used:     flags&v2LineFlagUsed != 0,
		Name:     name,
		Consumer: consumer,
	}
	if flags&v2LineFlagOutput != 0 {
		li.Direction = Output
	}
	if flags&v2LineFlagActiveLow != 0 {
		li.Active = ActiveLow
	}
	switch {
	case flags&v2LineFlagEdgeRising != 0 && flags&v2LineFlagEdgeFalling != 0:
		li.Edge = EdgeBoth
	case flags&v2LineFlagEdgeRising != 0:
		li.Edge = EdgeRising
	case flags&v2LineFlagEdgeFalling != 0:
		li.Edge = EdgeFalling
	}
	switch {
	case flags&v2LineFlagBiasPullUp != 0 && flags&v2LineFlagBiasPullDown == 0:
		li.Bias = BiasPullUp
	case flags&v2LineFlagBiasPullDown != 0 && flags&v2LineFlagBiasPullUp == 0:
		li.Bias = BiasPullDown
	}
	switch {
	case flags&v2LineFlagOpenDrain != 0 && flags&v2LineFlagOpenSource == 0:
		li.Drive = OpenDrain
	case flags&v2LineFlagOpenSource != 0 && flags&v2LineFlagOpenDrain == 0:
		li.Drive = OpenSource
	}
	return li, nil
}

func (codecV2) EventSize() int { return v2LineEventSize }

// DecodeEvent decodes one gpio_v2_line_event record:
//
//	timestamp_ns uint64 @ 0
//	id           uint32 @ 8
//	offset       uint32 @ 12
//	seqno        uint32 @ 16
//	line_seqno   uint32 @ 20
//	padding      [6]uint32
func (codecV2) DecodeEvent(buf []byte, m *LineMap) (Event, error) {
	if len(buf) != v2LineEventSize {
		return Event{}, invalidData("unexpected size")
	}
	line, err := m.Get(getU32(buf, 12))
	if err != nil {
		return Event{}, err
	}
	var edge Edge
	switch getU32(buf, 8) {
	case v2EventRisingEdge:
		edge = RisingEdge
	case v2EventFallingEdge:
		edge = FallingEdge
	default:
		return Event{}, invalidData("unknown edge")
	}
	return Event{
		Line: line,
		Edge: edge,
		Time: nanosToTime(getU64(buf, 0)),
	}, nil
}

func (codecV2) ValuesSize() int { return v2LineValuesSize }

func (codecV2) EncodeValues(v Values, lines int) []byte {
	buf := make([]byte, v2LineValuesSize)
	putU64(buf, 0, v.Bits)
	putU64(buf, 8, v.Mask)
	return buf
}

func (codecV2) DecodeValues(buf []byte, lines int) (Values, error) {
	if len(buf) != v2LineValuesSize {
		return Values{}, invalidData("unexpected size")
	}
	return Values{
		Bits: getU64(buf, 0),
		Mask: getU64(buf, 8),
	}, nil
}

func (codecV2) RequestLinesIoctl() uintptr {
	return _IOWR(0xB4, 0x07, v2LineRequestSize)
}

func (codecV2) LineInfoIoctl() uintptr {
	return _IOWR(0xB4, 0x05, v2LineInfoSize)
}

func (codecV2) GetValuesIoctl() uintptr {
	return _IOWR(0xB4, 0x0e, v2LineValuesSize)
}

func (codecV2) SetValuesIoctl() uintptr {
	return _IOWR(0xB4, 0x0f, v2LineValuesSize)
}
