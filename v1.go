// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

// ABI generation 1: the GPIOHANDLE/GPIOEVENT interface, deprecated since
// Linux 5.10 but still the only one available on older kernels.
//
// struct gpiohandle_request layout:
//
//	lineoffsets    [64]uint32  @ 0
//	flags          uint32      @ 256
//	default_values [64]uint8   @ 260
//	consumer_label [32]byte    @ 324
//	lines          uint32      @ 356
//	fd             int32       @ 360
const (
	v1LineInfoSize      = 8 + 2*nameSize
	v1HandleRequestSize = 4*MaxValues + 4 + MaxValues + nameSize + 4 + 4
	v1HandleDataSize    = MaxValues
	v1EventDataSize     = 16

	v1RequestFlagsOffset    = 4 * MaxValues
	v1RequestConsumerOffset = 4*MaxValues + 4 + MaxValues
	v1RequestLinesOffset    = v1RequestConsumerOffset + nameSize
	v1RequestFdOffset       = v1RequestLinesOffset + 4
)

// GPIOLINE_FLAG_* values reported by the line-info ioctl.
const (
	v1LineFlagKernel       uint32 = 1 << 0
	v1LineFlagIsOut        uint32 = 1 << 1
	v1LineFlagActiveLow    uint32 = 1 << 2
	v1LineFlagOpenDrain    uint32 = 1 << 3
	v1LineFlagOpenSource   uint32 = 1 << 4
	v1LineFlagBiasPullUp   uint32 = 1 << 5
	v1LineFlagBiasPullDown uint32 = 1 << 6
	v1LineFlagBiasDisable  uint32 = 1 << 7
)

// GPIOHANDLE_REQUEST_* flags. Input and output are mutually exclusive
// bits in this generation.
const (
	v1RequestInput        uint32 = 1 << 0
	v1RequestOutput       uint32 = 1 << 1
	v1RequestActiveLow    uint32 = 1 << 2
	v1RequestOpenDrain    uint32 = 1 << 3
	v1RequestOpenSource   uint32 = 1 << 4
	v1RequestBiasPullUp   uint32 = 1 << 5
	v1RequestBiasPullDown uint32 = 1 << 6
	v1RequestBiasDisable  uint32 = 1 << 7
)

// GPIOEVENT_EVENT_* codes.
const (
	v1EventRisingEdge  uint32 = 1
	v1EventFallingEdge uint32 = 2
)

type codecV1 struct{}

func (codecV1) ABI() ABI { return V1 }

// v1RequestFlags composes the gpiohandle_request flag word. Drive bits
// are gated on the output direction; the kernel rejects them on inputs.
func v1RequestFlags(direction Direction, active Active, bias Bias, drive Drive) uint32 {
	var flags uint32
	if direction == Output {
		flags |= v1RequestOutput
	} else {
		flags |= v1RequestInput
	}
	if active == ActiveLow {
		flags |= v1RequestActiveLow
	}
	switch bias {
	case BiasPullUp:
		flags |= v1RequestBiasPullUp
	case BiasPullDown:
		flags |= v1RequestBiasPullDown
	default:
		flags |= v1RequestBiasDisable
	}
	if direction == Output {
		switch drive {
		case OpenDrain:
			flags |= v1RequestOpenDrain
		case OpenSource:
			flags |= v1RequestOpenSource
		}
	}
	return flags
}

func (c codecV1) EncodeRequest(cfg *LineConfig) (*LineRequest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Edge != EdgeDisable {
		return nil, unsupported("edge detection requires ABI v2")
	}
	buf := make([]byte, v1HandleRequestSize)
	for i, off := range cfg.Offsets {
		putU32(buf, i*4, off)
	}
	putU32(buf, v1RequestFlagsOffset, v1RequestFlags(cfg.Direction, cfg.Active, cfg.Bias, cfg.Drive))
	if err := putString(buf, v1RequestConsumerOffset, cfg.Consumer); err != nil {
		return nil, err
	}
	putU32(buf, v1RequestLinesOffset, uint32(len(cfg.Offsets)))

	req := &LineRequest{
		Buf:      buf,
		Map:      NewLineMap(cfg.Offsets),
		fdOffset: v1RequestFdOffset,
	}
	// No inline initial-value attribute in this generation: the values
	// are applied with a set-values call right after acquisition.
	if cfg.Direction == Output && cfg.Values != nil {
		req.FollowUpValues = c.EncodeValues(*cfg.Values, len(cfg.Offsets))
	}
	return req, nil
}

func (codecV1) LineInfoSize() int { return v1LineInfoSize }

func (codecV1) EncodeLineInfoQuery(line uint32) []byte {
	buf := make([]byte, v1LineInfoSize)
	putU32(buf, 0, line)
	return buf
}

func (codecV1) DecodeLineInfo(buf []byte) (LineInfo, error) {
	if len(buf) != v1LineInfoSize {
		return LineInfo{}, invalidData("unexpected size")
	}
	flags := getU32(buf, 4)
	name, err := getString(buf, 8)
	if err != nil {
		return LineInfo{}, err
	}
	consumer, err := getString(buf, 8+nameSize)
	if err != nil {
		return LineInfo{}, err
	}

	li := LineInfo{
		// This generation cannot report edge detection.
		Edge:     EdgeDisable,
		Used:     flags&v1LineFlagKernel != 0,
		Name:     name,
		Consumer: consumer,
	}
	if flags&v1LineFlagIsOut != 0 {
		li.Direction = Output
	}
	if flags&v1LineFlagActiveLow != 0 {
		li.Active = ActiveLow
	}
	switch {
	case flags&v1LineFlagBiasPullUp != 0 && flags&v1LineFlagBiasPullDown == 0:
		li.Bias = BiasPullUp
	case flags&v1LineFlagBiasPullDown != 0 && flags&v1LineFlagBiasPullUp == 0:
		li.Bias = BiasPullDown
	}
	switch {
	case flags&v1LineFlagOpenDrain != 0 && flags&v1LineFlagOpenSource == 0:
		li.Drive = OpenDrain
	case flags&v1LineFlagOpenSource != 0 && flags&v1LineFlagOpenDrain == 0:
		li.Drive = OpenSource
	}
	return li, nil
}

func (codecV1) EventSize() int { return v1EventDataSize }

// DecodeEvent always fails: the gpioevent_data record carries no line
// offset, so the event cannot be attributed to a request-local bit.
func (codecV1) DecodeEvent(buf []byte, m *LineMap) (Event, error) {
	return Event{}, unsupported("line events require ABI v2")
}

func (codecV1) ValuesSize() int { return v1HandleDataSize }

// EncodeValues fills the gpiohandle_data array of per-line 0/1 bytes.
// Lines left undefined by the mask are driven low; this generation has
// no way to skip them.
func (codecV1) EncodeValues(v Values, lines int) []byte {
	buf := make([]byte, v1HandleDataSize)
	if lines > MaxValues {
		lines = MaxValues
	}
	for i := 0; i < lines; i++ {
		if val, _ := v.Get(i); val {
			buf[i] = 1
		}
	}
	return buf
}

func (codecV1) DecodeValues(buf []byte, lines int) (Values, error) {
	if len(buf) != v1HandleDataSize {
		return Values{}, invalidData("unexpected size")
	}
	if lines > MaxValues {
		lines = MaxValues
	}
	var v Values
	for i := 0; i < lines; i++ {
		v.Set(i, buf[i] != 0)
	}
	return v, nil
}

func (codecV1) RequestLinesIoctl() uintptr {
	return _IOWR(0xB4, 0x03, v1HandleRequestSize)
}

func (codecV1) LineInfoIoctl() uintptr {
	return _IOWR(0xB4, 0x02, v1LineInfoSize)
}

func (codecV1) GetValuesIoctl() uintptr {
	return _IOWR(0xB4, 0x08, v1HandleDataSize)
}

func (codecV1) SetValuesIoctl() uintptr {
	return _IOWR(0xB4, 0x09, v1HandleDataSize)
}
