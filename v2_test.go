// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestV2RequestFlags(t *testing.T) {
	// The input bit is always set; outputs carry both direction bits.
	require.Equal(t, v2LineFlagInput|v2LineFlagBiasDisabled,
		v2RequestFlags(Input, ActiveHigh, EdgeDisable, BiasDisable, PushPull))
	require.Equal(t, v2LineFlagInput|v2LineFlagOutput|v2LineFlagBiasDisabled,
		v2RequestFlags(Output, ActiveHigh, EdgeDisable, BiasDisable, PushPull))

	require.Equal(t,
		v2LineFlagInput|v2LineFlagActiveLow|v2LineFlagEdgeRising|v2LineFlagEdgeFalling|v2LineFlagBiasPullUp,
		v2RequestFlags(Input, ActiveLow, EdgeBoth, BiasPullUp, PushPull))

	require.Equal(t,
		v2LineFlagInput|v2LineFlagOutput|v2LineFlagOpenSource|v2LineFlagBiasPullDown,
		v2RequestFlags(Output, ActiveHigh, EdgeDisable, BiasPullDown, OpenSource))

	// Drive bits never appear on inputs, whatever the drive argument.
	flags := v2RequestFlags(Input, ActiveHigh, EdgeDisable, BiasDisable, OpenDrain)
	require.Zero(t, flags&(v2LineFlagOpenDrain|v2LineFlagOpenSource))

	// Edge bits never appear on outputs.
	flags = v2RequestFlags(Output, ActiveHigh, EdgeBoth, BiasDisable, PushPull)
	require.Zero(t, flags&(v2LineFlagEdgeRising|v2LineFlagEdgeFalling))
}

func TestV2EncodeRequest(t *testing.T) {
	c := codecV2{}
	cfg := LineConfig{
		Offsets:  []uint32{27, 1, 19},
		Active:   ActiveLow,
		Edge:     EdgeBoth,
		Bias:     BiasPullUp,
		Consumer: "gpin",
	}
	req, err := c.EncodeRequest(&cfg)
	require.NoError(t, err)
	require.Len(t, req.Buf, v2LineRequestSize)
	require.Equal(t, uint32(27), getU32(req.Buf, 0))
	require.Equal(t, uint32(1), getU32(req.Buf, 4))
	require.Equal(t, uint32(19), getU32(req.Buf, 8))
	consumer, err := getString(req.Buf, v2RequestConsumerOffset)
	require.NoError(t, err)
	require.Equal(t, "gpin", consumer)
	require.Equal(t,
		v2LineFlagInput|v2LineFlagActiveLow|v2LineFlagEdgeRising|v2LineFlagEdgeFalling|v2LineFlagBiasPullUp,
		getU64(req.Buf, v2RequestFlagsOffset))
	require.Zero(t, getU32(req.Buf, v2RequestNumAttrsOffset))
	require.Equal(t, uint32(3), getU32(req.Buf, v2RequestNumLinesOffset))
	require.Zero(t, req.Fd(), "fd slot starts zeroed")
	require.Nil(t, req.FollowUpValues)

	bit, err := req.Map.Get(27)
	require.NoError(t, err)
	require.Equal(t, 0, bit)
}

func TestV2EncodeRequestOutputValues(t *testing.T) {
	c := codecV2{}
	v := Values{Bits: 0b101, Mask: 0b111}
	cfg := LineConfig{
		Offsets:   []uint32{4, 5, 6},
		Direction: Output,
		Drive:     OpenDrain,
		Values:    &v,
	}
	req, err := c.EncodeRequest(&cfg)
	require.NoError(t, err)
	require.Nil(t, req.FollowUpValues, "initial values ride inline in this generation")
	require.Equal(t, uint32(1), getU32(req.Buf, v2RequestNumAttrsOffset))
	require.Equal(t, v2LineAttrIDOutputValues, getU32(req.Buf, v2RequestAttrsOffset))
	require.Equal(t, uint64(0b101), getU64(req.Buf, v2RequestAttrsOffset+8))
	require.Equal(t, uint64(0b111), getU64(req.Buf, v2RequestAttrsOffset+16))
}

func TestV2EncodeRequestErrors(t *testing.T) {
	c := codecV2{}

	offsets := make([]uint32, MaxValues+1)
	cfg := LineConfig{Offsets: offsets}
	_, err := c.EncodeRequest(&cfg)
	require.ErrorIs(t, err, ErrInvalidInput)

	cfg = LineConfig{Offsets: []uint32{3}, Direction: Output, Edge: EdgeRising}
	_, err = c.EncodeRequest(&cfg)
	require.ErrorIs(t, err, ErrInvalidInput)

	cfg = LineConfig{Offsets: []uint32{3}, Consumer: "this consumer label is far too long to fit"}
	_, err = c.EncodeRequest(&cfg)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestV2LineInfoQuery(t *testing.T) {
	c := codecV2{}
	buf := c.EncodeLineInfoQuery(42)
	require.Len(t, buf, v2LineInfoSize)
	require.Equal(t, uint32(42), getU32(buf, 2*nameSize))
}

func TestV2DecodeLineInfo(t *testing.T) {
	c := codecV2{}
	buf := make([]byte, v2LineInfoSize)
	copy(buf, "GPIO12")
	copy(buf[nameSize:], "blinky")
	flags := v2LineFlagUsed | v2LineFlagOutput | v2LineFlagActiveLow | v2LineFlagOpenDrain
	putU64(buf, 2*nameSize+8, flags)

	li, err := c.DecodeLineInfo(buf)
	require.NoError(t, err)
	require.Equal(t, LineInfo{
		Direction: Output,
		Active:    ActiveLow,
		Used:      true,
		Drive:     OpenDrain,
		Name:      "GPIO12",
		Consumer:  "blinky",
	}, li)

	putU64(buf, 2*nameSize+8, v2LineFlagInput|v2LineFlagEdgeRising|v2LineFlagBiasPullDown)
	li, err = c.DecodeLineInfo(buf)
	require.NoError(t, err)
	require.Equal(t, Input, li.Direction)
	require.Equal(t, EdgeRising, li.Edge)
	require.Equal(t, BiasPullDown, li.Bias)

	// Contradictory bias bits decode as the default.
	putU64(buf, 2*nameSize+8, v2LineFlagBiasPullUp|v2LineFlagBiasPullDown)
	li, err = c.DecodeLineInfo(buf)
	require.NoError(t, err)
	require.Equal(t, BiasDisable, li.Bias)

	_, err = c.DecodeLineInfo(buf[:16])
	require.ErrorIs(t, err, ErrInvalidData)
}

func TestV2DecodeEvent(t *testing.T) {
	c := codecV2{}
	m := NewLineMap([]uint32{27, 1, 19})

	buf := make([]byte, v2LineEventSize)
	putU64(buf, 0, 1500)
	putU32(buf, 8, v2EventRisingEdge)
	putU32(buf, 12, 19)
	ev, err := c.DecodeEvent(buf, &m)
	require.NoError(t, err)
	require.Equal(t, Event{Line: 2, Edge: RisingEdge, Time: 1500 * time.Nanosecond}, ev)

	putU32(buf, 8, v2EventFallingEdge)
	putU32(buf, 12, 1)
	ev, err = c.DecodeEvent(buf, &m)
	require.NoError(t, err)
	require.Equal(t, Event{Line: 1, Edge: FallingEdge, Time: 1500 * time.Nanosecond}, ev)

	// An offset that was not part of the request does not resolve.
	putU32(buf, 12, 5)
	_, err = c.DecodeEvent(buf, &m)
	require.ErrorIs(t, err, ErrInvalidData)

	// An unknown edge code is kernel-origin garbage.
	putU32(buf, 8, 9)
	putU32(buf, 12, 27)
	_, err = c.DecodeEvent(buf, &m)
	require.ErrorIs(t, err, ErrInvalidData)

	_, err = c.DecodeEvent(buf[:20], &m)
	require.ErrorIs(t, err, ErrInvalidData)
}

func TestV2Values(t *testing.T) {
	c := codecV2{}
	buf := c.EncodeValues(Values{Bits: 0b101, Mask: 0b111}, 3)
	require.Len(t, buf, v2LineValuesSize)
	require.Equal(t, uint64(0b101), getU64(buf, 0))
	require.Equal(t, uint64(0b111), getU64(buf, 8))

	v, err := c.DecodeValues(buf, 3)
	require.NoError(t, err)
	require.Equal(t, Values{Bits: 0b101, Mask: 0b111}, v)

	_, err = c.DecodeValues(buf[:8], 3)
	require.ErrorIs(t, err, ErrInvalidData)
}
