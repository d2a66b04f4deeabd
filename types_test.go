// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"i", "in", "input"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		require.Equal(t, Input, d)
	}
	for _, s := range []string{"o", "out", "output"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		require.Equal(t, Output, d)
	}
	_, err := ParseDirection("sideways")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseActive(t *testing.T) {
	for _, s := range []string{"l", "lo", "low", "active-low"} {
		a, err := ParseActive(s)
		require.NoError(t, err)
		require.Equal(t, ActiveLow, a)
	}
	for _, s := range []string{"h", "hi", "high", "active-high"} {
		a, err := ParseActive(s)
		require.NoError(t, err)
		require.Equal(t, ActiveHigh, a)
	}
	_, err := ParseActive("medium")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseEdgeDetect(t *testing.T) {
	tests := []struct {
		in   []string
		want EdgeDetect
	}{
		{[]string{"d", "dis", "disable"}, EdgeDisable},
		{[]string{"r", "rise", "rising"}, EdgeRising},
		{[]string{"f", "fall", "falling"}, EdgeFalling},
		{[]string{"b", "both", "rise-fall", "rising-falling"}, EdgeBoth},
	}
	for _, tt := range tests {
		for _, s := range tt.in {
			e, err := ParseEdgeDetect(s)
			require.NoError(t, err)
			require.Equal(t, tt.want, e)
		}
	}
	_, err := ParseEdgeDetect("sometimes")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseBias(t *testing.T) {
	for _, s := range []string{"d", "dis", "disable"} {
		b, err := ParseBias(s)
		require.NoError(t, err)
		require.Equal(t, BiasDisable, b)
	}
	for _, s := range []string{"pu", "pull-up"} {
		b, err := ParseBias(s)
		require.NoError(t, err)
		require.Equal(t, BiasPullUp, b)
	}
	// Both aliases must resolve to pull-down, not pull-up.
	for _, s := range []string{"pd", "pull-down"} {
		b, err := ParseBias(s)
		require.NoError(t, err)
		require.Equal(t, BiasPullDown, b)
	}
	_, err := ParseBias("sticky")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseDrive(t *testing.T) {
	tests := []struct {
		in   []string
		want Drive
	}{
		{[]string{"pp", "push-pull"}, PushPull},
		{[]string{"od", "open-drain"}, OpenDrain},
		{[]string{"os", "open-source"}, OpenSource},
	}
	for _, tt := range tests {
		for _, s := range tt.in {
			d, err := ParseDrive(s)
			require.NoError(t, err)
			require.Equal(t, tt.want, d)
		}
	}
	_, err := ParseDrive("hard")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseABI(t *testing.T) {
	for _, s := range []string{"1", "v1"} {
		abi, err := ParseABI(s)
		require.NoError(t, err)
		require.Equal(t, V1, abi)
	}
	for _, s := range []string{"2", "v2"} {
		abi, err := ParseABI(s)
		require.NoError(t, err)
		require.Equal(t, V2, abi)
	}
	_, err := ParseABI("v3")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTypeStrings(t *testing.T) {
	require.Equal(t, "input", Input.String())
	require.Equal(t, "output", Output.String())
	require.Equal(t, "high", ActiveHigh.String())
	require.Equal(t, "low", ActiveLow.String())
	require.Equal(t, "disable", EdgeDisable.String())
	require.Equal(t, "rising", EdgeRising.String())
	require.Equal(t, "falling", EdgeFalling.String())
	require.Equal(t, "both", EdgeBoth.String())
	require.Equal(t, "disable", BiasDisable.String())
	require.Equal(t, "pull-up", BiasPullUp.String())
	require.Equal(t, "pull-down", BiasPullDown.String())
	require.Equal(t, "push-pull", PushPull.String())
	require.Equal(t, "open-drain", OpenDrain.String())
	require.Equal(t, "open-source", OpenSource.String())
	require.Equal(t, "rising", RisingEdge.String())
	require.Equal(t, "falling", FallingEdge.String())
	require.Equal(t, "v1", V1.String())
	require.Equal(t, "v2", V2.String())
}

func TestLineInfoString(t *testing.T) {
	li := LineInfo{Name: "GPIO12", Consumer: "blinky", Direction: Output, Drive: OpenDrain, Used: true}
	s := li.String()
	require.Contains(t, s, `"GPIO12"`)
	require.Contains(t, s, `"blinky"`)
	require.Contains(t, s, "output")
	require.Contains(t, s, "open-drain")
	require.Contains(t, s, "[used]")
	require.NotContains(t, s, "push-pull", "default drive is not printed")

	li = LineInfo{Bias: BiasPullDown, Edge: EdgeBoth}
	s = li.String()
	require.Contains(t, s, "unnamed")
	require.Contains(t, s, "unused")
	require.Contains(t, s, "pull-down")
	require.Contains(t, s, "both-edge")
}

func TestEventString(t *testing.T) {
	e := Event{Line: 2, Edge: RisingEdge, Time: 1500 * time.Nanosecond}
	require.Equal(t, "#2 rising 1500", e.String())
}

func TestChipInfoString(t *testing.T) {
	ci := ChipInfo{Name: "gpiochip0", Label: "pinctrl-bcm2835", Lines: 54}
	require.Equal(t, "gpiochip0 [pinctrl-bcm2835] (54 lines)", ci.String())
}
