// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pins exposes GPIO character device lines through the
// periph.io/x/conn/v3 interfaces. A Pin wraps one line as gpio.PinIO; a
// Group wraps a multi-line request as gpio.Group, so a set of lines can
// be read or written in a single kernel call.
//
// The package registers every usable line with gpioreg on
// initialization, so lines resolve through gpioreg.ByName like any
// other periph pin.
package pins
