// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiocdev translates logical GPIO line configuration and values
// to and from the binary ioctl structures of the Linux GPIO character
// device.
//
// Two incompatible generations of the kernel ABI exist: the deprecated
// GPIOHANDLE/GPIOEVENT interface (V1) and the GPIO_V2_LINE interface
// (V2). Both are implemented behind the Codec interface and selected at
// runtime, so a single binary can talk to old and new kernels.
//
// This package is pure: it encodes and decodes caller-owned byte buffers
// and never performs I/O itself. The chardev package issues the actual
// ioctl and read calls.
//
// Documentation for the ioctl() API is at:
//
// https://docs.kernel.org/userspace-api/gpio/index.html
package gpiocdev
