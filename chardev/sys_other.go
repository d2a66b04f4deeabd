// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package chardev

import (
	"errors"
	"os"
)

var errNotLinux = errors.New("gpio character devices require linux")

func ioctl(fd uintptr, op uintptr, data []byte) error {
	return errNotLinux
}

func isCharDevice(f *os.File) error {
	return errNotLinux
}

func setNonblock(fd int, nonblocking bool) error {
	return errNotLinux
}
