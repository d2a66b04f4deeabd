// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package chardev owns the file descriptors behind the gpiocdev codecs:
// it opens and validates /dev/gpiochip* nodes, issues the ioctl calls,
// and reads edge event records.
//
// A Chip hands out Lines handles via RequestLines. Value get/set calls
// on one handle are serialized internally; everything else is up to the
// caller.
package chardev
