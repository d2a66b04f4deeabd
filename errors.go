// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"errors"
	"fmt"
)

// Error kinds returned by this module. Match with errors.Is().
var (
	// ErrInvalidInput reports a caller-supplied configuration that
	// violates a structural constraint: too many lines, a label that
	// does not fit its fixed buffer, unparseable value text.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidData reports a kernel-origin byte buffer that violates
	// an expected invariant: wrong size, invalid UTF-8, unknown edge
	// code, unmapped line offset.
	ErrInvalidData = errors.New("invalid data")

	// ErrUnsupported reports a capability the selected ABI generation
	// cannot express.
	ErrUnsupported = errors.New("unsupported")
)

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func invalidData(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, msg)
}

func unsupported(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, msg)
}
