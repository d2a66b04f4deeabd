// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package chardev

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"periph.io/x/gpiocdev"
)

// The consumer name applied to line requests when neither the caller
// nor WithConsumer supplies one. The format is program_name@pid so
// utilities like gpioinfo can identify the holder. Initialized in
// init().
var defaultConsumer string

func init() {
	s := fmt.Sprintf("%s@%d", path.Base(os.Args[0]), os.Getpid())
	if len(s) > gpiocdev.MaxNameLen {
		s = s[:gpiocdev.MaxNameLen]
	}
	defaultConsumer = s
}

type options struct {
	abi      gpiocdev.ABI // zero means probe the kernel
	consumer string
}

// Option configures Open.
type Option func(*options)

// WithABI pins the ioctl ABI generation instead of probing the kernel
// for v2 support.
func WithABI(abi gpiocdev.ABI) Option {
	return func(o *options) { o.abi = abi }
}

// WithConsumer overrides the default program_name@pid consumer label
// applied to line requests made through the chip.
func WithConsumer(consumer string) Option {
	return func(o *options) { o.consumer = consumer }
}

// Chip is an open GPIO character device.
type Chip struct {
	file     *os.File
	path     string
	info     gpiocdev.ChipInfo
	codec    gpiocdev.Codec
	consumer string
}

// Open opens a GPIO character device and reads its chip information.
// path may be absolute ("/dev/gpiochip0") or a bare device name
// ("gpiochip0"). The node must be a character device that answers the
// GPIO chip-info ioctl; anything else is rejected.
func Open(devPath string, opts ...Option) (*Chip, error) {
	o := options{consumer: defaultConsumer}
	for _, opt := range opts {
		opt(&o)
	}

	if !strings.HasPrefix(devPath, "/") {
		devPath = "/dev/" + devPath
	}
	f, err := os.OpenFile(devPath, os.O_RDONLY, 0400)
	if err != nil {
		return nil, fmt.Errorf("opening gpio chip %s: %w", devPath, err)
	}
	if err = isCharDevice(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", devPath, err)
	}

	buf := gpiocdev.ChipInfoBuf()
	if err = ioctl(f.Fd(), gpiocdev.ChipInfoIoctl(), buf); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: not a GPIO chip: %w", devPath, err)
	}
	info, err := gpiocdev.DecodeChipInfo(buf)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	abi := o.abi
	if abi == 0 {
		abi = probeABI(f.Fd(), info)
	}
	codec, err := gpiocdev.NewCodec(abi)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Chip{
		file:     f,
		path:     devPath,
		info:     info,
		codec:    codec,
		consumer: o.consumer,
	}, nil
}

// probeABI reports v2 when the kernel answers the v2 line-info ioctl,
// v1 otherwise.
func probeABI(fd uintptr, info gpiocdev.ChipInfo) gpiocdev.ABI {
	if info.Lines == 0 {
		return gpiocdev.V2
	}
	codec, _ := gpiocdev.NewCodec(gpiocdev.V2)
	buf := codec.EncodeLineInfoQuery(0)
	if err := ioctl(fd, codec.LineInfoIoctl(), buf); err != nil {
		return gpiocdev.V1
	}
	return gpiocdev.V2
}

// Name returns the kernel device name.
func (c *Chip) Name() string {
	return c.info.Name
}

// Label returns the chip label, falling back to the name when the
// hardware provides none.
func (c *Chip) Label() string {
	return c.info.Label
}

// Path returns the /dev node the chip was opened from.
func (c *Chip) Path() string {
	return c.path
}

// LineCount returns the number of GPIO lines on the chip.
func (c *Chip) LineCount() int {
	return int(c.info.Lines)
}

// ABI returns the ioctl generation in use for this chip.
func (c *Chip) ABI() gpiocdev.ABI {
	return c.codec.ABI()
}

func (c *Chip) String() string {
	return c.info.String()
}

// Close releases the chip descriptor. Lines requested from the chip
// stay alive; they hold their own descriptors.
func (c *Chip) Close() error {
	return c.file.Close()
}

// LineInfo queries the kernel about a single line of the chip.
func (c *Chip) LineInfo(line uint32) (gpiocdev.LineInfo, error) {
	buf := c.codec.EncodeLineInfoQuery(line)
	if err := ioctl(c.file.Fd(), c.codec.LineInfoIoctl(), buf); err != nil {
		return gpiocdev.LineInfo{}, fmt.Errorf("line info: %w", err)
	}
	return c.codec.DecodeLineInfo(buf)
}

// RequestLines acquires the lines named by cfg and returns a handle for
// value transfers and event reads. An empty cfg.Consumer is filled with
// the chip's consumer label.
func (c *Chip) RequestLines(cfg gpiocdev.LineConfig) (*Lines, error) {
	if cfg.Consumer == "" {
		cfg.Consumer = c.consumer
	}
	req, err := c.codec.EncodeRequest(&cfg)
	if err != nil {
		return nil, err
	}
	if err = ioctl(c.file.Fd(), c.codec.RequestLinesIoctl(), req.Buf); err != nil {
		return nil, fmt.Errorf("line request: %w", err)
	}
	fd := req.Fd()
	if fd <= 0 {
		return nil, errors.New("invalid file descriptor returned")
	}
	// Nonblocking plus os.NewFile registers the descriptor with the
	// runtime poller, so event reads honor SetReadDeadline.
	if err = setNonblock(int(fd), true); err != nil {
		return nil, fmt.Errorf("line request: %w", err)
	}
	f := os.NewFile(uintptr(fd), c.info.Name+"-lines")

	if req.FollowUpValues != nil {
		if err = ioctl(f.Fd(), c.codec.SetValuesIoctl(), req.FollowUpValues); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("initial values: %w", err)
		}
	}

	return &Lines{
		file:     f,
		codec:    c.codec,
		lineMap:  req.Map,
		offsets:  append([]uint32(nil), cfg.Offsets...),
		consumer: cfg.Consumer,
		chip:     c.info.Name,
	}, nil
}

// List returns the paths of the GPIO character devices on the system,
// sorted.
func List() ([]string, error) {
	items, err := filepath.Glob("/dev/gpiochip*")
	if err != nil {
		return nil, err
	}
	sort.Strings(items)
	return items, nil
}

// OpenAll opens every GPIO chip found on the system. Chips that fail to
// open are skipped with a warning; an error is only returned when the
// device scan itself fails.
func OpenAll(opts ...Option) ([]*Chip, error) {
	paths, err := List()
	if err != nil {
		return nil, err
	}
	var chips []*Chip
	for _, p := range paths {
		chip, err := Open(p, opts...)
		if err != nil {
			log.Warnf("skipping GPIO chip %s: %s", p, err)
			continue
		}
		chips = append(chips, chip)
	}
	return chips, nil
}
