// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pins

import (
	"errors"
	"runtime"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"periph.io/x/gpiocdev/chardev"
)

// Chips holds the GPIO chips found on the running device, populated by
// the driver on periph host initialization.
var Chips []*Chip

// driverGPIO implements periph.Driver over the GPIO character devices.
type driverGPIO struct {
	_ string
}

func (d *driverGPIO) String() string {
	return "gpiocdev"
}

func (d *driverGPIO) Prerequisites() []string {
	return nil
}

func (d *driverGPIO) After() []string {
	return nil
}

// Init scans /dev/gpiochip* and registers every usefully named line
// with gpioreg.
func (d *driverGPIO) Init() (bool, error) {
	if runtime.GOOS != "linux" {
		return true, nil
	}
	devs, err := chardev.OpenAll()
	if err != nil {
		return true, err
	}
	if len(devs) == 0 {
		return false, errors.New("no GPIO chips found")
	}
	var chips []*Chip
	for _, dev := range devs {
		chip, err := NewChip(dev)
		if err != nil {
			log.Errorf("reading lines of %s: %s", dev.Path(), err)
			_ = dev.Close()
			continue
		}
		chips = append(chips, chip)
	}
	// Sort the chips so that those labeled with pinctrl- (a Pi kernel
	// standard) come first, otherwise by label. This _should_ protect
	// us from any random changes in chip naming/ordering.
	sort.Slice(chips, func(i, j int) bool {
		I := chips[i]
		J := chips[j]
		if strings.HasPrefix(I.Label(), "pinctrl-") {
			if strings.HasPrefix(J.Label(), "pinctrl-") {
				return I.Label() < J.Label()
			}
			return true
		} else if strings.HasPrefix(J.Label(), "pinctrl-") {
			return false
		}
		return I.Label() < J.Label()
	})

	seen := make(map[string]struct{})
	// Line names already registered by other drivers.
	registered := make(map[string]struct{})
	for _, p := range gpioreg.All() {
		registered[p.Name()] = struct{}{}
	}

	for _, chip := range chips {
		// On a Pi, gpiochip0 is also symlinked to gpiochip4; checking
		// the map ensures we don't register the chip twice.
		if _, found := seen[chip.Name()]; found {
			_ = chip.Close()
			continue
		}
		Chips = append(Chips, chip)
		seen[chip.Name()] = struct{}{}
		for _, p := range chip.Pins() {
			if p.name == "" || p.name == "_" || p.name == "-" {
				continue
			}
			// On the Pi5, at least two chips export "2712_WAKE" as the
			// line name. Prefix duplicates with the chip name.
			if _, ok := registered[p.Name()]; ok {
				p.name = chip.Name() + "-" + p.name
				if _, found := registered[p.Name()]; found {
					// Still not unique. Skip it.
					continue
				}
			}
			registered[p.Name()] = struct{}{}
			if err = gpioreg.Register(p); err != nil {
				log.Errorf("chip %s: registering line %s: %s", chip.Name(), p, err)
			}
		}
	}
	return len(Chips) > 0, nil
}

var drvGPIO driverGPIO

func init() {
	driverreg.MustRegister(&drvGPIO)
}
