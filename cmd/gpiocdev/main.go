// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpiocdev is a command line utility for the GPIO character devices.
//
//	gpiocdev detect
//	gpiocdev info [chip]
//	gpiocdev get [options] <chip> <line>...
//	gpiocdev set [options] <chip> <line>=<value>...
//	gpiocdev mon [options] <chip> <line>...
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"periph.io/x/gpiocdev"
	"periph.io/x/gpiocdev/chardev"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s <command> [options] [args]

commands:
  detect            list the GPIO chips on the system
  info [chip]       print line information for one chip, or all chips
  get <chip> <line>...
                    read the levels of the given lines
  set <chip> <line>=<value>...
                    drive the given lines, holding them until interrupted
  mon <chip> <line>...
                    monitor the given lines for edge events
`, os.Args[0])
	os.Exit(2)
}

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "detect":
		err = detect()
	case "info":
		err = info(os.Args[2:])
	case "get":
		err = get(os.Args[2:])
	case "set":
		err = set(os.Args[2:])
	case "mon":
		err = mon(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

// chipOptions is the set of flags shared by the commands that open a
// chip.
type chipOptions struct {
	abi      string
	consumer string
}

func (o *chipOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.abi, "abi", "", "pin the kernel ABI generation (1 or 2) instead of probing")
	fs.StringVar(&o.consumer, "consumer", "", "consumer label applied to line requests")
}

func (o *chipOptions) open(name string) (*chardev.Chip, error) {
	var opts []chardev.Option
	if o.abi != "" {
		abi, err := gpiocdev.ParseABI(o.abi)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chardev.WithABI(abi))
	}
	if o.consumer != "" {
		opts = append(opts, chardev.WithConsumer(o.consumer))
	}
	return chardev.Open(name, opts...)
}

func detect() error {
	paths, err := chardev.List()
	if err != nil {
		return err
	}
	for _, p := range paths {
		chip, err := chardev.Open(p)
		if err != nil {
			log.Warnf("skipping %s: %s", p, err)
			continue
		}
		fmt.Println(chip)
		_ = chip.Close()
	}
	return nil
}

func info(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var o chipOptions
	o.register(fs)
	_ = fs.Parse(args)

	paths := fs.Args()
	if len(paths) == 0 {
		var err error
		if paths, err = chardev.List(); err != nil {
			return err
		}
	}
	for _, p := range paths {
		chip, err := o.open(p)
		if err != nil {
			return err
		}
		fmt.Println(chip)
		for i := 0; i < chip.LineCount(); i++ {
			li, err := chip.LineInfo(uint32(i))
			if err != nil {
				_ = chip.Close()
				return err
			}
			fmt.Printf("\tline %3d:%s\n", i, li)
		}
		_ = chip.Close()
	}
	return nil
}

// parseOffsets converts line arguments to chip offsets.
func parseOffsets(args []string) ([]uint32, error) {
	offsets := make([]uint32, len(args))
	for i, a := range args {
		n, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("not a line offset: %q", a)
		}
		offsets[i] = uint32(n)
	}
	return offsets, nil
}

func get(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	var o chipOptions
	o.register(fs)
	bias := fs.String("bias", "disable", "input bias: disable, pull-up or pull-down")
	active := fs.String("active", "high", "active state: high or low")
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("get requires a chip and at least one line")
	}

	cfg := gpiocdev.LineConfig{Direction: gpiocdev.Input}
	var err error
	if cfg.Bias, err = gpiocdev.ParseBias(*bias); err != nil {
		return err
	}
	if cfg.Active, err = gpiocdev.ParseActive(*active); err != nil {
		return err
	}
	if cfg.Offsets, err = parseOffsets(fs.Args()[1:]); err != nil {
		return err
	}

	chip, err := o.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer chip.Close()
	lines, err := chip.RequestLines(cfg)
	if err != nil {
		return err
	}
	defer lines.Close()
	v, err := lines.GetValues(0)
	if err != nil {
		return err
	}
	for i, off := range cfg.Offsets {
		val, _ := v.Get(i)
		n := 0
		if val {
			n = 1
		}
		fmt.Printf("line %d: %d\n", off, n)
	}
	return nil
}

// parseAssignments splits line=value arguments into offsets and values.
func parseAssignments(args []string) ([]uint32, *gpiocdev.Values, error) {
	offsets := make([]uint32, len(args))
	var v gpiocdev.Values
	for i, a := range args {
		line, value, found := strings.Cut(a, "=")
		if !found {
			return nil, nil, fmt.Errorf("not a line assignment: %q", a)
		}
		n, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("not a line offset: %q", line)
		}
		offsets[i] = uint32(n)
		switch value {
		case "1", "on", "true", "high":
			v.Set(i, true)
		case "0", "off", "false", "low":
			v.Set(i, false)
		default:
			return nil, nil, fmt.Errorf("not a line value: %q", value)
		}
	}
	return offsets, &v, nil
}

func set(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	var o chipOptions
	o.register(fs)
	drive := fs.String("drive", "push-pull", "drive mode: push-pull, open-drain or open-source")
	active := fs.String("active", "high", "active state: high or low")
	bias := fs.String("bias", "disable", "output bias: disable, pull-up or pull-down")
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("set requires a chip and at least one line=value")
	}

	cfg := gpiocdev.LineConfig{Direction: gpiocdev.Output}
	var err error
	if cfg.Drive, err = gpiocdev.ParseDrive(*drive); err != nil {
		return err
	}
	if cfg.Active, err = gpiocdev.ParseActive(*active); err != nil {
		return err
	}
	if cfg.Bias, err = gpiocdev.ParseBias(*bias); err != nil {
		return err
	}
	if cfg.Offsets, cfg.Values, err = parseAssignments(fs.Args()[1:]); err != nil {
		return err
	}

	chip, err := o.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer chip.Close()
	lines, err := chip.RequestLines(cfg)
	if err != nil {
		return err
	}
	defer lines.Close()

	// The levels only hold while the request is held. Wait for an
	// interrupt before releasing the lines.
	log.Infof("holding %s, interrupt to release", lines)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func mon(args []string) error {
	fs := flag.NewFlagSet("mon", flag.ExitOnError)
	var o chipOptions
	o.register(fs)
	edge := fs.String("edge", "both", "edges to report: rising, falling or both")
	bias := fs.String("bias", "disable", "input bias: disable, pull-up or pull-down")
	active := fs.String("active", "high", "active state: high or low")
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("mon requires a chip and at least one line")
	}

	cfg := gpiocdev.LineConfig{Direction: gpiocdev.Input}
	var err error
	if cfg.Edge, err = gpiocdev.ParseEdgeDetect(*edge); err != nil {
		return err
	}
	if cfg.Bias, err = gpiocdev.ParseBias(*bias); err != nil {
		return err
	}
	if cfg.Active, err = gpiocdev.ParseActive(*active); err != nil {
		return err
	}
	if cfg.Offsets, err = parseOffsets(fs.Args()[1:]); err != nil {
		return err
	}

	chip, err := o.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer chip.Close()
	lines, err := chip.RequestLines(cfg)
	if err != nil {
		return err
	}
	defer lines.Close()

	offsets := lines.Offsets()
	for {
		event, err := lines.ReadEvent()
		if err != nil {
			return err
		}
		fmt.Printf("line %d: %s-edge %s\n", offsets[event.Line], event.Edge, event.Time)
	}
}
