package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"pmboot/emu"
	"pmboot/kernel/a20"
	"pmboot/kernel/mem"

	"github.com/go-stdlog/stdlog"
)

type options struct {
	enabled    bool
	noFastGate bool
	ramFile    string
	ramSizeMb  uint
	verbose    bool
	runs       int
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("a20sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.enabled, "enabled", false, "power on with the A20 line already enabled")
	fs.BoolVar(&opts.noFastGate, "no-fast-gate", false, "model a chipset without a fast A20 gate on port 0x92")
	fs.StringVar(&opts.ramFile, "ram", "", "back the emulated memory with `file` and keep it after the run")
	fs.UintVar(&opts.ramSizeMb, "ram-size", uint(emu.DefaultRAMSize/mem.Mb), "emulated memory size in MiB")
	fs.IntVar(&opts.runs, "runs", 2, "number of times the enable routine is invoked")
	fs.BoolVar(&opts.verbose, "v", false, "trace memory and port activity to stderr")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.ramSizeMb == 0 {
		return opts, errors.New("-ram-size must be at least 1")
	}
	if opts.runs < 1 {
		return opts, errors.New("-runs must be at least 1")
	}

	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) (err error) {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}

	var log stdlog.Logger = stdlog.Discard
	if opts.verbose {
		log = stdlog.NewStd(stderr).Named("a20sim")
	}

	m, err := emu.New(emu.Config{
		RAMSize:              mem.Size(opts.ramSizeMb) * mem.Mb,
		A20Enabled:           opts.enabled,
		FastGateDisconnected: opts.noFastGate,
		RAMFile:              opts.ramFile,
		Logger:               log,
	})
	if err != nil {
		return fmt.Errorf("powering on machine: %w", err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("flushing RAM image: %w", closeErr)
		}
	}()

	fmt.Fprintf(stdout, "power-on: gate=%s ram=%dMiB fast-gate=%t\n",
		gateState(m.A20Enabled()), opts.ramSizeMb, !opts.noFastGate)

	line := a20.NewLine(m, m)
	for i := 1; i <= opts.runs; i++ {
		m.ResetStats()
		issued := line.Enable()
		stats := m.Stats()
		fmt.Fprintf(stdout, "enable #%d: command-issued=%t state=%s mem-reads=%d mem-writes=%d port-reads=%d port-writes=%d\n",
			i, issued, line.State(), stats.MemReads, stats.MemWrites, stats.PortReads, stats.PortWrites)
	}

	// The routine does not verify its own work; report what the hardware
	// actually did.
	probed := line.Probe()
	fmt.Fprintf(stdout, "result: gate=%s probe=%s fast-resets=%d\n", gateState(m.A20Enabled()), probed, m.ResetRequests())
	fmt.Fprintf(stdout, "memory: 0x%06x=% x 0x%06x=% x\n",
		a20.OddMegabyteAddr, m.Peek(a20.OddMegabyteAddr, 4),
		a20.EvenMegabyteAddr, m.Peek(a20.EvenMegabyteAddr, 4),
	)
	if probed != a20.Enabled {
		log.Warning("A20 line still masked after the enable routine")
	}

	return nil
}

func gateState(enabled bool) a20.State {
	if enabled {
		return a20.Enabled
	}
	return a20.Masked
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		stdlog.NewStd(os.Stderr).Named("a20sim").Error(err, "a20sim failed")
		os.Exit(1)
	}
}
