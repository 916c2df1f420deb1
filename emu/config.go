package emu

import (
	"pmboot/kernel/mem"

	"github.com/go-stdlog/stdlog"
)

// DefaultRAMSize is the amount of emulated memory used when Config.RAMSize is
// not set. It comfortably covers both A20 probe addresses.
const DefaultRAMSize = 4 * mem.Mb

// Config describes the emulated machine.
type Config struct {
	// RAMSize is the amount of physical memory starting at address 0. If
	// unset, DefaultRAMSize is used.
	RAMSize mem.Size

	// A20Enabled sets the state of the A20 gate at power-on. Most PCs boot
	// with the line masked.
	A20Enabled bool

	// FastGateDisconnected models chipsets without a fast A20 gate: writes
	// to System Control Port A leave the A20 line untouched.
	FastGateDisconnected bool

	// RAMFile, when set, backs the emulated memory with a memory-mapped
	// file so the physical memory image can be inspected after a run. The
	// file is created or resized to RAMSize bytes.
	RAMFile string

	// Logger allows a given stdlog.Logger instance to receive machine
	// traces. If unset, no logs will be generated.
	Logger stdlog.Logger
}

// GetRAMSize returns the configured RAM size or DefaultRAMSize.
func (c Config) GetRAMSize() mem.Size {
	if c.RAMSize == 0 {
		return DefaultRAMSize
	}
	return c.RAMSize
}

// GetLogger returns a logger named after the machine, or stdlog.Discard.
func (c Config) GetLogger() stdlog.Logger {
	if c.Logger != nil {
		return c.Logger.Named("emu")
	}
	return stdlog.Discard
}
