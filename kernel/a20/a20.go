// Package a20 detects whether the A20 address line is masked and, if so,
// unmasks it using the chipset's fast A20 gate.
//
// Only the fast A20 gate (System Control Port A) is driven. Chipsets that
// need the 8042 keyboard controller command sequence or the BIOS INT 15h
// AX=2401h service are not handled, and the gate command is not re-verified
// after it is issued: if the chipset ignores it, memory above 1 MiB will
// silently alias.
package a20

import (
	"pmboot/kernel/ioport"
	"pmboot/kernel/mem"
	"pmboot/kernel/mmio"
)

const (
	// lineBit is address bit 20, the bit forced to zero while the line is
	// masked.
	lineBit = uintptr(mem.Mb)

	// OddMegabyteAddr is the probe address just below the 1 MiB boundary.
	OddMegabyteAddr = lineBit - 1

	// EvenMegabyteAddr is the probe address one megabyte above
	// OddMegabyteAddr. The two differ only in bit 20.
	EvenMegabyteAddr = OddMegabyteAddr | lineBit

	oddSentinel  = 0x00C0FFEE
	evenSentinel = 0xDEADBEEF

	// SystemControlPortA is the chipset port that hosts the fast A20 gate.
	SystemControlPortA = 0x92

	// fastA20Bit enables the A20 line when set in SystemControlPortA.
	fastA20Bit = 0x02
)

// State describes the A20 line.
type State uint8

const (
	// Masked means address bit 20 is forced to zero so accesses above
	// 1 MiB wrap around.
	Masked State = iota

	// Enabled means all address bits reach memory.
	Enabled
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Masked:
		return "masked"
	case Enabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// Line drives the A20 line of a machine. The zero value is not usable; use
// NewLine.
type Line struct {
	odd, even mmio.Register32
	ctrlPort  ioport.Port8

	// state only ever moves from Masked to Enabled.
	state State
}

// NewLine returns a Line that probes memory through memBus and issues gate
// commands through portBus.
func NewLine(memBus mmio.Bus, portBus ioport.Bus) *Line {
	l := newLine(memBus, portBus)
	return &l
}

func newLine(memBus mmio.Bus, portBus ioport.Bus) Line {
	return Line{
		odd:      mmio.NewRegister32(memBus, OddMegabyteAddr),
		even:     mmio.NewRegister32(memBus, EvenMegabyteAddr),
		ctrlPort: ioport.NewPort8(portBus, SystemControlPortA),
		state:    Masked,
	}
}

// Probe tests the line by writing a different sentinel to each probe address
// and reading them back. If the line is masked both writes land on the same
// location and the two reads match.
//
// Probe clobbers the memory at both probe addresses.
func (l *Line) Probe() State {
	l.odd.Set(oddSentinel)
	l.even.Set(evenSentinel)

	if l.even.Get() != l.odd.Get() {
		return Enabled
	}
	return Masked
}

// State returns the last known state of the line.
func (l *Line) State() State {
	return l.state
}

// Enable makes sure the A20 line is enabled and reports whether the fast A20
// gate command had to be issued.
//
// Once the line has reached the Enabled state, further calls return
// immediately without touching memory or ports.
func (l *Line) Enable() bool {
	if l.state == Enabled {
		return false
	}

	issued := false
	if l.Probe() == Masked {
		// Bit 0 of the port is the fast reset line; SetBits writes it
		// back exactly as read.
		l.ctrlPort.SetBits(fastA20Bit)
		issued = true
	}

	l.state = Enabled
	return issued
}

// nativeLine drives the A20 line of the machine this code runs on.
var nativeLine = newLine(mmio.Physical, ioport.Native)

// Enable enables the A20 line of the running machine. See Line.Enable.
func Enable() bool {
	return nativeLine.Enable()
}

// Probe tests the A20 line of the running machine. See Line.Probe.
func Probe() State {
	return nativeLine.Probe()
}
