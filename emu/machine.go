// Package emu models the parts of a PC that the protected-mode entry code
// touches: physical memory behind an A20 gate and System Control Port A.
//
// A Machine implements both mmio.Bus and ioport.Bus so the kernel packages
// can run against it unchanged. It is not safe for concurrent use.
package emu

import (
	"fmt"
	"os"

	"github.com/go-stdlog/stdlog"
	"github.com/heyvito/gommap"

	"pmboot/kernel/ioport"
	"pmboot/kernel/mem"
	"pmboot/kernel/mmio"
)

const (
	// a20Mask clears address bit 20.
	a20Mask = ^uintptr(mem.Mb)

	// openBus is the value read from addresses and ports with nothing
	// behind them.
	openBus = 0xFF

	portSystemControlA = 0x92

	sysCtrlFastReset = 0x01
	sysCtrlA20       = 0x02
)

var (
	_ mmio.Bus   = (*Machine)(nil)
	_ ioport.Bus = (*Machine)(nil)
)

// Stats counts the bus accesses performed against a Machine.
type Stats struct {
	MemReads   int
	MemWrites  int
	PortReads  int
	PortWrites int
}

// Machine is an emulated PC.
type Machine struct {
	ram     []byte
	ramFile *os.File
	mapped  gommap.MMap

	a20           bool
	fastGate      bool
	sysCtrl       uint8
	resetRequests int

	stats Stats
	log   stdlog.Logger
}

// New powers on a machine described by cfg.
func New(cfg Config) (*Machine, error) {
	m := &Machine{
		a20:      cfg.A20Enabled,
		fastGate: !cfg.FastGateDisconnected,
		log:      cfg.GetLogger(),
	}

	size := cfg.GetRAMSize()
	if cfg.RAMFile == "" {
		m.ram = make([]byte, size)
	} else if err := m.mapRAM(cfg.RAMFile, size); err != nil {
		return nil, err
	}

	if m.a20 {
		m.sysCtrl = sysCtrlA20
	}

	m.log.Info("Machine powered on",
		"ram", fmt.Sprintf("%d KiB", size/mem.Kb),
		"a20", m.a20,
		"fast_gate", m.fastGate,
	)
	return m, nil
}

func (m *Machine) mapRAM(path string, size mem.Size) error {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	if err = fd.Truncate(int64(size)); err != nil {
		_ = fd.Close()
		return fmt.Errorf("%s: sizing RAM image: %w", path, err)
	}

	mapped, err := gommap.Map(fd.Fd(), gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		_ = fd.Close()
		return fmt.Errorf("%s: mapping RAM image: %w", path, err)
	}

	m.ramFile = fd
	m.mapped = mapped
	m.ram = mapped
	return nil
}

// Close flushes a file-backed RAM image to disk. It is a no-op for machines
// with anonymous RAM.
func (m *Machine) Close() error {
	if m.ramFile == nil {
		return nil
	}

	if err := m.mapped.Sync(gommap.MS_SYNC); err != nil {
		return err
	}

	err := m.ramFile.Close()
	m.ramFile = nil
	return err
}

// RAMSize returns the amount of installed memory.
func (m *Machine) RAMSize() mem.Size {
	return mem.Size(len(m.ram))
}

// A20Enabled reports whether address bit 20 currently reaches memory.
func (m *Machine) A20Enabled() bool {
	return m.a20
}

// SetA20 forces the state of the A20 gate, bypassing the chipset ports.
func (m *Machine) SetA20(enabled bool) {
	m.a20 = enabled
	if enabled {
		m.sysCtrl |= sysCtrlA20
	} else {
		m.sysCtrl &^= sysCtrlA20
	}
}

// ResetRequests returns how many times the fast reset bit of System Control
// Port A has been set.
func (m *Machine) ResetRequests() int {
	return m.resetRequests
}

// Stats returns the access counters.
func (m *Machine) Stats() Stats {
	return m.stats
}

// ResetStats clears the access counters.
func (m *Machine) ResetStats() {
	m.stats = Stats{}
}

// Translate returns the physical address that addr reaches given the current
// A20 gate state. The gate is applied once per access, to its start address:
// the bytes of a multi-byte access are contiguous from there.
func (m *Machine) Translate(addr uintptr) uintptr {
	if m.a20 {
		return addr
	}
	return addr & a20Mask
}

// Read32 implements mmio.Bus.
func (m *Machine) Read32(addr uintptr) uint32 {
	m.stats.MemReads++

	phys := m.Translate(addr)
	var val uint32
	for i := uintptr(0); i < 4; i++ {
		val |= uint32(m.readPhys(phys+i)) << (8 * i)
	}
	return val
}

// Write32 implements mmio.Bus.
func (m *Machine) Write32(addr uintptr, val uint32) {
	m.stats.MemWrites++

	phys := m.Translate(addr)
	for i := uintptr(0); i < 4; i++ {
		m.writePhys(phys+i, uint8(val>>(8*i)))
	}
}

// Peek returns a copy of n bytes of physical memory starting at phys without
// applying the A20 gate or touching the access counters.
func (m *Machine) Peek(phys uintptr, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.readPhys(phys + uintptr(i))
	}
	return out
}

func (m *Machine) readPhys(phys uintptr) uint8 {
	if phys >= uintptr(len(m.ram)) {
		return openBus
	}
	return m.ram[phys]
}

func (m *Machine) writePhys(phys uintptr, val uint8) {
	if phys >= uintptr(len(m.ram)) {
		return
	}
	m.ram[phys] = val
}

// In implements ioport.Bus.
func (m *Machine) In(port uint16) uint8 {
	m.stats.PortReads++

	switch port {
	case portSystemControlA:
		return m.sysCtrl
	default:
		m.log.Debug("Read from unhandled port", "port", fmt.Sprintf("0x%x", port))
		return openBus
	}
}

// Out implements ioport.Bus.
func (m *Machine) Out(port uint16, val uint8) {
	m.stats.PortWrites++

	switch port {
	case portSystemControlA:
		m.writeSystemControlA(val)
	default:
		m.log.Debug("Write to unhandled port", "port", fmt.Sprintf("0x%x", port), "value", val)
	}
}

func (m *Machine) writeSystemControlA(val uint8) {
	if val&sysCtrlFastReset != 0 {
		m.resetRequests++
		m.log.Warning("Fast reset requested through System Control Port A")
	}

	if !m.fastGate {
		m.log.Debug("Fast A20 gate not wired; ignoring write", "value", val)
		return
	}

	m.sysCtrl = val &^ sysCtrlFastReset
	if enabled := val&sysCtrlA20 != 0; enabled != m.a20 {
		m.a20 = enabled
		m.log.Info("A20 gate changed", "enabled", enabled)
	}
}
