// Package ioport provides typed handles to x86 I/O ports.
package ioport

import "pmboot/kernel/cpu"

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	portReadByteFn  = cpu.PortReadByte
	portWriteByteFn = cpu.PortWriteByte
)

// Bus performs single-byte accesses against an I/O port space.
type Bus interface {
	In(port uint16) uint8
	Out(port uint16, val uint8)
}

// Port8 is a handle to an 8-bit I/O port.
type Port8 struct {
	bus  Bus
	port uint16
}

// NewPort8 binds an 8-bit port handle to the given port number.
func NewPort8(bus Bus, port uint16) Port8 {
	return Port8{bus: bus, port: port}
}

// Get reads the port.
func (p Port8) Get() uint8 {
	return p.bus.In(p.port)
}

// Set writes val to the port.
func (p Port8) Set(val uint8) {
	p.bus.Out(p.port, val)
}

// SetBits performs a read-modify-write cycle that sets the bits in mask and
// leaves the remaining bits as read.
func (p Port8) SetBits(mask uint8) {
	p.Set(p.Get() | mask)
}

// Native performs port I/O using the CPU's IN and OUT instructions.
var Native Bus = nativeBus{}

type nativeBus struct{}

func (nativeBus) In(port uint16) uint8 {
	return portReadByteFn(port)
}

func (nativeBus) Out(port uint16, val uint8) {
	portWriteByteFn(port, val)
}
