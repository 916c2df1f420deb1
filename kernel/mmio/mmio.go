// Package mmio provides typed handles to memory-mapped locations.
//
// Accesses never go through ordinary Go loads and stores: every read and
// write is routed through a Bus. The Physical bus performs each access with a
// single assembly MOV so the compiler can neither elide nor reorder it.
package mmio

// Bus performs 32-bit accesses against a physical address space.
type Bus interface {
	Read32(addr uintptr) uint32
	Write32(addr uintptr, val uint32)
}

// Register32 is a handle to a 32-bit location at a fixed address. The
// location does not need to be naturally aligned.
type Register32 struct {
	bus  Bus
	addr uintptr
}

// NewRegister32 binds a 32-bit register handle to addr on the given bus.
func NewRegister32(bus Bus, addr uintptr) Register32 {
	return Register32{bus: bus, addr: addr}
}

// Get performs a volatile read of the register.
func (r Register32) Get() uint32 {
	return r.bus.Read32(r.addr)
}

// Set performs a volatile write of val to the register.
func (r Register32) Set(val uint32) {
	r.bus.Write32(r.addr, val)
}

// Physical accesses physical memory directly. It is only meaningful while
// running with an identity mapping, i.e. before paging is enabled.
var Physical Bus = physicalBus{}

type physicalBus struct{}

func (physicalBus) Read32(addr uintptr) uint32 {
	return read32(addr)
}

func (physicalBus) Write32(addr uintptr, val uint32) {
	write32(addr, val)
}
