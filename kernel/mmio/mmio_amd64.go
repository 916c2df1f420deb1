package mmio

// read32 loads a 32-bit value from addr using a single MOVL.
func read32(addr uintptr) uint32

// write32 stores val to addr using a single MOVL.
func write32(addr uintptr, val uint32)
