package gdt

// AccessByte is the access byte (byte 5) of a segment descriptor.
type AccessByte uint8

const (
	// AccessAccessed is set by the CPU the first time the segment is
	// loaded into a segment register.
	AccessAccessed AccessByte = 1 << iota

	// AccessRW marks a data segment as writable or a code segment as
	// readable.
	AccessRW

	// AccessDC is the direction bit for data segments (set if the segment
	// grows down) and the conforming bit for code segments (set if the
	// segment can be executed from an equal or lower privilege level).
	AccessDC

	// AccessExecutable is set for code segments and clear for data
	// segments.
	AccessExecutable

	// AccessDescriptorType is set for code or data segments and clear for
	// system segments such as a TSS.
	AccessDescriptorType

	accessDPLLow
	accessDPLHigh

	// AccessPresent must be set for any valid segment.
	AccessPresent
)

const (
	// AccessDPL covers the two-bit descriptor privilege level field
	// (bits 5-6).
	AccessDPL = accessDPLLow | accessDPLHigh

	accessDPLShift = 5
)

var accessBitNames = [...]struct {
	bit  AccessByte
	name string
}{
	{AccessPresent, "P"},
	{AccessDescriptorType, "S"},
	{AccessExecutable, "E"},
	{AccessDC, "DC"},
	{AccessRW, "RW"},
	{AccessAccessed, "A"},
}

// AccessPrivilege returns an access byte with only the DPL field set to ring.
// Only the two low bits of ring are used.
func AccessPrivilege(ring uint8) AccessByte {
	return AccessByte(ring&0x3) << accessDPLShift
}

// AccessByteFromBits converts a raw byte into an AccessByte. Every bit of the
// access byte is defined so no bits are discarded.
func AccessByteFromBits(b uint8) AccessByte {
	return AccessByte(b)
}

// Bits returns the raw encoding of the access byte.
func (a AccessByte) Bits() uint8 {
	return uint8(a)
}

// Union returns the union of a and other.
func (a AccessByte) Union(other AccessByte) AccessByte {
	return a | other
}

// Has returns true if all bits in flags are set.
func (a AccessByte) Has(flags AccessByte) bool {
	return a&flags == flags
}

// HasAny returns true if at least one of the bits in flags is set.
func (a AccessByte) HasAny(flags AccessByte) bool {
	return a&flags != 0
}

// DPL returns the descriptor privilege level (0-3).
func (a AccessByte) DPL() uint8 {
	return uint8(a&AccessDPL) >> accessDPLShift
}

// String lists the names of the set bits separated by '|', e.g.
// "P|DPL=3|S|RW". An empty access byte is rendered as "0". The result is
// built by concatenation, so String is for host tools and tests only.
func (a AccessByte) String() string {
	if a == 0 {
		return "0"
	}

	var s string
	for i, bn := range accessBitNames {
		if i == 1 && a.HasAny(AccessDPL) {
			s = appendName(s, "DPL="+string([]byte{'0' + a.DPL()}))
		}
		if a.Has(bn.bit) {
			s = appendName(s, bn.name)
		}
	}
	return s
}

func appendName(s, name string) string {
	if s == "" {
		return name
	}
	return s + "|" + name
}
