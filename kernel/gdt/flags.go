package gdt

// Flags holds the four segment flags stored in the high nibble of byte 6 of a
// segment descriptor.
type Flags uint8

const (
	// FlagAvailable is reserved for system software; the CPU ignores it.
	FlagAvailable Flags = 1 << iota

	// FlagLong marks a 64-bit code segment. When set, FlagDB must be clear.
	FlagLong

	// FlagDB is the size flag: clear for 16-bit segments, set for 32-bit
	// segments.
	FlagDB

	// FlagGranularity scales the limit by 4 KiB blocks when set and by
	// single bytes when clear.
	FlagGranularity

	flagsAll = FlagAvailable | FlagLong | FlagDB | FlagGranularity
)

var flagBitNames = [...]struct {
	bit  Flags
	name string
}{
	{FlagGranularity, "G"},
	{FlagDB, "DB"},
	{FlagLong, "L"},
	{FlagAvailable, "AVL"},
}

// FlagsFromBits converts b into Flags, discarding any bits outside the four
// defined flags.
func FlagsFromBits(b uint8) Flags {
	return Flags(b) & flagsAll
}

// FlagsFromBitsRetain converts b into Flags keeping every bit, including
// undefined ones. It is used when unpacking an already encoded descriptor.
func FlagsFromBitsRetain(b uint8) Flags {
	return Flags(b)
}

// Bits returns the raw encoding of the flags.
func (f Flags) Bits() uint8 {
	return uint8(f)
}

// Union returns the union of f and other.
func (f Flags) Union(other Flags) Flags {
	return f | other
}

// Has returns true if all bits in flags are set.
func (f Flags) Has(flags Flags) bool {
	return f&flags == flags
}

// HasAny returns true if at least one of the bits in flags is set.
func (f Flags) HasAny(flags Flags) bool {
	return f&flags != 0
}

// String lists the names of the set flags separated by '|', e.g. "G|DB".
// Retained bits outside the defined set are appended in hex. Empty flags are
// rendered as "0". Like AccessByte.String it allocates and is not used on the
// boot path.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}

	var s string
	for _, bn := range flagBitNames {
		if f.Has(bn.bit) {
			s = appendName(s, bn.name)
		}
	}

	if extra := uint8(f &^ flagsAll); extra != 0 {
		s = appendName(s, "0x"+hexByte(extra))
	}
	return s
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}
