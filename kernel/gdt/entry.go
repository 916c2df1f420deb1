package gdt

import (
	"bytes"
	"pmboot/kernel"
	"pmboot/kernel/kfmt"
	"pmboot/kernel/mem"
)

const (
	// EntrySize is the size in bytes of an encoded segment descriptor.
	EntrySize = 8

	// MaxLimit is the largest value that fits in the 20-bit limit field.
	MaxLimit = 0xFFFFF
)

var (
	// ErrLimitOverflow is returned when a descriptor is built with a limit
	// that does not fit in 20 bits.
	ErrLimitOverflow = &kernel.Error{Module: "gdt", Message: "segment limit exceeds 20 bits"}

	// ErrEntrySize is returned when decoding a descriptor from a buffer
	// that is not exactly EntrySize bytes long.
	ErrEntrySize = &kernel.Error{Module: "gdt", Message: "segment descriptor must be 8 bytes long"}

	// ErrFlagsOverflow is returned when a descriptor is built with flag
	// bits that do not fit in the 4-bit flags nibble.
	ErrFlagsOverflow = &kernel.Error{Module: "gdt", Message: "segment flags exceed 4 bits"}
)

// Entry is a segment descriptor in the exact layout expected by the CPU:
//
//	byte 0-1  limit bits 0-15
//	byte 2-3  base bits 0-15
//	byte 4    base bits 16-23
//	byte 5    access byte
//	byte 6    flags (high nibble) | limit bits 16-19 (low nibble)
//	byte 7    base bits 24-31
//
// Multi-byte fields are little-endian. As Entry is a byte array, a Go array
// of entries has no padding and can be handed to the CPU as-is.
type Entry [EntrySize]byte

// flagsLimit is byte 6 of a descriptor. It is shared by the segment flags
// (high nibble) and the top four bits of the limit (low nibble).
type flagsLimit uint8

// newFlagsLimit keeps only the low nibble of both arguments; NewEntry rejects
// wider values before they get here.
func newFlagsLimit(limitHigh uint8, flags Flags) flagsLimit {
	return flagsLimit((flags.Bits()&0x0F)<<4 | limitHigh&0x0F)
}

func (fl flagsLimit) limit() uint8 {
	return uint8(fl) & 0x0F
}

func (fl flagsLimit) flags() Flags {
	return FlagsFromBitsRetain(uint8(fl) >> 4)
}

// NewEntry encodes a segment descriptor. It returns ErrLimitOverflow if limit
// does not fit in 20 bits and ErrFlagsOverflow if flags carries bits outside
// the flags nibble, so every entry it returns decodes to its inputs.
func NewEntry(base, limit uint32, access AccessByte, flags Flags) (Entry, *kernel.Error) {
	if limit&^MaxLimit != 0 {
		return Entry{}, ErrLimitOverflow
	}
	if flags&^flagsAll != 0 {
		return Entry{}, ErrFlagsOverflow
	}

	var e Entry
	e[0] = uint8(limit)
	e[1] = uint8(limit >> 8)
	e[2] = uint8(base)
	e[3] = uint8(base >> 8)
	e[4] = uint8(base >> 16)
	e[5] = access.Bits()
	e[6] = uint8(newFlagsLimit(uint8(limit>>16), flags))
	e[7] = uint8(base >> 24)
	return e, nil
}

// MustEntry behaves like NewEntry but panics if the descriptor cannot be
// encoded. It is meant for package-level tables built from constants, so an
// invalid descriptor aborts initialization instead of reaching the CPU.
func MustEntry(base, limit uint32, access AccessByte, flags Flags) Entry {
	e, err := NewEntry(base, limit, access, flags)
	if err != nil {
		panic(err)
	}
	return e
}

// NullEntry returns the all-zero descriptor that must occupy index 0 of every
// descriptor table.
func NullEntry() Entry {
	return Entry{}
}

// EntryFromBytes decodes a descriptor from its 8-byte encoding.
func EntryFromBytes(b []byte) (Entry, *kernel.Error) {
	var e Entry
	if len(b) != EntrySize {
		return e, ErrEntrySize
	}

	copy(e[:], b)
	return e, nil
}

// IsNull returns true if this is the null descriptor.
func (e Entry) IsNull() bool {
	return e == Entry{}
}

// Base returns the 32-bit segment base address.
func (e Entry) Base() uint32 {
	return uint32(e[2]) | uint32(e[3])<<8 | uint32(e[4])<<16 | uint32(e[7])<<24
}

// Limit returns the raw 20-bit segment limit, before granularity scaling.
func (e Entry) Limit() uint32 {
	return uint32(e[0]) | uint32(e[1])<<8 | uint32(flagsLimit(e[6]).limit())<<16
}

// AccessByte returns the descriptor access byte.
func (e Entry) AccessByte() AccessByte {
	return AccessByteFromBits(e[5])
}

// Flags returns the segment flags.
func (e Entry) Flags() Flags {
	return flagsLimit(e[6]).flags()
}

// ByteLimit returns the offset of the last addressable byte in the segment.
// With FlagGranularity set the limit counts 4 KiB pages, so a limit of
// 0xFFFFF spans the full 4 GiB address space.
func (e Entry) ByteLimit() mem.Size {
	limit := mem.Size(e.Limit())
	if e.Flags().Has(FlagGranularity) {
		return (limit+1)<<mem.PageShift - 1
	}
	return limit
}

// Bytes returns a copy of the descriptor encoding.
func (e Entry) Bytes() []byte {
	b := make([]byte, EntrySize)
	copy(b, e[:])
	return b
}

// String returns a human-readable description of the decoded fields. It
// allocates, so it is meant for host tools and tests rather than the boot
// path; the boot path logs fields directly through kfmt.Printf.
func (e Entry) String() string {
	var buf bytes.Buffer
	kfmt.Fprintf(&buf, "base=0x%8x limit=0x%5x access=%s flags=%s",
		e.Base(), e.Limit(), e.AccessByte().String(), e.Flags().String(),
	)
	return buf.String()
}
