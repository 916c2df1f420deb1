package gdt

import (
	"pmboot/kernel"
	"pmboot/kernel/mem"
	"unsafe"
)

const (
	// PointerImageSize is the size of the packed LGDT operand: a 16-bit
	// size immediately followed by a native-width address.
	PointerImageSize = 2 + mem.PointerSize

	// maxEntries is the largest table whose byte length minus one still
	// fits in 16 bits.
	maxEntries = (1 << 16) / EntrySize
)

var (
	// ErrTableEmpty is returned when building a Pointer for a table with no
	// entries.
	ErrTableEmpty = &kernel.Error{Module: "gdt", Message: "descriptor table has no entries"}

	// ErrTableTooLarge is returned when the table size does not fit the
	// 16-bit size field of a Pointer.
	ErrTableTooLarge = &kernel.Error{Module: "gdt", Message: "descriptor table exceeds 8192 entries"}
)

// Pointer is the table locator record consumed by the LGDT instruction.
type Pointer struct {
	// Size is the table length in bytes minus one.
	Size uint16

	// Address is the linear address of the first table entry.
	Address uintptr
}

// NewPointer returns the locator record for table. Size is always derived
// from len(table) so the record cannot drift out of sync with the table it
// describes.
func NewPointer(table []Entry) (Pointer, *kernel.Error) {
	switch {
	case len(table) == 0:
		return Pointer{}, ErrTableEmpty
	case len(table) > maxEntries:
		return Pointer{}, ErrTableTooLarge
	}

	return Pointer{
		Size:    uint16(uintptr(len(table))*unsafe.Sizeof(table[0]) - 1),
		Address: uintptr(unsafe.Pointer(&table[0])),
	}, nil
}

// MustPointer behaves like NewPointer but panics on error.
func MustPointer(table []Entry) Pointer {
	p, err := NewPointer(table)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of entries in the table the record points to.
func (p Pointer) Len() int {
	return (int(p.Size) + 1) / EntrySize
}

// Entries returns a view of the table the record points to. The caller must
// ensure that the table is still live.
func (p Pointer) Entries() []Entry {
	if p.Address == 0 {
		return nil
	}

	return unsafe.Slice((*Entry)(unsafe.Pointer(p.Address)), p.Len())
}

// Bytes packs the record into the little-endian layout expected by LGDT.
func (p Pointer) Bytes() [PointerImageSize]byte {
	var b [PointerImageSize]byte
	b[0] = uint8(p.Size)
	b[1] = uint8(p.Size >> 8)
	for i := 0; i < mem.PointerSize; i++ {
		b[2+i] = uint8(p.Address >> (8 * i))
	}
	return b
}

// PointerFromBytes unpacks a record previously packed by Bytes.
func PointerFromBytes(b [PointerImageSize]byte) Pointer {
	p := Pointer{Size: uint16(b[0]) | uint16(b[1])<<8}
	for i := 0; i < mem.PointerSize; i++ {
		p.Address |= uintptr(b[2+i]) << (8 * i)
	}
	return p
}
