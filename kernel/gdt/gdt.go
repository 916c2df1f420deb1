// Package gdt builds the flat global descriptor table used to enter 32-bit
// protected mode.
//
// See: https://wiki.osdev.org/Global_Descriptor_Table
package gdt

import (
	"pmboot/kernel"
	"pmboot/kernel/cpu"
	"pmboot/kernel/kfmt"
	"unsafe"
)

// Table indices.
const (
	NullIndex = iota
	CodeIndex
	DataIndex
	tableLen
)

const (
	flatBase  = 0
	flatLimit = MaxLimit

	// ring0 is the requested privilege level of the boot selectors.
	ring0 = 0
)

// Build-time check that flatLimit fits in the 20-bit limit field: a wider
// constant makes the index below out of range.
var _ = [1]struct{}{}[flatLimit>>20]

var (
	// CodeSegment is a flat, readable, 32-bit code segment covering the
	// whole 4 GiB address space.
	CodeSegment = MustEntry(flatBase, flatLimit,
		AccessPresent|AccessDescriptorType|AccessExecutable|AccessRW,
		FlagGranularity|FlagDB,
	)

	// DataSegment is a flat, writable, 32-bit data segment covering the
	// whole 4 GiB address space.
	DataSegment = MustEntry(flatBase, flatLimit,
		AccessPresent|AccessDescriptorType|AccessRW,
		FlagGranularity|FlagDB,
	)

	// Table is the descriptor table installed by Load. It is never
	// modified after package initialization.
	Table = [tableLen]Entry{
		NullIndex: NullEntry(),
		CodeIndex: CodeSegment,
		DataIndex: DataSegment,
	}

	// GDTR is the locator record for Table.
	GDTR = MustPointer(Table[:])

	// gdtrImage holds the packed form of GDTR that is handed to the CPU.
	gdtrImage = GDTR.Bytes()

	// loadGDTFn is mocked by tests and is automatically inlined by the
	// compiler.
	loadGDTFn = cpu.LoadGDT
)

var (
	// ErrMissingNullEntry is returned when index 0 of a table is not the
	// null descriptor.
	ErrMissingNullEntry = &kernel.Error{Module: "gdt", Message: "descriptor table must start with the null entry"}

	// ErrSegmentNotPresent is returned when a non-null table entry does not
	// have the present bit set.
	ErrSegmentNotPresent = &kernel.Error{Module: "gdt", Message: "segment descriptor is not marked present"}

	// ErrLongWithDB is returned when a descriptor sets both the long-mode
	// and the 32-bit size flags; the CPU reserves that combination.
	ErrLongWithDB = &kernel.Error{Module: "gdt", Message: "segment descriptor sets both L and DB flags"}
)

func init() {
	if err := Validate(Table[:]); err != nil {
		kfmt.Panic(err)
	}
}

// Selector is a segment selector: the byte offset of a descriptor within the
// table, combined with a 2-bit requested privilege level.
type Selector uint16

const (
	// CodeSelector selects CodeSegment. It is the segment operand of the
	// far jump that enters protected mode.
	CodeSelector = Selector(CodeIndex*EntrySize) | ring0

	// DataSelector selects DataSegment.
	DataSelector = Selector(DataIndex*EntrySize) | ring0
)

// SelectorFor returns the selector for the table entry at index with the
// requested privilege level rpl.
func SelectorFor(index int, rpl uint8) Selector {
	return Selector(index*EntrySize) | Selector(rpl&0x3)
}

// Index returns the table index the selector refers to.
func (s Selector) Index() int {
	return int(s >> 3)
}

// RPL returns the requested privilege level.
func (s Selector) RPL() uint8 {
	return uint8(s & 0x3)
}

// Validate cross-checks a descriptor table before it is handed to the CPU.
func Validate(table []Entry) *kernel.Error {
	if len(table) == 0 {
		return ErrTableEmpty
	}

	if !table[0].IsNull() {
		return ErrMissingNullEntry
	}

	for _, e := range table[1:] {
		if e.IsNull() {
			continue
		}

		if !e.AccessByte().Has(AccessPresent) {
			return ErrSegmentNotPresent
		}

		if e.Flags().Has(FlagLong | FlagDB) {
			return ErrLongWithDB
		}
	}

	return nil
}

// Load makes Table the active global descriptor table. Segment registers are
// not reloaded; the caller does that with a far jump to CodeSelector.
func Load() {
	loadGDTFn(uintptr(unsafe.Pointer(&gdtrImage[0])))
}
